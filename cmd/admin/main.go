// Command admin creates an administrator account, or promotes an existing
// user to administrator.
//
//	admin -email ana@example.com [-name "Ana Pérez"]
//
// The password is read from ADMIN_PASSWORD or prompted for on the terminal.
// It is only needed when the account does not exist yet.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/flagx"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/prompt"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/config"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/services"
)

func parseArgs(args []string) (email, name string) {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.StringVar(&email, "email", "", "administrator email")
	fs.StringVar(&name, "name", "", "full name for a new account")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-email", "-name"})); err != nil {
		log.Fatal(err)
	}
	return email, name
}

func main() {
	ctx := context.Background()

	email, name := parseArgs(os.Args[1:])
	reader := bufio.NewReader(os.Stdin)

	var err error
	if email == "" {
		if email, err = prompt.Text(reader, "Email", os.Stdout); err != nil {
			log.Fatal(err)
		}
	}

	cfg := config.LoadConfig()
	logger := server.NewLogger(cfg).With("module", "admin")

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close(context.Background())

	in := services.RegisterInput{FullName: name, Email: email, Password: os.Getenv("ADMIN_PASSWORD")}

	u, created, err := app.Users().EnsureAdmin(ctx, in)
	if errors.Is(err, common.ErrorValidation) {
		// New account: ask for what is missing and try again.
		if in.FullName == "" {
			if in.FullName, err = prompt.Text(reader, "Full name", os.Stdout); err != nil {
				log.Fatal(err)
			}
		}
		if in.Password == "" {
			if in.Password, err = prompt.NewPassword(os.Stdout); err != nil {
				log.Fatal(err)
			}
		}
		u, created, err = app.Users().EnsureAdmin(ctx, in)
	}
	if err != nil {
		logger.Error(ctx, "admin setup failed", "error", err)
		os.Exit(1)
	}

	if created {
		fmt.Printf("Administrator %s created (id %d)\n", u.Email, u.ID)
		return
	}
	fmt.Printf("User %s promoted to administrator (id %d)\n", u.Email, u.ID)
}
