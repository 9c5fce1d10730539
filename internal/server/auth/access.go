package auth

import (
	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
)

// Verifier validates bearer tokens and role claims.
//
// Role claims are trusted as minted: demoting or deleting a user takes effect
// when their outstanding tokens expire.
type Verifier struct {
	secretKey []byte
}

func NewVerifier(secretKey string) *Verifier {
	return &Verifier{secretKey: []byte(secretKey)}
}

// Authenticate returns the user id carried by token.
func (v *Verifier) Authenticate(token string) (int64, error) {
	claims, err := v.claims(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// AuthorizeAdmin is Authenticate plus a check of the admin claim.
func (v *Verifier) AuthorizeAdmin(token string) (int64, error) {
	claims, err := v.claims(token)
	if err != nil {
		return 0, err
	}
	if !claims.IsAdmin {
		return 0, common.ErrorForbidden
	}
	return claims.UserID, nil
}

func (v *Verifier) claims(token string) (*Claims, error) {
	if token == "" {
		return nil, common.ErrTokenMissing
	}
	return ParseToken(token, v.secretKey)
}
