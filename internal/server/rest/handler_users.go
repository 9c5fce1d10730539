package rest

import (
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}

	u, err := s.users.Register(c.UserContext(), services.RegisterInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		Organization:    req.Organization,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		return respondWithError(c, err)
	}

	s.logger.Info(c.UserContext(), "Registered", "user_id", u.ID)
	return c.Status(fiber.StatusCreated).JSON(messageResponse{Message: "Usuario registrado exitosamente"})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}

	res, err := s.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondWithError(c, err)
	}

	return c.JSON(res)
}

func (s *Server) getProfile(c *fiber.Ctx) error {
	u, err := s.users.Profile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(u)
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	var req profileUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}

	err := s.users.UpdateProfile(c.UserContext(), currentUserID(c), models.ProfileUpdate{
		FullName:        req.FullName,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		return respondWithError(c, err)
	}

	return c.JSON(messageResponse{Message: "Perfil actualizado exitosamente"})
}

func (s *Server) changePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}

	if err := s.users.ChangePassword(c.UserContext(), currentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return respondWithError(c, err)
	}

	return c.JSON(messageResponse{Message: "Contraseña actualizada exitosamente"})
}

func (s *Server) deleteAccount(c *fiber.Ctx) error {
	var req deleteAccountRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}

	if err := s.users.DeleteSelf(c.UserContext(), currentUserID(c), req.CurrentPassword); err != nil {
		return respondWithError(c, err)
	}

	return c.JSON(messageResponse{Message: "Tu cuenta y todos tus datos han sido eliminados"})
}

func (s *Server) adminListUsers(c *fiber.Ctx) error {
	list, err := s.users.ListUsersWithAnalyses(c.UserContext())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) adminResetPassword(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondWithError(c, err)
	}
	var req resetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}

	if err := s.users.AdminResetPassword(c.UserContext(), id, req.NewPassword); err != nil {
		return respondWithError(c, err)
	}

	return c.JSON(messageResponse{Message: "Contraseña del usuario actualizada exitosamente"})
}

func (s *Server) adminDeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondWithError(c, err)
	}

	if err := s.users.AdminDeleteUser(c.UserContext(), currentUserID(c), id); err != nil {
		return respondWithError(c, err)
	}

	return c.JSON(messageResponse{Message: "Usuario y todos sus datos han sido eliminados exitosamente"})
}
