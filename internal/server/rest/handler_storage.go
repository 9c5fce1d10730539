package rest

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) presignUpload(c *fiber.Ctx) error {
	up, err := s.storage.PresignUpload(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(up)
}

func (s *Server) adminDeleteObject(c *fiber.Ctx) error {
	var req deleteObjectRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}
	if req.ImageURL == "" {
		return respondWithError(c, newValidationError("No se proporcionó URL de la imagen"))
	}

	found, err := s.storage.DeleteObject(c.UserContext(), req.ImageURL)
	if err != nil {
		return respondWithError(c, err)
	}

	if !found {
		return c.JSON(messageResponse{Message: "La imagen no fue encontrada, posiblemente ya fue borrada."})
	}
	return c.JSON(messageResponse{Message: "Imagen eliminada exitosamente del almacenamiento"})
}
