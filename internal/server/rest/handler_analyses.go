package rest

import (
	"fmt"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) analyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}

	res, err := s.analyses.Analyze(c.UserContext(), req.ImageURLFront, req.ImageURLBack)
	if err != nil {
		return respondWithError(c, err)
	}

	return c.JSON(res)
}

func (s *Server) saveAnalysis(c *fiber.Ctx) error {
	var req saveAnalysisRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}

	a, err := s.analyses.Save(c.UserContext(), currentUserID(c), services.SaveInput{
		ImageURL:     req.ImageURL,
		BackImageURL: req.BackImageURL,
		Prediction:   req.Prediction,
		Confidence:   req.Confidence,
	})
	if err != nil {
		return respondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(a)
}

func (s *Server) listHistory(c *fiber.Ctx) error {
	list, err := s.analyses.History(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) listTrash(c *fiber.Ctx) error {
	list, err := s.analyses.Trash(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) softDeleteAnalysis(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondWithError(c, err)
	}
	if err := s.analyses.SoftDelete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(messageResponse{Message: "Análisis movido a la papelera"})
}

func (s *Server) restoreAnalysis(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondWithError(c, err)
	}
	if err := s.analyses.Restore(c.UserContext(), currentUserID(c), id); err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(messageResponse{Message: "Análisis restaurado exitosamente"})
}

func (s *Server) purgeAnalysis(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondWithError(c, err)
	}
	if err := s.analyses.Purge(c.UserContext(), currentUserID(c), id); err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(messageResponse{Message: "Análisis borrado permanentemente"})
}

func (s *Server) emptyTrash(c *fiber.Ctx) error {
	n, err := s.analyses.EmptyTrash(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(countResponse{Message: "La papelera ha sido vaciada exitosamente", Count: int64(n)})
}

func (s *Server) restoreAll(c *fiber.Ctx) error {
	n, err := s.analyses.RestoreAll(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(countResponse{
		Message: fmt.Sprintf("%d análisis han sido restaurados exitosamente", n),
		Count:   n,
	})
}

func (s *Server) adminListAnalyses(c *fiber.Ctx) error {
	list, err := s.analyses.AdminActive(c.UserContext())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) adminListUserAnalyses(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondWithError(c, err)
	}
	list, err := s.analyses.AdminActiveByUser(c.UserContext(), id)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) adminListTrash(c *fiber.Ctx) error {
	list, err := s.analyses.AdminTrash(c.UserContext())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) adminSoftDeleteAnalysis(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondWithError(c, err)
	}
	if err := s.analyses.AdminSoftDelete(c.UserContext(), id); err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(messageResponse{Message: "Análisis borrado por el administrador exitosamente"})
}

func (s *Server) adminRestoreAnalysis(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondWithError(c, err)
	}
	if err := s.analyses.AdminRestore(c.UserContext(), id); err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(messageResponse{Message: "Análisis restaurado por el administrador exitosamente"})
}
