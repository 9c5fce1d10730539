package rest

import (
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) listDiseases(c *fiber.Ctx) error {
	list, err := s.catalog.Diseases(c.UserContext())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) diseaseInfo(c *fiber.Ctx) error {
	info, err := s.catalog.DiseaseInfo(c.UserContext(), c.Params("roboflow_class"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(info)
}

func (s *Server) listTreatments(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondWithError(c, err)
	}
	list, err := s.catalog.TreatmentDoses(c.UserContext(), id)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) calculateDose(c *fiber.Ctx) error {
	var req doseRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}
	if req.TreatmentID == nil || req.PlantCount == nil {
		return respondWithError(c, newValidationError("Faltan datos requeridos (ID de tratamiento y número de plantas)"))
	}

	d, err := s.catalog.CalculateDose(c.UserContext(), *req.TreatmentID, *req.PlantCount)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(d)
}

func (s *Server) adminUpdateDisease(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondWithError(c, err)
	}
	var upd models.DiseaseUpdate
	if err := parseBody(c, &upd); err != nil {
		return respondWithError(c, err)
	}

	d, err := s.catalog.UpdateDisease(c.UserContext(), id, upd)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(d)
}

func (req treatmentRequest) toModel() *models.Treatment {
	return &models.Treatment{
		DiseaseID:        req.DiseaseID,
		CommercialName:   req.CommercialName,
		ActiveIngredient: req.ActiveIngredient,
		Kind:             req.Kind,
		Dose:             req.Dose,
		Frequency:        req.Frequency,
		Notes:            req.Notes,
	}
}

func (s *Server) adminCreateTreatment(c *fiber.Ctx) error {
	var req treatmentRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}

	t, err := s.catalog.CreateTreatment(c.UserContext(), req.toModel())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (s *Server) adminUpdateTreatment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondWithError(c, err)
	}
	var req treatmentRequest
	if err := parseBody(c, &req); err != nil {
		return respondWithError(c, err)
	}

	t := req.toModel()
	t.ID = id

	updated, err := s.catalog.UpdateTreatment(c.UserContext(), t)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(updated)
}

func (s *Server) adminDeleteTreatment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondWithError(c, err)
	}
	if err := s.catalog.DeleteTreatment(c.UserContext(), id); err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(messageResponse{Message: "Tratamiento eliminado exitosamente"})
}
