package handlers

import (
	"github.com/gofiber/fiber/v2"

	"recruitment-audit-agent/internal/models"
	"recruitment-audit-agent/internal/services"
)

type MajorHandler struct {
	majors services.MajorService
}

func NewMajorHandler(majors services.MajorService) *MajorHandler {
	return &MajorHandler{
		majors: majors,
	}
}

// HandleMajorMatch handles POST /major/match
func (h *MajorHandler) HandleMajorMatch(c *fiber.Ctx) error {
	var req models.MajorMatchRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid JSON data",
		})
	}

	if req.Major == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Missing 'major' field",
		})
	}

	mappedCategory := h.majors.MapCategory(req.Major)

	// is_acceptable stays null when the request names no allowed categories.
	var isAcceptable *bool
	if len(req.AllowedCategories) > 0 {
		acceptable := h.majors.IsMajorAcceptable(req.Major, req.AllowedCategories)
		isAcceptable = &acceptable
	}

	allowed := req.AllowedCategories
	if allowed == nil {
		allowed = []string{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": models.MajorMatchData{
			OriginalMajor:     req.Major,
			MappedCategory:    mappedCategory,
			IsAcceptable:      isAcceptable,
			AllowedCategories: allowed,
		},
	})
}
