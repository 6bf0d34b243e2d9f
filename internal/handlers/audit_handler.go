package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"recruitment-audit-agent/internal/models"
	"recruitment-audit-agent/internal/services"
)

type AuditHandler struct {
	evaluator   services.EvaluatorService
	pdfParser   services.PDFParserService
	storage     services.StorageService
	maxFileSize int64
}

func NewAuditHandler(
	evaluator services.EvaluatorService,
	pdfParser services.PDFParserService,
	storage services.StorageService,
	maxFileSize int64,
) *AuditHandler {
	return &AuditHandler{
		evaluator:   evaluator,
		pdfParser:   pdfParser,
		storage:     storage,
		maxFileSize: maxFileSize,
	}
}

// HandleAudit handles POST /audit
func (h *AuditHandler) HandleAudit(c *fiber.Ctx) error {
	var req models.AuditRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid JSON data",
		})
	}

	if req.Candidate == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Missing 'candidate' field",
		})
	}

	if req.JobRequirements == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Missing 'job_requirements' field",
		})
	}

	return h.runAudit(c, req.Candidate, req.JobRequirements)
}

// HandleAuditResume handles POST /audit/resume: a multipart variant of
// /audit where the candidate's experience evidence arrives as a resume PDF.
func (h *AuditHandler) HandleAuditResume(c *fiber.Ctx) error {
	candidateJSON := c.FormValue("candidate")
	if candidateJSON == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Missing 'candidate' field",
		})
	}

	var candidate models.Candidate
	if err := json.Unmarshal([]byte(candidateJSON), &candidate); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "'candidate' must be a JSON object",
		})
	}

	jobRequirements := c.FormValue("job_requirements")
	if jobRequirements == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Missing 'job_requirements' field",
		})
	}

	resumeFile, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Missing 'resume' file",
		})
	}

	if resumeFile.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Resume file too large",
		})
	}

	filePath, err := h.storage.SaveResume(resumeFile)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save resume: " + err.Error(),
		})
	}
	defer func() {
		if derr := h.storage.DeleteFile(filePath); derr != nil {
			log.WithError(derr).Warn("failed to clean up resume file")
		}
	}()

	resumeText, err := h.pdfParser.ExtractText(filePath)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to extract resume text: " + err.Error(),
		})
	}

	if candidate.Experience != "" {
		candidate.Experience = candidate.Experience + "\n\n" + resumeText
	} else {
		candidate.Experience = resumeText
	}

	return h.runAudit(c, &candidate, jobRequirements)
}

func (h *AuditHandler) runAudit(c *fiber.Ctx, candidate *models.Candidate, jobRequirements string) error {
	// The requestid middleware mints the correlation id; mint one here only
	// when the handler runs without it.
	auditID, _ := c.Locals("requestid").(string)
	if auditID == "" {
		auditID = uuid.New().String()
	}
	candidateName := candidate.Name
	if candidateName == "" {
		candidateName = "Unknown"
	}

	log.WithFields(log.Fields{
		"audit_id":  auditID,
		"candidate": candidateName,
	}).Info("Processing audit request")

	summary, result := h.evaluator.Evaluate(c.Context(), candidate, jobRequirements)

	log.WithFields(log.Fields{
		"audit_id": auditID,
		"verdict":  result.Verdict,
	}).Info("Audit completed")

	return c.JSON(models.AuditResponse{
		Success: true,
		Data: models.AuditData{
			Summary: summary,
			Result:  result,
		},
		Metadata: models.AuditMetadata{
			AuditID:          auditID,
			CandidateName:    candidateName,
			Verdict:          result.Verdict,
			CriteriaCount:    len(result.Criteria),
			MissingDataCount: len(result.MissingData),
			PolicyFlagsCount: len(result.PolicyFlags),
		},
	})
}
