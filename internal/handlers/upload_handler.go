package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"areetampo/circular-economy/internal/models"
	"areetampo/circular-economy/internal/services"
)

const documentField = "document"

type UploadHandler struct {
	scorer         *ScoreHandler
	storageService services.StorageService
	pdfParser      services.PDFParserService
	log            *zap.Logger
}

func NewUploadHandler(
	scorer *ScoreHandler,
	storageService services.StorageService,
	pdfParser services.PDFParserService,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		scorer:         scorer,
		storageService: storageService,
		pdfParser:      pdfParser,
		log:            log,
	}
}

// HandleUploadScore handles POST /score/upload. The PDF text becomes the idea
// and each parameter arrives as its own form field.
func (h *UploadHandler) HandleUploadScore(c *fiber.Ctx) error {
	file, err := c.FormFile(documentField)
	if err != nil {
		return writeError(c, services.NewValidationError(services.ErrCodeMissingField, documentField, "a PDF document is required"))
	}

	filename, filePath, err := h.storageService.SaveFile(file, "plan")
	if err != nil {
		h.log.Warn("⚠️ Failed to save upload", zap.Error(err))
		return writeError(c, err)
	}
	defer func() {
		if err := h.storageService.DeleteFile(filename); err != nil {
			h.log.Warn("⚠️ Failed to remove upload", zap.String("file", filename), zap.Error(err))
		}
	}()

	idea, err := h.pdfParser.ExtractText(filePath)
	if err != nil {
		h.log.Warn("⚠️ Failed to read PDF", zap.String("file", filename), zap.Error(err))
		return writeError(c, err)
	}

	resp, err := h.scorer.run(idea, formParameters(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(resp)
}

// formParameters reads the eight criteria from form fields. Values that are
// not numbers are passed through as strings so validation can name them.
func formParameters(c *fiber.Ctx) map[string]interface{} {
	params := make(map[string]interface{}, len(models.ParameterKeys))
	for _, key := range models.ParameterKeys {
		raw := strings.TrimSpace(c.FormValue(string(key)))
		if raw == "" {
			continue
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			params[string(key)] = v
		} else {
			params[string(key)] = raw
		}
	}
	return params
}
