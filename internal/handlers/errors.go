package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"areetampo/circular-economy/internal/models"
	"areetampo/circular-economy/internal/repositories"
	"areetampo/circular-economy/internal/services"
)

const (
	codeNotFound        = "NOT_FOUND"
	codeInvalidID       = "INVALID_ID"
	codeInvalidFileType = "INVALID_FILE_TYPE"
	codeEmptyDocument   = "EMPTY_DOCUMENT"
	codeFileTooLarge    = "FILE_TOO_LARGE"
	codeInvalidPayload  = "INVALID_PAYLOAD"
)

// HTTPStatus returns the HTTP status code for an error.
func HTTPStatus(err error) int {
	var vErr *services.ValidationError
	var fErr *fiber.Error
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, repositories.ErrAssessmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidFileType), errors.Is(err, services.ErrEmptyDocument):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &fErr):
		return fErr.Code
	default:
		return http.StatusInternalServerError
	}
}

// errorBody never exposes provider details for server-side failures.
func errorBody(err error) models.ErrorResponse {
	var vErr *services.ValidationError
	var pErr *services.PipelineError
	var fErr *fiber.Error
	switch {
	case errors.As(err, &vErr):
		return models.ErrorResponse{Error: vErr.Message, Code: string(vErr.Code), Field: vErr.Field}
	case errors.Is(err, repositories.ErrAssessmentNotFound):
		return models.ErrorResponse{Error: "assessment not found", Code: codeNotFound}
	case errors.Is(err, services.ErrInvalidFileType):
		return models.ErrorResponse{Error: "only PDF files are accepted", Code: codeInvalidFileType}
	case errors.Is(err, services.ErrEmptyDocument):
		return models.ErrorResponse{Error: "no text could be extracted from the document", Code: codeEmptyDocument}
	case errors.Is(err, services.ErrFileTooLarge):
		return models.ErrorResponse{Error: "file too large", Code: codeFileTooLarge, Field: "document"}
	case errors.As(err, &pErr):
		return models.ErrorResponse{Error: "internal error", Code: pErr.Code()}
	case errors.As(err, &fErr) && fErr.Code < http.StatusInternalServerError:
		return models.ErrorResponse{Error: fErr.Message}
	default:
		return models.ErrorResponse{Error: "internal error", Code: services.ErrUnexpected.Error()}
	}
}

func writeError(c *fiber.Ctx, err error) error {
	return c.Status(HTTPStatus(err)).JSON(errorBody(err))
}

// ErrorHandler is the fiber fallback for errors returned by handlers and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err)
}
