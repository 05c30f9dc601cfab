package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"areetampo/circular-economy/internal/models"
	"areetampo/circular-economy/internal/services"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindScoreRequest parses and shape-checks a score request body.
func bindScoreRequest(c *fiber.Ctx) (*models.ScoreRequest, error) {
	var req models.ScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	if err := validate.Struct(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			field := fieldErrs[0].Field()
			return nil, services.NewValidationError(services.ErrCodeMissingField, field, field+" is required")
		}
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	return &req, nil
}
