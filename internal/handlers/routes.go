package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"areetampo/circular-economy/internal/services"
)

// SetupRoutes mounts the API under /api/v1 and metrics at /metrics.
func SetupRoutes(app *fiber.App, score *ScoreHandler, assessments *AssessmentHandler, upload *UploadHandler) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Get("/criteria", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"criteria":       services.Criteria(),
			"scoring_policy": "equal_weight",
		})
	})

	api.Post("/score", score.HandleScore)
	api.Post("/score/upload", upload.HandleUploadScore)

	api.Post("/assessments", assessments.HandleEnqueue)
	api.Get("/assessments", assessments.HandleList)
	api.Get("/assessments/:id", assessments.HandleGet)
	api.Delete("/assessments/:id", assessments.HandleDelete)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Circular Economy Idea Auditor API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/score",
				"POST /api/v1/score/upload",
				"POST /api/v1/assessments",
				"GET /api/v1/assessments",
				"GET /api/v1/assessments/:id",
				"DELETE /api/v1/assessments/:id",
				"GET /api/v1/criteria",
			},
		})
	})
}
