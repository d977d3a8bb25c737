package http

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/bugtrackr/bug-tracker/internal/api/dto"
	"github.com/bugtrackr/bug-tracker/internal/config"
	"github.com/bugtrackr/bug-tracker/internal/observability"
	apperrors "github.com/bugtrackr/bug-tracker/pkg/util/errorutil"
)

// NewApp builds a fiber app with server level limits from configuration.
func NewApp(cfg config.AppConfig) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               cfg.Name,
		ReadTimeout:           cfg.ReadTimeout(),
		WriteTimeout:          cfg.WriteTimeout(),
		BodyLimit:             cfg.BodyLimitBytes,
		DisableStartupMessage: true,
	})
}

// RegisterMiddlewares attaches global middlewares such as logging, CORS and error handling.
// The request logger wraps the error handler so it records the rendered status.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, cfg config.AppConfig) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed",
						zap.String("method", c.Method()),
						zap.String("path", c.Path()),
						zap.Error(domainErr))
				}
				err = writeError(c, domainErr)
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	c.Status(domainErr.HTTPStatus)
	if domainErr.Code == apperrors.CodeValidationFailed {
		messages := domainErr.Errors
		if len(messages) == 0 {
			messages = []string{domainErr.Message}
		}
		return c.JSON(dto.ValidationErrorResponse{Errors: messages})
	}
	return c.JSON(dto.ErrorResponse{Code: domainErr.Code, Message: domainErr.Message})
}
