package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/skill-training-api/utils/response"
	"go.uber.org/zap"
)

// Multipart bodies carry a 10MB assignment plus form overhead
const bodyLimit = 12 * 1024 * 1024

type APIServer struct {
	app           *fiber.App
	listenAddress string
	logger        *zap.Logger
}

func NewAPIServer(listenAddress string, logger *zap.Logger) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:      "Skill Training API",
			BodyLimit:    bodyLimit,
			ErrorHandler: errorHandler(logger),
		}),
		listenAddress: listenAddress,
		logger:        logger,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	s.logger.Info("starting API server", zap.String("address", s.listenAddress))
	return s.app.Listen(s.listenAddress)
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

// errorHandler answers errors that escaped a handler. Fiber errors keep
// their status; everything else becomes a generic 500.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusNotFound:
				return response.NotFound(c, "Route not found")
			case fiber.StatusRequestEntityTooLarge:
				return response.Error(c, fe.Code, "File size must be less than 10MB", "PAYLOAD_TOO_LARGE")
			}
			if fe.Code < fiber.StatusInternalServerError {
				return response.Error(c, fe.Code, fe.Message, "REQUEST_ERROR")
			}
		}

		logger.Error("unhandled error",
			zap.Error(err),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Any("request_id", c.Locals("requestid")),
		)
		return response.InternalServerError(c, "Something went wrong!")
	}
}
