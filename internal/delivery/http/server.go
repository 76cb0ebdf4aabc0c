package http

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/geo-gateway/internal/config"
	"github.com/geo-gateway/internal/delivery/http/handler"
	"github.com/geo-gateway/internal/delivery/http/middleware"
	"github.com/geo-gateway/internal/pkg/errors"
	"github.com/geo-gateway/internal/pkg/utils"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Handlers - набор обработчиков для регистрации маршрутов
type Handlers struct {
	Nearby  *handler.NearbyHandler
	Geocode *handler.GeocodeHandler
	History *handler.HistoryHandler
	System  *handler.SystemHandler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	handlers Handlers
}

// NewServer - создание нового HTTP сервера
func NewServer(cfg *config.Config, logger *zap.Logger, handlers Handlers) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "Geo Gateway",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          45 * time.Second, // запрос к Overpass может идти до 30 секунд
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: cfg.Server.Env == "production",
		ErrorHandler:          customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		handlers: handlers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.ClientID(s.config.Server.TrustForwardedFor))
	s.app.Use(middleware.Logger(s.logger, s.config.Server.SlowRequestThreshold))
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// System
	api.Get("/health", s.handlers.System.Health)
	api.Get("/categories", s.handlers.System.Categories)
	api.Get("/keys", s.handlers.System.APIKeys)
	api.Get("/stats", s.handlers.System.GetStatistics)

	// Search
	api.Post("/nearby", s.handlers.Nearby.Search)
	api.Post("/geocode", s.handlers.Geocode.Geocode)
	api.Get("/reverse-geocode", s.handlers.Geocode.ReverseGeocode)

	// History
	api.Post("/history/markers", s.handlers.History.SaveMarker)
	api.Get("/history", s.handlers.History.List)
}

// App возвращает fiber.App (для тестов через app.Test)
func (s *Server) App() *fiber.App {
	return s.app
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки fiber (404, 405, паники) в общем формате ErrorResponse
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if stderrors.As(err, &fiberErr) {
			code := "INTERNAL_SERVER_ERROR"
			switch fiberErr.Code {
			case fiber.StatusNotFound:
				code = "NOT_FOUND"
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			case fiber.StatusRequestEntityTooLarge:
				code = "PAYLOAD_TOO_LARGE"
			default:
				if fiberErr.Code < fiber.StatusInternalServerError {
					code = "INVALID_REQUEST"
				}
			}
			return utils.SendError(c, errors.New(code, fiberErr.Message, fiberErr.Code))
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return utils.SendError(c, err)
	}
}
