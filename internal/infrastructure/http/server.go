package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/niteshmahajan-63/thewell-checkout/internal/adapter/handler/http"
	"github.com/niteshmahajan-63/thewell-checkout/internal/adapter/handler/ws"
	"github.com/niteshmahajan-63/thewell-checkout/internal/config"
	"github.com/niteshmahajan-63/thewell-checkout/internal/middleware/auth"
	"github.com/niteshmahajan-63/thewell-checkout/pkg/logger"
	"go.uber.org/zap"
)

const maxBodySize = "1M"

// Handlers groups the route handlers mounted by the server.
type Handlers struct {
	Webhook  *handlers.WebhookHandler
	Checkout *handlers.CheckoutHandler
	Internal *handlers.InternalHandler
	Payments *ws.PaymentsHandler
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	handlers Handlers
}

func NewServer(cfg *config.Config, log *zap.Logger, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()
	logger.WithEchoLogger(e, log)

	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Service.ClientURLs,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, "Stripe-Signature"},
	}))

	s := &Server{
		config:   cfg,
		logger:   log,
		echo:     e,
		handlers: h,
	}
	s.setupRoutes()
	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Stripe calls this directly; it authenticates by signature.
	s.echo.POST("/api/webhook/stripe", s.handlers.Webhook.HandleStripeWebhook)

	checkout := s.echo.Group("/api/checkout")
	checkout.GET("/get-record", s.handlers.Checkout.GetRecord)
	checkout.GET("/check-payment-status", s.handlers.Checkout.CheckPaymentStatus)

	s.echo.GET("/payments", s.handlers.Payments.Handle)

	internal := s.echo.Group("/api/internal", auth.JWTMiddleware(auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
	}))
	internal.GET("/payments/:clientSecret", s.handlers.Internal.GetPayment)
	internal.GET("/webhook-events", s.handlers.Internal.ListWebhookEvents)
}
