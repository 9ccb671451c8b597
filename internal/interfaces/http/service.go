package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/application/account"
	"github.com/tdex-network/custody-daemon/internal/core/application/escrow"
	"github.com/tdex-network/custody-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/custody-daemon/internal/core/application/vault"
	interfaces "github.com/tdex-network/custody-daemon/internal/interfaces"
	httphandler "github.com/tdex-network/custody-daemon/internal/interfaces/http/handler"
	"github.com/tdex-network/custody-daemon/internal/interfaces/http/middleware"
	"github.com/tdex-network/custody-daemon/internal/interfaces/http/permissions"
)

const shutdownTimeout = 5 * time.Second

type ServiceOpts struct {
	Port         int
	MaxClockSkew time.Duration
	// Operator is the only key allowed to manage webhooks. Webhook routes are
	// forbidden if nil.
	Operator *solana.PublicKey

	VaultSvc   *vault.Service
	EscrowSvc  *escrow.Service
	AccountSvc *account.Service
	PubSubSvc  *pubsub.Service
}

func (o ServiceOpts) validate() error {
	if o.Port <= 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	if o.MaxClockSkew <= 0 {
		return fmt.Errorf("max clock skew must be positive")
	}
	return permissions.Validate()
}

type service struct {
	opts   ServiceOpts
	server *http.Server
}

// NewService returns the HTTP interface of the daemon.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	router, err := NewRouter(opts)
	if err != nil {
		return nil, err
	}

	return &service{
		opts: opts,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// NewRouter returns the gin engine serving all routes.
func NewRouter(opts ServiceOpts) (*gin.Engine, error) {
	handler, err := httphandler.NewHandler(
		opts.VaultSvc, opts.EscrowSvc, opts.AccountSvc, opts.PubSubSvc,
	)
	if err != nil {
		return nil, err
	}

	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.Auth(opts.MaxClockSkew, opts.Operator),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.RegisterRoutes(router)

	return router, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}

	go func() {
		if err := s.server.Serve(lis); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http: server stopped unexpectedly")
		}
	}()

	log.Infof("http interface listening on %s", lis.Addr())
	if s.opts.Operator == nil {
		log.Warn("no operator key configured, webhook management is disabled")
	}
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http: failed to shutdown gracefully")
	}
	log.Debug("disabled http interface")
}
