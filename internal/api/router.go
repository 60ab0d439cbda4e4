package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/safar/shop-backoffice/internal/config"
	"github.com/safar/shop-backoffice/internal/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Handlers struct {
	Order        *Order
	Catalog      *Catalog
	Notification *Notification
	DB           *sql.DB
	JWTSecret    []byte
}

func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.Use(GinZap(), gin.Recovery(), PrometheusMiddleware())

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	h.Order.RegisterRouter(api, h.JWTSecret)
	h.Catalog.RegisterRouter(api)
	h.Notification.RegisterRouter(api, r.Group("/ws"), h.JWTSecret)

	return r
}

func (h *Handlers) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		log.L.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Run serves handler until ctx is cancelled or the process is signalled,
// then shuts the server down gracefully.
func Run(ctx context.Context, cfg *config.ServerConfig, handler http.Handler) error {
	serv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)
	defer signal.Stop(sig)

	eg, groupCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		log.L.Info("server starting", zap.String("addr", serv.Addr))
		err := serv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		defer func() {
			log.L.Info("server stopping")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := serv.Shutdown(shutdownCtx); err != nil {
				log.L.Warn("server shutdown", zap.Error(err))
			}
		}()

		select {
		case <-groupCtx.Done():
			return groupCtx.Err()
		case s := <-sig:
			log.L.Info("signal received", zap.String("signal", s.String()))
			return nil
		}
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.L.Info("server stopped")
	return nil
}
