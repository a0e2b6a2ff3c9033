package telegram

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type ServerOptions struct {
	Address      string
	WebhookPath  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server exposes the webhook next to /metrics and /healthz
type Server struct {
	server *http.Server
	logger logrus.FieldLogger
}

func NewServer(opts ServerOptions, bot *Bot, metrics *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle(opts.WebhookPath, bot)
	if metrics != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &Server{
		server: &http.Server{
			Addr:         opts.Address,
			Handler:      mux,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
		logger: GetModuleLogger("server"),
	}
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Serve blocks until the server fails or Shutdown is called, the latter returns nil
func (s *Server) Serve() error {
	s.logger.Infof("listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	return s.server.Shutdown(ctx)
}
