package framework

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ShutdownTimeout bounds the graceful shutdown of HTTPServer.
const ShutdownTimeout = 2 * time.Second

// HTTPServer runs an http.Server until the context is canceled.
type HTTPServer struct {
	Server *http.Server
}

// MetricsServer serves the metrics in gatherer at /metrics on addr.
func MetricsServer(addr string, gatherer prometheus.Gatherer) *HTTPServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &HTTPServer{Server: &http.Server{Addr: addr, Handler: mux}}
}

// Name implements Named.
func (s *HTTPServer) Name() string {
	return "http:" + s.Server.Addr
}

// Run implements Runnable.
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		glog.Infof("serving http on %s", s.Server.Addr)
		errCh <- s.Server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
