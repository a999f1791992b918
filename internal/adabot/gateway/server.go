// Package gateway implements the inbound HTTP surface: the LINE webhook
// endpoint plus health and metrics routes.
//
// Webhook deliveries are acknowledged immediately and processed on their own
// goroutine. The platform only cares that the delivery arrived; processing
// failures are handled (and logged) entirely inside the orchestrator and are
// never visible to the webhook caller.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tyhsieh/adabot/common/trace"
	"github.com/tyhsieh/adabot/common/version"
	"github.com/tyhsieh/adabot/internal/adabot/line"
	"github.com/tyhsieh/adabot/internal/adabot/observability"
)

// maxWebhookBody bounds how much of a delivery body is read. LINE batches
// are small; anything larger is not a webhook.
const maxWebhookBody = 1 << 20

// Dispatcher consumes one decoded webhook batch. The production
// implementation is *bot.Processor.
type Dispatcher interface {
	HandleBatch(ctx context.Context, events []line.Event)
}

// healthResponse is returned by GET /healthz.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// Server is the bot's HTTP server.
type Server struct {
	addr       string
	dispatcher Dispatcher
	server     *http.Server
	mux        *http.ServeMux
}

// New creates and configures the Server (does not start it).
func New(addr string, dispatcher Dispatcher) *Server {
	mux := http.NewServeMux()
	s := &Server{
		addr:       addr,
		dispatcher: dispatcher,
		mux:        mux,
	}
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.Handle("GET /metrics", promhttp.Handler())
	return s
}

// ServeHTTP implements http.Handler so the server can be tested without a
// live network listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start begins listening in the background. Blocks until the listener is
// established so the caller knows the port is open before returning.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("gateway: listen %s: %w", s.addr, err)
	}

	s.server = &http.Server{
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("http server listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server stopped", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop shuts down the HTTP server.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Warn("http server shutdown error", "err", err)
	}
}

// handleRoot answers the load balancer's plain-text liveness probe.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "OK")
}

// handleHealthz responds with a simple ok JSON payload.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Version,
		Commit:  version.GitCommit,
	})
}

// handleWebhook decodes the delivery and hands it to the dispatcher.
//
// The response is always 200: the platform retries non-2xx deliveries, and a
// replayed batch would double-apply session and memory transitions. A body
// that does not decode is logged and dropped.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	deliveryID := trace.NewID()
	log := slog.With("delivery_id", deliveryID)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		log.Error("webhook: read body failed", "err", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	var req line.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Error("webhook: malformed delivery body", "err", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Acknowledge before processing; the upstream timeout is short.
	w.WriteHeader(http.StatusOK)

	if len(req.Events) == 0 {
		return
	}
	log.Info("webhook delivery accepted", "events", len(req.Events))

	ctx := trace.WithID(context.Background(), deliveryID)
	go func() {
		s.dispatcher.HandleBatch(ctx, req.Events)
		observability.WithTrace(ctx).Debug("webhook delivery processed")
	}()
}

// writeJSON serialises v as JSON and writes it to w with the given status
// code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("gateway: failed to encode JSON response", "err", err)
	}
}
