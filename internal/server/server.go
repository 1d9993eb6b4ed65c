package server

import (
	"context"
	"net/http"
	"time"

	"cryptopusher/internal/alert"
	"cryptopusher/internal/memorystore"

	"go.uber.org/zap"
)

// StateStore is what the handlers read from and re-evaluate.
type StateStore interface {
	GetAll() []memorystore.SymbolState
	Reevaluate(symbol string) (alert.State, bool)
	CountPriced() int
}

// PushSender delivers manual push messages.
type PushSender interface {
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) (string, error)
	SendToToken(ctx context.Context, token, title, body string, data map[string]string) (string, error)
}

// Options wires the HTTP surface to the running service. Push and Refresh
// are optional.
type Options struct {
	Store      StateStore
	Thresholds *alert.ThresholdBook
	Source     alert.ThresholdSource
	Throttle   *alert.Throttle
	Push       PushSender
	Topic      string
	Refresh    func(ctx context.Context) error
	Logger     *zap.Logger
	Now        func() time.Time
}

type Server struct {
	opts   Options
	logger *zap.Logger
	now    func() time.Time
	mux    *http.ServeMux
}

func New(opts Options) *Server {
	s := &Server{
		opts:   opts,
		logger: opts.Logger,
		now:    opts.Now,
		mux:    http.NewServeMux(),
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleInfo)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /display", s.handleDisplay)
	s.mux.HandleFunc("GET /display/auto-refresh", s.handleAutoRefresh)
	s.mux.HandleFunc("GET /prices", s.handlePrices)
	s.mux.HandleFunc("POST /prices/update", s.handleRefresh)
	s.mux.HandleFunc("GET /alerts", s.handleGetAlerts)
	s.mux.HandleFunc("PUT /alerts/{symbol}", s.handlePutAlert)
	s.mux.HandleFunc("POST /fcm/send-to-topic", s.handleSendToTopic)
	s.mux.HandleFunc("POST /fcm/send-to-token", s.handleSendToToken)
}

// Handler returns the router wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return withRequestLog(s.logger, s.mux)
}
