package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cryptopusher/internal/alert"
	"cryptopusher/internal/display"

	"go.uber.org/zap"
)

const (
	defaultPushTitle = "Crypto Alert"
	defaultPushBody  = "New update available"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	info := map[string]any{
		"service": "cryptopusher",
		"status":  "running",
		"symbols": len(s.opts.Store.GetAll()),
		"priced":  s.opts.Store.CountPriced(),
		"endpoints": map[string]string{
			"GET /display":              "ASCII price board",
			"GET /display/auto-refresh": "Auto-refreshing price board",
			"GET /prices":               "Current state of every symbol",
			"POST /prices/update":       "Fetch prices now",
			"GET /alerts":               "Alert thresholds and status",
			"PUT /alerts/{symbol}":      "Update a symbol's thresholds",
			"POST /fcm/send-to-topic":   "Send a push to the alert topic",
			"POST /fcm/send-to-token":   "Send a push to one device",
		},
	}
	if s.opts.Throttle != nil {
		if last, ok := s.opts.Throttle.LastSent(); ok {
			info["last_notification"] = last
		}
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDisplay(w http.ResponseWriter, _ *http.Request) {
	text := display.Text(s.opts.Store.GetAll(), s.opts.Thresholds.Snapshot())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func (s *Server) handleAutoRefresh(w http.ResponseWriter, _ *http.Request) {
	page, err := display.Page(display.PageOptions{Source: "/display", Interval: 2 * time.Second})
	if err != nil {
		s.logger.Error("render auto-refresh page", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handlePrices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp": s.now(),
		"symbols":   s.opts.Store.GetAll(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.opts.Refresh == nil {
		writeError(w, http.StatusServiceUnavailable, "price refresh not available")
		return
	}
	if err := s.opts.Refresh(r.Context()); err != nil {
		s.logger.Warn("manual price refresh failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "updated", "priced": s.opts.Store.CountPriced()})
}

type alertEntry struct {
	Symbol         string      `json:"symbol"`
	Name           string      `json:"name"`
	Price          *float64    `json:"price"`
	FormattedPrice string      `json:"formatted_price"`
	Status         alert.State `json:"alert_status"`
	Low            *float64    `json:"low"`
	High           *float64    `json:"high"`
}

func (s *Server) handleGetAlerts(w http.ResponseWriter, _ *http.Request) {
	thresholds := s.opts.Thresholds.Snapshot()
	var entries []alertEntry
	for _, st := range s.opts.Store.GetAll() {
		th := thresholds[st.Symbol]
		entries = append(entries, alertEntry{
			Symbol:         st.Symbol,
			Name:           st.DisplayName,
			Price:          st.Price,
			FormattedPrice: st.FormattedPrice,
			Status:         st.AlertState,
			Low:            th.Low,
			High:           th.High,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": entries})
}

// handlePutAlert persists the merged thresholds first and only then applies
// them, so memory never holds levels the store rejected. Updates run one at
// a time through the book.
func (s *Server) handlePutAlert(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToLower(r.PathValue("symbol"))
	if !s.opts.Thresholds.Tracks(symbol) {
		writeError(w, http.StatusNotFound, "unknown symbol "+symbol)
		return
	}

	var patch alert.Thresholds
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if patch.IsEmpty() {
		writeError(w, http.StatusBadRequest, "low or high is required")
		return
	}

	merged, err := s.opts.Thresholds.Apply(symbol, patch, func(th alert.Thresholds) error {
		if s.opts.Source == nil {
			return nil
		}
		return s.opts.Source.Save(r.Context(), alert.ThresholdSet{symbol: th})
	})
	if errors.Is(err, alert.ErrUnknownSymbol) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("save thresholds", zap.String("symbol", symbol), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to save thresholds")
		return
	}
	state, _ := s.opts.Store.Reevaluate(symbol)

	s.logger.Info("thresholds updated",
		zap.String("symbol", symbol),
		zap.Any("low", merged.Low),
		zap.Any("high", merged.High),
		zap.Stringer("state", state),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":       symbol,
		"low":          merged.Low,
		"high":         merged.High,
		"alert_status": state,
	})
}

type pushRequest struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

func (s *Server) decodePush(w http.ResponseWriter, r *http.Request) (pushRequest, bool) {
	var req pushRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
			return req, false
		}
	}
	if req.Title == "" {
		req.Title = defaultPushTitle
	}
	if req.Body == "" {
		req.Body = defaultPushBody
	}
	return req, true
}

func (s *Server) handleSendToTopic(w http.ResponseWriter, r *http.Request) {
	if s.opts.Push == nil {
		writeError(w, http.StatusServiceUnavailable, "fcm is not available")
		return
	}
	req, ok := s.decodePush(w, r)
	if !ok {
		return
	}

	name, err := s.opts.Push.SendToTopic(r.Context(), s.opts.Topic, req.Title, req.Body, req.Data)
	if err != nil {
		s.logger.Error("manual topic push failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to send push")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"topic":   s.opts.Topic,
		"message": name,
	})
}

func (s *Server) handleSendToToken(w http.ResponseWriter, r *http.Request) {
	if s.opts.Push == nil {
		writeError(w, http.StatusServiceUnavailable, "fcm is not available")
		return
	}
	req, ok := s.decodePush(w, r)
	if !ok {
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	name, err := s.opts.Push.SendToToken(r.Context(), req.Token, req.Title, req.Body, req.Data)
	if err != nil {
		s.logger.Error("manual token push failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to send push")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "success",
		"token_preview": tokenPreview(req.Token),
		"message":       name,
	})
}

func tokenPreview(token string) string {
	if len(token) <= 30 {
		return token[:min(len(token), 6)] + "..."
	}
	return token[:20] + "..." + token[len(token)-10:]
}
