package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/jwaldner/stockai/internal/audit"
	"github.com/jwaldner/stockai/internal/chart"
	"github.com/jwaldner/stockai/internal/dashboard"
	"github.com/jwaldner/stockai/internal/dto"
	"github.com/jwaldner/stockai/internal/form"
	"github.com/jwaldner/stockai/internal/logger"
	"github.com/jwaldner/stockai/internal/models"
	"github.com/jwaldner/stockai/internal/predictor"
	"github.com/jwaldner/stockai/web"
)

const (
	// SessionCookie carries the dashboard session id
	SessionCookie = "stockai_session"

	appTitle = "StockAI Predictor"

	sourceForm = "form"
	sourceAPI  = "api"
)

// DashboardHandler serves the prediction dashboard - HTTP layer only, the
// state lives in the session dashboards
type DashboardHandler struct {
	client   predictor.Predictor
	sessions *dashboard.Sessions
	recorder audit.Recorder
	symbols  SymbolLister
	tmpl     *template.Template
	upgrader websocket.Upgrader
}

// SymbolLister provides the ticker suggestions for the symbol input
type SymbolLister interface {
	GetSymbolsAsStrings() ([]string, error)
}

// NewDashboardHandler parses the embedded templates and wires the handler.
// A nil recorder records nothing; a nil lister offers no suggestions.
func NewDashboardHandler(client predictor.Predictor, sessions *dashboard.Sessions, recorder audit.Recorder, lister SymbolLister) (*DashboardHandler, error) {
	funcMap := template.FuncMap{
		"itoa": strconv.Itoa,
	}
	tmpl, err := web.ParseTemplates(funcMap)
	if err != nil {
		return nil, err
	}

	if recorder == nil {
		recorder = audit.NewNoopRecorder()
	}

	return &DashboardHandler{
		client:   client,
		sessions: sessions,
		recorder: recorder,
		symbols:  lister,
		tmpl:     tmpl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}, nil
}

// Register adds the dashboard routes to r
func (h *DashboardHandler) Register(r *mux.Router) {
	r.HandleFunc("/", h.HomeHandler).Methods("GET")
	r.HandleFunc("/predict", h.PredictHandler).Methods("POST")
	r.HandleFunc("/ws", h.WebSocketHandler).Methods("GET")
	r.HandleFunc("/api/state", h.StateHandler).Methods("GET")
	r.HandleFunc("/api/predict", h.APIPredictHandler).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/test-connection", h.TestConnectionHandler).Methods("GET", "OPTIONS")
}

// session returns the caller's dashboard and refreshes the cookie when a
// new session had to be created
func (h *DashboardHandler) session(w http.ResponseWriter, r *http.Request) (string, *dashboard.Dashboard) {
	var current string
	if c, err := r.Cookie(SessionCookie); err == nil {
		current = c.Value
	}

	id, d := h.sessions.Get(current)
	if id != current {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return id, d
}

// HomeHandler serves the full dashboard page
func (h *DashboardHandler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	_, d := h.session(w, r)
	snap := d.Snapshot()

	data := dto.TemplateData{
		Title:           appTitle,
		Form:            d.Form(),
		DayOptions:      form.DayOptions,
		IntervalOptions: form.IntervalOptions,
		ButtonLabel:     form.ButtonLabel(snap.Loading),
		Loading:         snap.Loading,
		Symbols:         h.suggestions(),
		Panel:           panelData(snap),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "home", data); err != nil {
		logger.Error.Printf("❌ Template execution error: %v", err)
		http.Error(w, "Template execution error: "+err.Error(), http.StatusInternalServerError)
	}
}

// PredictHandler accepts the form post and runs the prediction for the
// session. partial=1 answers with the panel fragment instead of a redirect.
func (h *DashboardHandler) PredictHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	id, d := h.session(w, r)
	f := form.FromValues(r.PostForm)
	d.Remember(f)

	accepted := f.Submit(func(symbol string, days int, interval string) {
		h.runPrediction(r.Context(), id, d, symbol, days, interval)
	})
	if !accepted {
		logger.Debug.Printf("📝 FORM: empty symbol ignored (session %s)", id)
	}

	if r.URL.Query().Get("partial") == "1" {
		h.writePanel(w, d.Snapshot())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// runPrediction drives the session dashboard and records the attempt. The
// call is detached from the browser request so closing the tab does not
// abort it.
func (h *DashboardHandler) runPrediction(ctx context.Context, sessionID string, d *dashboard.Dashboard, symbol string, days int, interval string) {
	logger.Info.Printf("🔮 PREDICT: %s days=%d interval=%s (session %s)", symbol, days, interval, sessionID)

	start := time.Now()
	points, err := d.Submit(context.WithoutCancel(ctx), symbol, days, interval)
	if err != nil {
		logger.Warn.Printf("⚠️  PREDICT: %s failed: %v", symbol, err)
	}
	h.record(sessionID, sourceForm, models.PredictionRequest{Symbol: symbol, Days: days, Interval: interval}, len(points), err, time.Since(start))
}

func (h *DashboardHandler) record(sessionID, source string, req models.PredictionRequest, points int, err error, duration time.Duration) {
	a := &audit.PredictionAttempt{
		Time:       time.Now(),
		SessionID:  sessionID,
		Source:     source,
		Symbol:     req.Symbol,
		Days:       req.Days,
		Interval:   req.Interval,
		Outcome:    audit.OutcomeSuccess,
		Points:     points,
		DurationMs: duration.Milliseconds(),
	}
	if err != nil {
		a.Outcome = audit.OutcomeFailure
		a.Error = dashboard.ErrorMessage(err)
	}
	if rerr := h.recorder.RecordAttempt(a); rerr != nil {
		logger.Warn.Printf("⚠️  AUDIT: failed to record attempt: %v", rerr)
	}
}

// StateHandler returns the session snapshot as JSON
func (h *DashboardHandler) StateHandler(w http.ResponseWriter, r *http.Request) {
	_, d := h.session(w, r)
	snap := d.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.StateResponse{
		Loading: snap.Loading,
		Button:  form.ButtonLabel(snap.Loading),
		Error:   snap.Error,
		Panel:   snap.Panel.String(),
		Data:    snap.Result,
	})
}

// APIPredictHandler is a stateless JSON pass-through to the prediction service
func (h *DashboardHandler) APIPredictHandler(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w, "POST, OPTIONS")
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req models.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Symbol == "" {
		writeDetail(w, http.StatusBadRequest, "symbol is required")
		return
	}
	req.Symbol = strings.ToUpper(req.Symbol)
	if req.Days == 0 {
		req.Days = form.DefaultDays
	}
	if req.Interval == "" {
		req.Interval = form.DefaultInterval
	}

	start := time.Now()
	points, err := h.client.Predict(r.Context(), req)
	h.record("", sourceAPI, req, len(points), err, time.Since(start))

	if err != nil {
		var pe *predictor.PredictionError
		if errors.As(err, &pe) {
			writeDetail(w, pe.StatusCode, pe.Error())
			return
		}
		logger.Error.Printf("❌ API PREDICT: %s: %v", req.Symbol, err)
		writeDetail(w, http.StatusBadGateway, dashboard.ErrorMessage(err))
		return
	}

	if points == nil {
		points = []models.PricePoint{}
	}
	json.NewEncoder(w).Encode(points)
}

// TestConnectionHandler checks that the prediction service answers
func (h *DashboardHandler) TestConnectionHandler(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w, "GET, OPTIONS")
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.client.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"message": "Prediction service connection failed: " + err.Error(),
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "success",
		"message":   "Prediction service connection successful",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// WebSocketHandler pushes every state change of the session to the page
func (h *DashboardHandler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	id, d := h.session(w, r)

	// w.Header() carries the session cookie when one was just created
	conn, err := h.upgrader.Upgrade(w, r, w.Header())
	if err != nil {
		logger.Warn.Printf("⚠️  WS: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := d.Subscribe()
	defer unsubscribe()

	logger.Debug.Printf("🔌 WS: session %s connected", id)

	// the page never sends anything; reading detects the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.push(conn, d.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case snap := <-updates:
			if err := h.push(conn, snap); err != nil {
				logger.Debug.Printf("🔌 WS: session %s write failed: %v", id, err)
				return
			}
		case <-closed:
			logger.Debug.Printf("🔌 WS: session %s disconnected", id)
			return
		}
	}
}

func (h *DashboardHandler) push(conn *websocket.Conn, snap dashboard.Snapshot) error {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "panel", panelData(snap)); err != nil {
		logger.Error.Printf("❌ Panel template error: %v", err)
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(dto.PushMessage{
		Loading: snap.Loading,
		Button:  form.ButtonLabel(snap.Loading),
		Panel:   buf.String(),
	})
}

func (h *DashboardHandler) writePanel(w http.ResponseWriter, snap dashboard.Snapshot) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "panel", panelData(snap)); err != nil {
		logger.Error.Printf("❌ Panel template error: %v", err)
		http.Error(w, "Template execution error: "+err.Error(), http.StatusInternalServerError)
	}
}

func (h *DashboardHandler) suggestions() []string {
	if h.symbols == nil {
		return nil
	}
	list, err := h.symbols.GetSymbolsAsStrings()
	if err != nil {
		logger.Warn.Printf("⚠️  Could not load symbol suggestions: %v", err)
		return nil
	}
	return list
}

func panelData(snap dashboard.Snapshot) dto.PanelData {
	p := dto.PanelData{
		Kind:  snap.Panel.String(),
		Error: snap.Error,
	}
	if snap.Panel == dashboard.PanelChart {
		p.Chart = chart.Build(snap.Result)
	}
	return p
}

func setCORSHeaders(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{Detail: detail})
}
