package dto

import (
	"github.com/jwaldner/stockai/internal/chart"
	"github.com/jwaldner/stockai/internal/form"
	"github.com/jwaldner/stockai/internal/models"
)

// TemplateData represents data passed to the home template
type TemplateData struct {
	Title           string
	Form            form.Form
	DayOptions      []form.Option
	IntervalOptions []form.Option
	ButtonLabel     string
	Loading         bool
	Symbols         []string
	Panel           PanelData
}

// PanelData represents data passed to the panel template
type PanelData struct {
	Kind  string // spinner, error, chart, empty
	Error string
	Chart chart.Chart
}

// StateResponse is the JSON view of a session's dashboard
type StateResponse struct {
	Loading bool                `json:"loading"`
	Button  string              `json:"button"`
	Error   string              `json:"error"`
	Panel   string              `json:"panel"`
	Data    []models.PricePoint `json:"data"`
}

// PushMessage is sent over the websocket after every state change
type PushMessage struct {
	Loading bool   `json:"loading"`
	Button  string `json:"button"`
	Panel   string `json:"panel"` // rendered panel fragment
}

// ErrorResponse mirrors the prediction service error body
type ErrorResponse struct {
	Detail string `json:"detail"`
}
