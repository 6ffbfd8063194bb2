// Package form holds the prediction input form: its controls, defaults and
// the submit rule.
package form

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultDays     = 7
	DefaultInterval = "1d"

	SubmitLabel = "Predict Stock Price"
	BusyLabel   = "Predicting..."
)

// Option is one entry of a select control
type Option struct {
	Value string
	Label string
}

// DayOptions are the prediction horizons offered by the days selector
var DayOptions = []Option{
	{Value: "7", Label: "7 Days"},
	{Value: "14", Label: "14 Days"},
	{Value: "30", Label: "30 Days"},
}

// IntervalOptions are the sampling intervals offered by the interval selector
var IntervalOptions = []Option{
	{Value: "1d", Label: "Daily"},
	{Value: "1wk", Label: "Weekly"},
	{Value: "1mo", Label: "Monthly"},
}

// Form is the state of the three input controls
type Form struct {
	Symbol   string
	Days     int
	Interval string
}

// SubmitFunc receives an accepted submission
type SubmitFunc func(symbol string, days int, interval string)

// New returns a form with its initial values
func New() Form {
	return Form{Days: DefaultDays, Interval: DefaultInterval}
}

// FromValues reads posted form values. Days or interval values that the
// selectors do not offer fall back to their defaults. The symbol is kept
// exactly as typed.
func FromValues(values url.Values) Form {
	f := New()
	f.Symbol = values.Get("symbol")

	if days, err := strconv.Atoi(values.Get("days")); err == nil && isOffered(DayOptions, strconv.Itoa(days)) {
		f.Days = days
	}
	if interval := values.Get("interval"); isOffered(IntervalOptions, interval) {
		f.Interval = interval
	}
	return f
}

// Submit hands the uppercased symbol, days and interval to handler. An empty
// symbol is silently ignored and Submit reports false.
func (f Form) Submit(handler SubmitFunc) bool {
	if f.Symbol == "" {
		return false
	}
	handler(strings.ToUpper(f.Symbol), f.Days, f.Interval)
	return true
}

// ButtonLabel is the submit button text for the given loading state
func ButtonLabel(loading bool) string {
	if loading {
		return BusyLabel
	}
	return SubmitLabel
}

func isOffered(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
