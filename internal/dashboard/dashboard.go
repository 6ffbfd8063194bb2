// Package dashboard holds the per-session prediction state (loading flag,
// error message, last result) and decides which panel the page shows.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/jwaldner/stockai/internal/form"
	"github.com/jwaldner/stockai/internal/models"
)

// FallbackMessage is shown when a failure carries no message of its own
const FallbackMessage = "Failed to fetch prediction data"

// Predictor is the prediction call the dashboard sequences
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) ([]models.PricePoint, error)
}

// Panel is what the result area of the page shows
type Panel int

const (
	PanelEmpty Panel = iota
	PanelSpinner
	PanelError
	PanelChart
)

func (p Panel) String() string {
	switch p {
	case PanelSpinner:
		return "spinner"
	case PanelError:
		return "error"
	case PanelChart:
		return "chart"
	default:
		return "empty"
	}
}

// Snapshot is a copy of the dashboard state at one moment
type Snapshot struct {
	Loading bool
	Error   string
	Result  []models.PricePoint
	Panel   Panel
}

// Dashboard is the orchestrator for one browser session
type Dashboard struct {
	predictor Predictor

	mu         sync.Mutex
	loading    bool
	errMsg     string
	result     []models.PricePoint
	form       form.Form
	lastActive time.Time

	subs    map[int]chan Snapshot
	nextSub int
}

// New returns an idle dashboard
func New(p Predictor) *Dashboard {
	return &Dashboard{
		predictor:  p,
		form:       form.New(),
		lastActive: time.Now(),
		subs:       make(map[int]chan Snapshot),
	}
}

// Submit runs one prediction: it enters loading, calls the predictor and
// stores either the result or the error message. The loading flag is
// cleared on every exit path. The previous result is kept on failure.
// The points returned are those of this call, whatever the stored state
// holds by the time the caller looks.
//
// Submissions are not serialized; when two overlap, whichever completes
// last determines the stored result or error.
func (d *Dashboard) Submit(ctx context.Context, symbol string, days int, interval string) ([]models.PricePoint, error) {
	d.update(func() {
		d.errMsg = ""
		d.loading = true
	})
	defer d.update(func() { d.loading = false })

	points, err := d.predictor.Predict(ctx, models.PredictionRequest{
		Symbol:   symbol,
		Days:     days,
		Interval: interval,
	})
	if err != nil {
		d.update(func() { d.errMsg = ErrorMessage(err) })
		return nil, err
	}

	d.update(func() { d.result = points })
	return points, nil
}

// Remember keeps the form as last posted so the page can render it again
func (d *Dashboard) Remember(f form.Form) {
	d.mu.Lock()
	d.form = f
	d.mu.Unlock()
}

// Form returns the last posted form, or the initial form
func (d *Dashboard) Form() form.Form {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form
}

// ErrorMessage is the text shown in the error panel for err
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackMessage
}

// Snapshot returns the current state and the panel to display
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Dashboard) snapshotLocked() Snapshot {
	s := Snapshot{
		Loading: d.loading,
		Error:   d.errMsg,
		Result:  d.result,
	}
	s.Panel = SelectPanel(s.Loading, s.Error, len(s.Result))
	return s
}

// SelectPanel applies display precedence: loading, then error, then a
// non-empty result, then the empty-state prompt.
func SelectPanel(loading bool, errMsg string, resultLen int) Panel {
	switch {
	case loading:
		return PanelSpinner
	case errMsg != "":
		return PanelError
	case resultLen > 0:
		return PanelChart
	default:
		return PanelEmpty
	}
}

// Subscribe returns a channel receiving a snapshot after every state
// change, and a func that ends the subscription. Publishing never blocks:
// a subscriber that falls behind only sees the newest snapshot.
func (d *Dashboard) Subscribe() (<-chan Snapshot, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextSub
	d.nextSub++
	ch := make(chan Snapshot, 1)
	d.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subs, id)
			d.mu.Unlock()
		})
	}
}

// Touch marks the session as used
func (d *Dashboard) Touch() {
	d.mu.Lock()
	d.lastActive = time.Now()
	d.mu.Unlock()
}

// idleSince reports whether the dashboard can be dropped: untouched since
// cutoff, not loading and nobody subscribed.
func (d *Dashboard) idleSince(cutoff time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.loading && len(d.subs) == 0 && d.lastActive.Before(cutoff)
}

func (d *Dashboard) update(mutate func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	mutate()
	d.lastActive = time.Now()

	snap := d.snapshotLocked()
	for _, ch := range d.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale snapshot and queue the newest one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
