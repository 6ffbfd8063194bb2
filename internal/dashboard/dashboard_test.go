package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jwaldner/stockai/internal/form"
	"github.com/jwaldner/stockai/internal/models"
	"github.com/jwaldner/stockai/internal/predictor"
	testdata "github.com/jwaldner/stockai/test_data"
)

// gatedPredictor blocks each call until a response is sent on its gate
type gatedPredictor struct {
	calls chan models.PredictionRequest
	gate  chan response
}

type response struct {
	points []models.PricePoint
	err    error
}

func newGatedPredictor() *gatedPredictor {
	return &gatedPredictor{
		calls: make(chan models.PredictionRequest, 4),
		gate:  make(chan response),
	}
}

func (g *gatedPredictor) Predict(ctx context.Context, req models.PredictionRequest) ([]models.PricePoint, error) {
	g.calls <- req
	r := <-g.gate
	return r.points, r.err
}

type funcPredictor func() ([]models.PricePoint, error)

func (f funcPredictor) Predict(ctx context.Context, req models.PredictionRequest) ([]models.PricePoint, error) {
	return f()
}

type emptyError struct{}

func (emptyError) Error() string { return "" }

func submitAsync(d *Dashboard) <-chan error {
	done := make(chan error, 1)
	go func() {
		_, err := d.Submit(context.Background(), "AAPL", 7, "1d")
		done <- err
	}()
	return done
}

func TestInitialStateIsIdle(t *testing.T) {
	s := New(funcPredictor(func() ([]models.PricePoint, error) { return nil, nil })).Snapshot()
	if s.Loading || s.Error != "" || len(s.Result) != 0 {
		t.Errorf("expected idle state, got %+v", s)
	}
	if s.Panel != PanelEmpty {
		t.Errorf("expected empty panel, got %s", s.Panel)
	}
}

func TestLoadingDuringCallThenChart(t *testing.T) {
	g := newGatedPredictor()
	d := New(g)

	if d.Snapshot().Loading {
		t.Fatal("loading must be false before submission")
	}

	done := submitAsync(d)
	req := <-g.calls
	if req.Symbol != "AAPL" || req.Days != 7 || req.Interval != "1d" {
		t.Errorf("unexpected request %+v", req)
	}

	s := d.Snapshot()
	if !s.Loading || s.Panel != PanelSpinner {
		t.Errorf("expected loading spinner while the call is outstanding, got %+v", s)
	}

	g.gate <- response{points: testdata.MockAppleSeries()}
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s = d.Snapshot()
	if s.Loading {
		t.Error("loading must be false after success")
	}
	if s.Panel != PanelChart {
		t.Errorf("expected chart panel, got %s", s.Panel)
	}
	if s.Error != "" {
		t.Errorf("expected no error, got %q", s.Error)
	}
	if len(s.Result) != len(testdata.MockAppleSeries()) {
		t.Errorf("expected full result, got %d points", len(s.Result))
	}
}

func TestFailureShowsErrorAndKeepsPreviousResult(t *testing.T) {
	g := newGatedPredictor()
	d := New(g)

	done := submitAsync(d)
	<-g.calls
	g.gate <- response{points: testdata.MockAppleSeries()}
	<-done

	done = submitAsync(d)
	<-g.calls
	if s := d.Snapshot(); s.Panel != PanelSpinner || len(s.Result) == 0 {
		t.Errorf("loading must keep the previous result underneath the spinner, got %+v", s)
	}
	g.gate <- response{err: &predictor.PredictionError{Kind: predictor.ServerMessage, Detail: "symbol not found"}}
	if err := <-done; err == nil {
		t.Fatal("expected Submit to return the failure")
	}

	s := d.Snapshot()
	if s.Loading {
		t.Error("loading must be false after failure")
	}
	if s.Error != "symbol not found" {
		t.Errorf("expected server detail, got %q", s.Error)
	}
	if s.Panel != PanelError {
		t.Errorf("error must take precedence over the stored result, got %s", s.Panel)
	}
	if len(s.Result) == 0 {
		t.Error("previous result must stay in state after a failure")
	}
}

func TestNewSubmissionClearsError(t *testing.T) {
	g := newGatedPredictor()
	d := New(g)

	done := submitAsync(d)
	<-g.calls
	g.gate <- response{err: errors.New("connection refused")}
	<-done
	if d.Snapshot().Error != "connection refused" {
		t.Fatalf("expected transport message, got %q", d.Snapshot().Error)
	}

	done = submitAsync(d)
	<-g.calls
	if s := d.Snapshot(); s.Error != "" {
		t.Errorf("entering loading must clear the error, got %q", s.Error)
	}
	g.gate <- response{points: testdata.MockAppleSeries()}
	<-done
	if s := d.Snapshot(); s.Panel != PanelChart {
		t.Errorf("expected chart after recovery, got %s", s.Panel)
	}
}

func TestErrorFallbackMessage(t *testing.T) {
	d := New(funcPredictor(func() ([]models.PricePoint, error) { return nil, emptyError{} }))
	d.Submit(context.Background(), "AAPL", 7, "1d")

	if got := d.Snapshot().Error; got != FallbackMessage {
		t.Errorf("expected %q, got %q", FallbackMessage, got)
	}
}

func TestEmptyResultShowsPrompt(t *testing.T) {
	d := New(funcPredictor(func() ([]models.PricePoint, error) { return []models.PricePoint{}, nil }))
	if _, err := d.Submit(context.Background(), "AAPL", 7, "1d"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := d.Snapshot().Panel; p != PanelEmpty {
		t.Errorf("an empty result falls through to the prompt, got %s", p)
	}
}

func TestLoadingClearedWhenPredictorPanics(t *testing.T) {
	d := New(funcPredictor(func() ([]models.PricePoint, error) { panic("boom") }))

	func() {
		defer func() { recover() }()
		d.Submit(context.Background(), "AAPL", 7, "1d")
	}()

	if d.Snapshot().Loading {
		t.Error("loading must be cleared even when the call panics")
	}
}

func TestLastCompletionWins(t *testing.T) {
	g := newGatedPredictor()
	d := New(g)

	first := submitAsync(d)
	<-g.calls
	second := submitAsync(d)
	<-g.calls

	// the second call resolves first
	g.gate <- response{points: []models.PricePoint{{Date: "second", Actual: models.Price(2)}}}
	// either goroutine may take the first response; wait for one to finish
	var finished int
	select {
	case <-first:
		finished = 1
	case <-second:
		finished = 2
	case <-time.After(2 * time.Second):
		t.Fatal("no submission completed")
	}

	if d.Snapshot().Loading {
		t.Error("the first completion clears the loading flag")
	}

	g.gate <- response{points: []models.PricePoint{{Date: "late", Actual: models.Price(1)}}}
	if finished == 1 {
		<-second
	} else {
		<-first
	}

	s := d.Snapshot()
	if len(s.Result) != 1 || s.Result[0].Date != "late" {
		t.Errorf("the last completion must win, got %+v", s.Result)
	}
}

func TestSubmitReturnsItsOwnPoints(t *testing.T) {
	g := newGatedPredictor()
	d := New(g)

	type outcome struct {
		points []models.PricePoint
		err    error
	}
	run := func() <-chan outcome {
		ch := make(chan outcome, 1)
		go func() {
			p, err := d.Submit(context.Background(), "AAPL", 7, "1d")
			ch <- outcome{p, err}
		}()
		return ch
	}

	first := run()
	<-g.calls
	g.gate <- response{points: testdata.MockAppleSeries()}
	a := <-first

	second := run()
	<-g.calls
	g.gate <- response{err: errors.New("connection refused")}
	b := <-second

	if len(a.points) != len(testdata.MockAppleSeries()) || a.err != nil {
		t.Errorf("first call: got %d points, err %v", len(a.points), a.err)
	}
	if len(b.points) != 0 || b.err == nil {
		t.Errorf("a failed call returns no points even though the state keeps the old result, got %d", len(b.points))
	}
	if len(d.Snapshot().Result) != len(testdata.MockAppleSeries()) {
		t.Error("stored result should still be the first call's")
	}
}

func TestRememberForm(t *testing.T) {
	d := New(funcPredictor(func() ([]models.PricePoint, error) { return nil, nil }))

	if f := d.Form(); f != form.New() {
		t.Errorf("expected the initial form, got %+v", f)
	}

	posted := form.Form{Symbol: "msft", Days: 30, Interval: "1mo"}
	d.Remember(posted)
	if f := d.Form(); f != posted {
		t.Errorf("expected %+v, got %+v", posted, f)
	}
}

func TestSubscribersSeeEveryPhase(t *testing.T) {
	g := newGatedPredictor()
	d := New(g)

	updates, cancel := d.Subscribe()
	defer cancel()

	done := submitAsync(d)
	<-g.calls

	s := <-updates
	if !s.Loading || s.Panel != PanelSpinner {
		t.Errorf("expected loading snapshot first, got %+v", s)
	}

	g.gate <- response{points: testdata.MockAppleSeries()}
	<-done

	// the subscriber may have missed intermediate snapshots; the latest is final
	var last Snapshot
	for {
		select {
		case last = <-updates:
			continue
		default:
		}
		break
	}
	if last.Loading || last.Panel != PanelChart {
		t.Errorf("expected final chart snapshot, got %+v", last)
	}
}

func TestSelectPanelPrecedence(t *testing.T) {
	cases := []struct {
		loading bool
		err     string
		n       int
		want    Panel
	}{
		{true, "boom", 3, PanelSpinner},
		{false, "boom", 3, PanelError},
		{false, "", 3, PanelChart},
		{false, "", 0, PanelEmpty},
		{true, "", 0, PanelSpinner},
	}
	for _, c := range cases {
		if got := SelectPanel(c.loading, c.err, c.n); got != c.want {
			t.Errorf("SelectPanel(%v, %q, %d) = %s, want %s", c.loading, c.err, c.n, got, c.want)
		}
	}
}
