package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingPruner struct {
	mu    sync.Mutex
	calls int
	idle  time.Duration
}

func (p *countingPruner) Prune(idle time.Duration) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.idle = idle
	return 0
}

type failingUpdater struct {
	calls     int
	autoCalls int
	maxAge    time.Duration
}

func (u *failingUpdater) UpdateSymbols(ctx context.Context) (int, error) {
	u.calls++
	return 0, errors.New("source down")
}

func (u *failingUpdater) AutoUpdate(ctx context.Context, maxAge time.Duration) error {
	u.autoCalls++
	u.maxAge = maxAge
	return errors.New("source down")
}

func TestRegisterAllRejectsBadSpec(t *testing.T) {
	s := New(context.Background(), &countingPruner{}, nil)
	if err := s.RegisterAll("not a cron", time.Hour, ""); err == nil {
		t.Error("expected error for invalid prune spec")
	}

	s = New(context.Background(), &countingPruner{}, &failingUpdater{})
	if err := s.RegisterAll("0 */5 * * * *", time.Hour, "every tuesday"); err == nil {
		t.Error("expected error for invalid update spec")
	}
}

func TestRegisterAllSkipsSymbolRefreshWhenUnset(t *testing.T) {
	s := New(context.Background(), &countingPruner{}, &failingUpdater{})
	if err := s.RegisterAll("0 */5 * * * *", time.Hour, ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if n := len(s.Cron.Entries()); n != 1 {
		t.Errorf("expected only the prune job, got %d entries", n)
	}

	s = New(context.Background(), &countingPruner{}, &failingUpdater{})
	if err := s.RegisterAll("0 */5 * * * *", time.Hour, "0 0 6 * * 1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if n := len(s.Cron.Entries()); n != 2 {
		t.Errorf("expected prune and refresh jobs, got %d entries", n)
	}
}

func TestPruneJobRuns(t *testing.T) {
	p := &countingPruner{}
	s := New(context.Background(), p, nil)
	if err := s.RegisterAll("* * * * * *", 30*time.Minute, ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	s.Start()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		calls := p.calls
		p.mu.Unlock()
		if calls > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	s.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == 0 {
		t.Fatal("prune job never ran")
	}
	if p.idle != 30*time.Minute {
		t.Errorf("prune got idle %v", p.idle)
	}
}

func TestRefreshSymbolsSurvivesFailure(t *testing.T) {
	u := &failingUpdater{}
	s := New(context.Background(), &countingPruner{}, u)
	s.refreshSymbols()
	if u.calls != 1 {
		t.Errorf("expected one update call, got %d", u.calls)
	}
}

func TestRefreshSymbolsIfStale(t *testing.T) {
	u := &failingUpdater{}
	s := New(context.Background(), &countingPruner{}, u)
	s.RefreshSymbolsIfStale(24 * time.Hour)
	if u.autoCalls != 1 {
		t.Fatalf("expected one auto update call, got %d", u.autoCalls)
	}
	if u.maxAge != 24*time.Hour {
		t.Errorf("auto update got max age %v", u.maxAge)
	}
	if u.calls != 0 {
		t.Errorf("startup refresh must not force an update, got %d calls", u.calls)
	}

	// no symbol service configured
	New(context.Background(), &countingPruner{}, nil).RefreshSymbolsIfStale(time.Hour)
}
