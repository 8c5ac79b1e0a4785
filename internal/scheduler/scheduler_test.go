package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_Validation(t *testing.T) {
	noop := func(context.Context) error { return nil }

	tests := []struct {
		name     string
		interval time.Duration
		cycle    Cycle
		wantErr  bool
		wantSpec string
	}{
		{"hours", 6 * time.Hour, noop, false, "@every 6h0m0s"},
		{"zero interval", 0, noop, true, ""},
		{"negative interval", -time.Minute, noop, true, ""},
		{"nil cycle", time.Hour, nil, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.interval, tt.cycle, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s.Spec() != tt.wantSpec {
				t.Errorf("Spec() = %q, want %q", s.Spec(), tt.wantSpec)
			}
		})
	}
}

func TestStart_RunsImmediately(t *testing.T) {
	ran := make(chan struct{}, 1)
	s, err := New(time.Hour, func(context.Context) error {
		ran <- struct{}{}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not run on start")
	}

	if next := s.Next(); next.IsZero() || next.Before(time.Now()) {
		t.Errorf("Next() = %v, want a future time", next)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	s, err := New(time.Hour, func(context.Context) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(done)
		}
		return errors.New("gmail unavailable")
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result := make(chan error, 1)
	go func() { result <- s.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not run")
	}
	cancel()

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// A failing cycle still counts as a completed run
	deadline := time.Now().Add(2 * time.Second)
	for s.Runs() < 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.Runs() != 1 {
		t.Errorf("Runs() = %d, want 1", s.Runs())
	}
}
