package textgen

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyCompleter struct {
	err   error
	calls int
}

func (f *flakyCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "ok", nil
}

func TestGuardedPassesThrough(t *testing.T) {
	inner := &flakyCompleter{}
	g := NewGuarded(inner, 3, time.Minute)

	got, err := g.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q", got)
	}
}

func TestGuardedOpensAfterFailures(t *testing.T) {
	inner := &flakyCompleter{err: errors.New("api down")}
	g := NewGuarded(inner, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := g.Complete(context.Background(), "prompt"); err == nil {
			t.Fatal("expected failure")
		}
	}

	// Circuit is now open, upstream must not be called
	callsBefore := inner.calls
	_, err := g.Complete(context.Background(), "prompt")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != callsBefore {
		t.Error("open circuit should skip the upstream call")
	}
}

func TestGuardedRecoversAfterCooldown(t *testing.T) {
	inner := &flakyCompleter{err: errors.New("api down")}
	g := NewGuarded(inner, 2, 10*time.Millisecond)

	g.Complete(context.Background(), "p")
	g.Complete(context.Background(), "p")

	if _, err := g.Complete(context.Background(), "p"); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	inner.err = nil // upstream recovered

	got, err := g.Complete(context.Background(), "p")
	if err != nil {
		t.Fatalf("probe after cooldown failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q", got)
	}

	// Probe success closes the circuit
	if _, err := g.Complete(context.Background(), "p"); err != nil {
		t.Errorf("closed circuit should pass through, got %v", err)
	}
}

func TestGuardedIgnoresCallerCancellation(t *testing.T) {
	inner := &flakyCompleter{err: context.Canceled}
	g := NewGuarded(inner, 1, time.Minute)

	g.Complete(context.Background(), "p")

	// Cancellation must not trip the breaker
	if _, err := g.Complete(context.Background(), "p"); errors.Is(err, ErrCircuitOpen) {
		t.Error("caller cancellation should not open the circuit")
	}
}
