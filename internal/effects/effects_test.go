package effects

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/gridstart/internal/platform"
)

type recorder struct {
	mu    sync.Mutex
	rect  platform.Rect
	moves []platform.Rect
	above []bool
	decor [][2]bool
}

func (r *recorder) Rect(platform.WindowID) (platform.Rect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rect, nil
}

func (r *recorder) MoveResize(_ platform.WindowID, b platform.Rect) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, b)
	return nil
}

func (r *recorder) SetAbove(_ platform.WindowID, above bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.above = append(r.above, above)
	return nil
}

func (r *recorder) HideDecorations(_ platform.WindowID, title, border bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decor = append(r.decor, [2]bool{title, border})
	return nil
}

func TestApplyDisabledDoesNothing(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(rec, Options{}, nil)
	r.Apply(context.Background(), 1)
	r.Wait()
	if len(rec.moves)+len(rec.above)+len(rec.decor) != 0 {
		t.Fatalf("expected no calls, got %+v", rec)
	}
}

func TestFlashSetsAndClearsAbove(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(rec, Options{FlashTopmost: time.Second}, nil)
	r.sleep = func(context.Context, time.Duration) bool { return true }

	r.Apply(context.Background(), 1)
	r.Wait()

	if len(rec.above) != 2 || !rec.above[0] || rec.above[1] {
		t.Fatalf("expected [true false], got %v", rec.above)
	}
}

func TestShakeRestoresOrigin(t *testing.T) {
	origin := platform.Rect{X: 100, Y: 200, Width: 300, Height: 400}
	rec := &recorder{rect: origin}
	r := NewRunner(rec, Options{ShakeDuration: time.Hour, ShakeIntensity: 10}, nil)

	steps := 0
	r.sleep = func(context.Context, time.Duration) bool {
		steps++
		return steps < 4
	}

	r.Apply(context.Background(), 1)
	r.Wait()

	if len(rec.moves) != 5 {
		t.Fatalf("expected 4 nudges and a restore, got %d moves", len(rec.moves))
	}
	if rec.moves[0].X != 90 || rec.moves[1].X != 110 || rec.moves[2].Y != 190 || rec.moves[3].Y != 210 {
		t.Fatalf("unexpected shake path %+v", rec.moves)
	}
	if rec.moves[4] != origin {
		t.Fatalf("expected restore to %+v, got %+v", origin, rec.moves[4])
	}
}

func TestHideDecorationsIsSynchronous(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(rec, Options{HideTitleBar: true}, nil)
	r.Apply(context.Background(), 1)

	if len(rec.decor) != 1 || rec.decor[0] != [2]bool{true, false} {
		t.Fatalf("expected one title-only call, got %v", rec.decor)
	}
}
