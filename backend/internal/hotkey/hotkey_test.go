package hotkey

import (
	"context"
	"testing"
	"time"
)

func TestClampVK(t *testing.T) {
	for in, want := range map[int]int{-5: 1, 0: 1, 1: 1, 120: 120, 255: 255, 300: 255} {
		if got := clampVK(in); got != want {
			t.Errorf("clampVK(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSetKeyKeepsLatest(t *testing.T) {
	l := New(func() {})
	l.SetKey(100)
	l.SetKey(101)
	if got := <-l.keys; got != 101 {
		t.Errorf("pending key = %d, want 101", got)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	l := New(func() {})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, 120) }()
	l.SetKey(121)

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
