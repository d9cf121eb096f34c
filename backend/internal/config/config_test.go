package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestSnapshotDefaults(t *testing.T) {
	st := New().Snapshot()

	if !st.Enabled || !st.Visibility.RequireAllowedContext || !st.Visibility.HideControllerMenu {
		t.Errorf("unexpected gate defaults: %+v", st.Visibility)
	}
	if st.Visibility.HideWhenCursorVisible {
		t.Error("cursor rule should default off")
	}
	if st.X != DefaultX || st.Y != DefaultY || st.Scale != DefaultScale {
		t.Errorf("position = %v,%v scale %v", st.X, st.Y, st.Scale)
	}
	if st.Shaper.Deadzone != 0.12 || st.Shaper.Smoothing != 0.9 || st.Shaper.StickRange != 18 || st.Shaper.TriggerThreshold != 0.1 {
		t.Errorf("shaper defaults = %+v", st.Shaper)
	}
	if st.Pad != -1 || st.HotkeyVK != 120 || st.Skin != "xbox" {
		t.Errorf("pad=%d hotkey=%d skin=%q", st.Pad, st.HotkeyVK, st.Skin)
	}
	if len(st.Offsets) != 14 {
		t.Errorf("got %d layer offsets, want 14", len(st.Offsets))
	}
	if st.ContextTimeout != 0 {
		t.Errorf("context timeout = %v", st.ContextTimeout)
	}
}

func TestSetAndMalformedValues(t *testing.T) {
	s := New()
	var changed []string
	s.OnChange(func(key string) { changed = append(changed, key) })

	if err := s.Set("Deadzone", "0.2"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeyStickRange, "wide"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeySkin, "PS5"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(OffsetKey("LT", "x"), 12); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeyContextTimeout, "3s"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("no_such_thing", 1); !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("Set unknown = %v", err)
	}

	st := s.Snapshot()
	if st.Shaper.Deadzone != 0.2 {
		t.Errorf("deadzone = %v", st.Shaper.Deadzone)
	}
	if st.Shaper.StickRange != 18 {
		t.Errorf("malformed stick range = %v, want default 18", st.Shaper.StickRange)
	}
	if st.Skin != "ps5" {
		t.Errorf("skin = %q", st.Skin)
	}
	if st.Offsets["LT"] != (Point{12, 0}) {
		t.Errorf("LT offset = %+v", st.Offsets["LT"])
	}
	if st.ContextTimeout != 3*time.Second {
		t.Errorf("context timeout = %v", st.ContextTimeout)
	}
	if len(changed) != 5 || changed[0] != KeyDeadzone {
		t.Errorf("change notifications = %v", changed)
	}
}

func TestCommands(t *testing.T) {
	s := New()

	if _, err := s.Run(CmdToggle); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Enabled {
		t.Error("toggle did not disable")
	}
	s.Run(CmdToggle)
	if !s.Snapshot().Enabled {
		t.Error("second toggle did not enable")
	}

	s.Set(KeyX, 300)
	s.Set(KeyScale, 2.5)
	out, err := s.Run(CmdPos)
	if err != nil {
		t.Fatal(err)
	}
	if out != "x=300 y=980 scale=2.5" {
		t.Errorf("pos = %q", out)
	}

	s.Run(CmdResetPos)
	st := s.Snapshot()
	if st.X != DefaultX || st.Y != DefaultY || st.Scale != DefaultScale {
		t.Errorf("after reset: %v,%v scale %v", st.X, st.Y, st.Scale)
	}

	if _, err := s.Run("dance"); err == nil {
		t.Error("unknown command accepted")
	}
}

func TestReadFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "padoverlay.toml")
	content := "x = 42\nskin = \"ps4\"\nhide_in_menus = false\n\n[offsets.a]\ny = -3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New()
	fs := Flags()
	if err := fs.Parse([]string{"--skin", "ps5", "--pad", "2"}); err != nil {
		t.Fatal(err)
	}
	if err := s.BindFlags(fs); err != nil {
		t.Fatal(err)
	}
	if err := s.ReadFile(path); err != nil {
		t.Fatal(err)
	}

	st := s.Snapshot()
	if st.X != 42 {
		t.Errorf("x = %v", st.X)
	}
	if st.Visibility.HideInMenus {
		t.Error("hide_in_menus not read from file")
	}
	if st.Offsets["A"] != (Point{0, -3}) {
		t.Errorf("A offset = %+v", st.Offsets["A"])
	}
	if st.Skin != "ps5" || st.Pad != 2 {
		t.Errorf("flags did not win: skin=%q pad=%d", st.Skin, st.Pad)
	}
}

func TestReadFileMissing(t *testing.T) {
	s := New()
	s.Set(KeyDataDir, t.TempDir())
	if err := s.ReadFile(""); err != nil {
		t.Errorf("missing default config should be fine: %v", err)
	}
	if err := s.ReadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("explicit missing config accepted")
	}
}

func writeConfig(t *testing.T, path string, x int) {
	t.Helper()
	if err := os.WriteFile(path, []byte(fmt.Sprintf("x = %d\n", x)), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatchReloadsWhileReading(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padoverlay.toml")
	writeConfig(t, path, 1)

	s := New()
	if err := s.ReadFile(path); err != nil {
		t.Fatal(err)
	}
	reloads := make(chan struct{}, 1)
	s.OnChange(func(key string) {
		if key == "" {
			select {
			case reloads <- struct{}{}:
			default:
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	// The frame loop takes a snapshot every frame while the file changes.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				s.Snapshot()
			}
		}
	}()

	for i := 2; i <= 50; i++ {
		writeConfig(t, path, i)
		time.Sleep(2 * time.Millisecond)
	}

	// Rewrite the final value until it shows up; early writes may land
	// before the watcher is in place.
	deadline := time.Now().Add(5 * time.Second)
	for s.Snapshot().X != 100 {
		if time.Now().After(deadline) {
			t.Fatalf("x = %v after reloads, want 100", s.Snapshot().X)
		}
		writeConfig(t, path, 100)
		time.Sleep(50 * time.Millisecond)
	}
	select {
	case <-reloads:
	default:
		t.Error("reload did not notify listeners")
	}

	close(stop)
	wg.Wait()
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestWatchWithoutFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := New().Watch(ctx); err != nil {
		t.Errorf("Watch without a config file = %v", err)
	}
}

func TestConcurrentToggles(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Run(CmdToggle); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if !s.Snapshot().Enabled {
		t.Error("an even number of toggles left the overlay disabled")
	}
}
