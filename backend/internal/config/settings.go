package config

import (
	"fmt"
	"time"

	"github.com/soar/padoverlay/backend/internal/shaper"
	"github.com/soar/padoverlay/backend/internal/skin"
	"github.com/soar/padoverlay/backend/internal/visibility"
)

type Point struct {
	X, Y float64
}

// Settings is an immutable per-frame view of the store.
type Settings struct {
	Enabled    bool
	Visibility visibility.Config
	Shaper     shaper.Config

	X, Y         float64
	Scale        float64
	LayerShift   Point
	SticksAlways bool
	Offsets      map[string]Point // by layer key

	Pad      int
	HotkeyVK int
	Skin     string

	Autosave  bool
	LoadSaved bool

	FrameRate      int
	ContextTimeout time.Duration
}

// Snapshot reads every per-frame setting at once.
func (s *Store) Snapshot() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Settings{
		Enabled: s.bool(KeyEnabled),
		Visibility: visibility.Config{
			RequireAllowedContext: s.bool(KeyRequireAllowedContext),
			AllowFreeplayWorkshop: s.bool(KeyAllowFreeplayWorkshop),
			HideInMenus:           s.bool(KeyHideInMenus),
			HideControllerMenu:    s.bool(KeyHideControllerMenu),
			HideWhenCursorVisible: s.bool(KeyHideWhenCursorVisible),
			ShowWhileSettingsOpen: s.bool(KeyShowWhileSettingsOpen),
		},
		Shaper: shaper.Config{
			Deadzone:         s.float(KeyDeadzone),
			Smoothing:        s.float(KeyStickSmooth),
			StickRange:       s.float(KeyStickRange),
			TriggerThreshold: s.float(KeyTriggerThreshold),
		},
		X:              s.float(KeyX),
		Y:              s.float(KeyY),
		Scale:          s.float(KeyScale),
		LayerShift:     Point{s.float(KeyLayerShiftX), s.float(KeyLayerShiftY)},
		SticksAlways:   s.bool(KeySticksAlways),
		Offsets:        make(map[string]Point, len(skin.Keys)),
		Pad:            s.int(KeyPad),
		HotkeyVK:       s.int(KeyHotkeyVK),
		Skin:           skin.NormalizeName(s.string(KeySkin)),
		Autosave:       s.bool(KeyAutosave),
		LoadSaved:      s.bool(KeyLoadSaved),
		FrameRate:      s.int(KeyFrameRate),
		ContextTimeout: s.duration(KeyContextTimeout),
	}
	for _, k := range skin.Keys {
		st.Offsets[k] = Point{s.float(OffsetKey(k, "x")), s.float(OffsetKey(k, "y"))}
	}
	return st
}

// Commands understood by Run.
const (
	CmdToggle   = "toggle"
	CmdResetPos = "reset_pos"
	CmdPos      = "pos"
)

// Run executes a named command and returns a line for the log or the
// caller.
func (s *Store) Run(cmd string) (string, error) {
	switch cmd {
	case CmdToggle:
		s.mu.Lock()
		on := !s.bool(KeyEnabled)
		s.set(KeyEnabled, on)
		s.mu.Unlock()
		s.notify(KeyEnabled)
		return fmt.Sprintf("overlay enabled=%v", on), nil

	case CmdResetPos:
		s.mu.Lock()
		s.set(KeyX, DefaultX)
		s.set(KeyY, DefaultY)
		s.set(KeyScale, DefaultScale)
		s.mu.Unlock()
		for _, k := range []string{KeyX, KeyY, KeyScale} {
			s.notify(k)
		}
		return "reset position to defaults", nil

	case CmdPos:
		s.mu.Lock()
		defer s.mu.Unlock()
		return fmt.Sprintf("x=%g y=%g scale=%g", s.float(KeyX), s.float(KeyY), s.float(KeyScale)), nil
	}
	return "", fmt.Errorf("unknown command %q", cmd)
}
