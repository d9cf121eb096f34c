// Package visibility decides, frame by frame, whether the overlay is shown.
//
// The decision combines the game context (online match, freeplay, workshop
// map, pause, cursor) with a controller-menu latch: START opens or closes
// the in-game menu, B closes it, and the overlay stays hidden while the
// latch is set.
package visibility

import "strings"

// Context is what the game reports about its current state.
type Context struct {
	Online        bool
	Freeplay      bool
	MapName       string
	Paused        bool
	CursorVisible bool
	SettingsOpen  bool // the player has the overlay settings menu open
}

// IsWorkshopMap reports whether the map is a Steam workshop map, which
// always carry "workshop" in their name.
func IsWorkshopMap(name string) bool {
	return strings.Contains(strings.ToLower(name), "workshop")
}

// Config holds the visibility rules.
type Config struct {
	RequireAllowedContext bool
	AllowFreeplayWorkshop bool
	HideInMenus           bool
	HideControllerMenu    bool
	HideWhenCursorVisible bool
	ShowWhileSettingsOpen bool
}

// Reason names why a frame is hidden; empty when visible.
type Reason string

const (
	Shown          Reason = ""
	NotAllowed     Reason = "context"
	Paused         Reason = "paused"
	ControllerMenu Reason = "controller_menu"
	Cursor         Reason = "cursor"
)

// Latch is the state carried between frames. The zero value is closed
// with both buttons released.
type Latch struct {
	menuLatched bool
	prevStart   bool
	prevB       bool
}

// MenuLatched reports whether the controller menu is considered open.
func (l *Latch) MenuLatched() bool { return l.menuLatched }

// Allowed reports whether the context is a mode the overlay may show in.
func Allowed(ctx Context, cfg Config) bool {
	if ctx.Online {
		return true
	}
	return cfg.AllowFreeplayWorkshop && (ctx.Freeplay || IsWorkshopMap(ctx.MapName))
}

// Evaluate advances the latch by one frame and returns whether the
// overlay is visible, with the reason when it is not.
//
// Edge memory for START and B is updated on every call, hidden frames
// included, so a press that spans a hidden stretch is not seen as a new
// press afterwards. Leaving an allowed context always closes the latch.
func (l *Latch) Evaluate(ctx Context, start, b bool, cfg Config) (bool, Reason) {
	allowed := Allowed(ctx, cfg)

	startEdge := start && !l.prevStart
	bEdge := b && !l.prevB
	l.prevStart = start
	l.prevB = b

	if cfg.HideControllerMenu {
		if startEdge {
			l.menuLatched = !l.menuLatched
		}
		if l.menuLatched && bEdge {
			l.menuLatched = false
		}
	}

	if !allowed {
		l.menuLatched = false
	}

	if cfg.RequireAllowedContext && !allowed {
		return false, NotAllowed
	}
	if cfg.HideInMenus {
		if ctx.Paused {
			return false, Paused
		}
		if l.menuLatched {
			return false, ControllerMenu
		}
		if cfg.HideWhenCursorVisible && ctx.CursorVisible &&
			!(cfg.ShowWhileSettingsOpen && ctx.SettingsOpen) {
			return false, Cursor
		}
	}
	return true, Shown
}
