// Package frame runs the overlay once per frame: read the controller,
// take the settings and context snapshots, update the overlay and hand the
// plan to the broadcaster.
package frame

import (
	"context"
	"runtime"
	"time"

	"github.com/soar/padoverlay/backend/internal/config"
	"github.com/soar/padoverlay/backend/internal/gamepad"
	"github.com/soar/padoverlay/backend/internal/logging"
	"github.com/soar/padoverlay/backend/internal/overlay"
	"github.com/soar/padoverlay/backend/internal/posfile"
	"github.com/soar/padoverlay/backend/internal/skin"
	"github.com/soar/padoverlay/backend/internal/visibility"
)

var log = logging.For("frame")

const (
	minFrameRate = 10
	maxFrameRate = 240
)

// Source provides controller samples. Implemented by sdlreader.Reader.
type Source interface {
	Open() error
	Close()
	ProcessEvents()
	Sample(pad int) (gamepad.RawSample, bool)
}

// SettingsSource provides per-frame settings.
type SettingsSource interface {
	Snapshot() config.Settings
}

// ContextSource provides the game context.
type ContextSource interface {
	Snapshot() visibility.Context
	SetTimeout(time.Duration)
}

// Loop owns the overlay state and the controller thread.
type Loop struct {
	source   Source
	settings SettingsSource
	contexts ContextSource
	skins    *skin.Cache
	autosave *posfile.AutoSaver
	overlay  *overlay.Overlay
	plans    chan overlay.RenderPlan
	opened   func()
}

func New(source Source, settings SettingsSource, contexts ContextSource, skins *skin.Cache, autosave *posfile.AutoSaver) *Loop {
	return &Loop{
		source:   source,
		settings: settings,
		contexts: contexts,
		skins:    skins,
		autosave: autosave,
		overlay:  overlay.New(),
		plans:    make(chan overlay.RenderPlan, 8),
	}
}

// OnOpen sets a function to run right after the source opened, on the
// loop's thread.
func (l *Loop) OnOpen(fn func()) {
	l.opened = fn
}

// Plans is where each frame's plan is published. A slow consumer loses
// plans instead of stalling the loop.
func (l *Loop) Plans() <-chan overlay.RenderPlan {
	return l.plans
}

func interval(rate int) time.Duration {
	if rate < minFrameRate {
		rate = minFrameRate
	}
	if rate > maxFrameRate {
		rate = maxFrameRate
	}
	return time.Second / time.Duration(rate)
}

// Run opens the controller source on a locked OS thread and ticks until
// ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := l.source.Open(); err != nil {
		return err
	}
	defer l.source.Close()
	if l.opened != nil {
		l.opened()
	}

	rate := l.settings.Snapshot().FrameRate
	ticker := time.NewTicker(interval(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		st := l.Step()
		if st.FrameRate != rate {
			rate = st.FrameRate
			ticker.Reset(interval(rate))
			log.Infof("frame rate set to %d", rate)
		}
	}
}

// Step runs a single frame and returns the settings it used.
func (l *Loop) Step() config.Settings {
	st := l.settings.Snapshot()
	l.contexts.SetTimeout(st.ContextTimeout)

	l.source.ProcessEvents()
	sample, ok := l.source.Sample(st.Pad)

	plan := l.overlay.Update(overlay.FrameInput{
		Sample:    sample,
		Connected: ok,
		Context:   l.contexts.Snapshot(),
		Settings:  st,
		Skin:      l.skins.Get(st.Skin),
	})

	if st.Autosave && l.autosave != nil {
		l.autosave.Observe(posfile.Position{X: st.X, Y: st.Y, Scale: st.Scale})
	}

	select {
	case l.plans <- plan:
	default:
	}
	return st
}
