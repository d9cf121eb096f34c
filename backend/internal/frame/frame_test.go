package frame

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soar/padoverlay/backend/internal/config"
	"github.com/soar/padoverlay/backend/internal/gamectx"
	"github.com/soar/padoverlay/backend/internal/gamepad"
	"github.com/soar/padoverlay/backend/internal/overlay"
	"github.com/soar/padoverlay/backend/internal/skin"
	"github.com/soar/padoverlay/backend/internal/visibility"
)

type fakeSource struct {
	sample    gamepad.RawSample
	connected bool
	pads      []int
	opened    bool
	closed    bool
}

func (f *fakeSource) Open() error    { f.opened = true; return nil }
func (f *fakeSource) Close()         { f.closed = true }
func (f *fakeSource) ProcessEvents() {}
func (f *fakeSource) Sample(pad int) (gamepad.RawSample, bool) {
	f.pads = append(f.pads, pad)
	return f.sample, f.connected
}

func skinDir(t *testing.T) string {
	t.Helper()
	data := t.TempDir()
	dir := skin.Dir(data, "xbox")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"Xbox_Base.png", "A_Button.png"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return data
}

func TestStep(t *testing.T) {
	data := skinDir(t)
	src := &fakeSource{
		sample:    gamepad.RawSample{Buttons: gamepad.ButtonState{A: true}},
		connected: true,
	}
	settings := config.New()
	settings.Set(config.KeyPad, 2)
	contexts := gamectx.NewStore()
	contexts.Set(visibility.Context{Online: true})

	l := New(src, settings, contexts, skin.NewCache(data), nil)
	l.Step()

	var plan overlay.RenderPlan
	select {
	case plan = <-l.Plans():
	default:
		t.Fatal("no plan published")
	}
	if !plan.Visible || len(plan.Sprites) != 2 || plan.Sprites[1].Key != "A" {
		t.Errorf("plan = %+v", plan)
	}
	if len(src.pads) != 1 || src.pads[0] != 2 {
		t.Errorf("sampled pads = %v", src.pads)
	}

	contexts.Set(visibility.Context{})
	l.Step()
	if plan := <-l.Plans(); plan.Visible || plan.Reason != string(visibility.NotAllowed) {
		t.Errorf("plan without context = %+v", plan)
	}
}

func TestStepDropsWhenFull(t *testing.T) {
	l := New(&fakeSource{}, config.New(), gamectx.NewStore(), skin.NewCache(t.TempDir()), nil)
	for i := 0; i < cap(l.plans)+5; i++ {
		l.Step()
	}
	if len(l.plans) != cap(l.plans) {
		t.Errorf("plans buffered = %d", len(l.plans))
	}
}

func TestRunOpensAndCloses(t *testing.T) {
	src := &fakeSource{}
	l := New(src, config.New(), gamectx.NewStore(), skin.NewCache(t.TempDir()), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := l.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !src.opened || !src.closed {
		t.Errorf("opened=%v closed=%v", src.opened, src.closed)
	}
	if len(src.pads) == 0 {
		t.Error("no frames ran")
	}
}

func TestInterval(t *testing.T) {
	for rate, want := range map[int]time.Duration{
		60:   time.Second / 60,
		0:    time.Second / minFrameRate,
		1000: time.Second / maxFrameRate,
	} {
		if got := interval(rate); got != want {
			t.Errorf("interval(%d) = %v, want %v", rate, got, want)
		}
	}
}
