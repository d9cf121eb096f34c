package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"

	"github.com/soar/padoverlay/backend/internal/overlay"
	"github.com/soar/padoverlay/backend/internal/visibility"
)

func TestDecodeClientMessage(t *testing.T) {
	tests := []struct {
		in      string
		want    ClientMessage
		wantErr bool
	}{
		{
			in:   `{"type":"context","context":{"online":true,"map":"Workshop_X"}}`,
			want: ClientMessage{Type: TypeContext, Context: visibility.Context{Online: true, MapName: "Workshop_X"}},
		},
		{
			in:   `{"type":"set","name":"x","value":120.5}`,
			want: ClientMessage{Type: TypeSet, Name: "x", Value: 120.5},
		},
		{
			in:   `{"type":"set","name":"skin","value":"ps4"}`,
			want: ClientMessage{Type: TypeSet, Name: "skin", Value: "ps4"},
		},
		{
			in:   `{"type":"set","name":"enabled","value":false,"junk":{}}`,
			want: ClientMessage{Type: TypeSet, Name: "enabled", Value: false},
		},
		{
			in:   `{"type":"command","name":"toggle"}`,
			want: ClientMessage{Type: TypeCommand, Name: "toggle"},
		},
		{in: `{"type":"set","name":"x"}`, wantErr: true},
		{in: `{"type":"set","name":"x","value":[1]}`, wantErr: true},
		{in: `{"type":"command"}`, wantErr: true},
		{in: `{"type":"dance"}`, wantErr: true},
		{in: `not json`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DecodeClientMessage([]byte(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("decoded %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type frameMsg struct {
	Type    string
	Seq     int64
	Full    bool
	Visible bool
	Reason  string
	Sprites []overlay.Sprite
}

func decodeFrame(t *testing.T, data []byte) frameMsg {
	t.Helper()
	var m frameMsg
	err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "type":
			v, err := d.Str()
			m.Type = v
			return err
		case "seq":
			v, err := d.Int64()
			m.Seq = v
			return err
		case "full":
			v, err := d.Bool()
			m.Full = v
			return err
		case "plan":
			return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
				switch string(key) {
				case "visible":
					v, err := d.Bool()
					m.Visible = v
					return err
				case "reason":
					v, err := d.Str()
					m.Reason = v
					return err
				case "sprites":
					return d.Arr(func(d *jx.Decoder) error {
						var s overlay.Sprite
						err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
							var err error
							switch string(key) {
							case "key":
								s.Key, err = d.Str()
							case "image":
								s.Image, err = d.Str()
							case "x":
								s.X, err = d.Float64()
							case "y":
								s.Y, err = d.Float64()
							default:
								err = d.Skip()
							}
							return err
						})
						m.Sprites = append(m.Sprites, s)
						return err
					})
				}
				return d.Skip()
			})
		}
		return d.Skip()
	})
	if err != nil {
		t.Fatalf("decode frame %s: %v", data, err)
	}
	return m
}

func TestEncodeFrame(t *testing.T) {
	plan := overlay.RenderPlan{
		Visible: true,
		Skin:    "xbox",
		Scale:   1,
		Sprites: []overlay.Sprite{
			{Key: "BASE", Image: "/skins/xbox/Xbox_Base.png", X: 20, Y: 980},
			{Key: "A", Image: "/skins/xbox/A_Button.png", X: 22.5, Y: 981},
		},
	}
	got := decodeFrame(t, EncodeFrame(7, true, plan))
	want := frameMsg{Type: TypeFrame, Seq: 7, Full: true, Visible: true, Sprites: plan.Sprites}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	got = decodeFrame(t, EncodeFrame(8, false, overlay.RenderPlan{Reason: "paused"}))
	want = frameMsg{Type: TypeFrame, Seq: 8, Reason: "paused"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("hidden mismatch (-want +got):\n%s", diff)
	}
}

type fakeContexts struct{ got []visibility.Context }

func (f *fakeContexts) Set(ctx visibility.Context) { f.got = append(f.got, ctx) }

type fakeControl struct {
	set map[string]any
}

func (f *fakeControl) Set(name string, v any) error {
	if name == "bogus" {
		return errors.New("unknown setting: bogus")
	}
	f.set[name] = v
	return nil
}

func (f *fakeControl) Run(cmd string) (string, error) {
	if cmd != "pos" {
		return "", errors.New("unknown command")
	}
	return "x=20 y=980 scale=1", nil
}

func TestHandle(t *testing.T) {
	ctxs := &fakeContexts{}
	ctl := &fakeControl{set: map[string]any{}}
	h := NewHub(ctxs, ctl)

	if reply := h.handle(ClientMessage{Type: TypeContext, Context: visibility.Context{Paused: true}}); reply != nil {
		t.Errorf("context reply = %s", reply)
	}
	if len(ctxs.got) != 1 || !ctxs.got[0].Paused {
		t.Errorf("contexts = %+v", ctxs.got)
	}

	want := string(EncodeResult(true, "x"))
	if got := string(h.handle(ClientMessage{Type: TypeSet, Name: "x", Value: 3.0})); got != want {
		t.Errorf("set reply = %s, want %s", got, want)
	}
	if ctl.set["x"] != 3.0 {
		t.Errorf("set = %v", ctl.set)
	}

	want = string(EncodeResult(false, "unknown setting: bogus"))
	if got := string(h.handle(ClientMessage{Type: TypeSet, Name: "bogus", Value: 1.0})); got != want {
		t.Errorf("bad set reply = %s, want %s", got, want)
	}

	want = string(EncodeResult(true, "x=20 y=980 scale=1"))
	if got := string(h.handle(ClientMessage{Type: TypeCommand, Name: "pos"})); got != want {
		t.Errorf("command reply = %s, want %s", got, want)
	}
}

type recorder struct {
	mu   sync.Mutex
	msgs [][]byte
	ch   chan struct{}
}

func (r *recorder) Broadcast(msg []byte) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func TestBroadcasterSkipsUnchangedPlans(t *testing.T) {
	rec := &recorder{ch: make(chan struct{}, 16)}
	plans := make(chan overlay.RenderPlan)
	b := NewBroadcaster(rec, plans)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- b.Run(ctx) }()

	shown := overlay.RenderPlan{Visible: true, Skin: "xbox", Scale: 1, Sprites: []overlay.Sprite{{Key: "BASE"}}}
	plans <- shown
	plans <- shown
	plans <- overlay.RenderPlan{Reason: "paused"}
	plans <- overlay.RenderPlan{Reason: "paused"}

	for i := 0; i < 2; i++ {
		select {
		case <-rec.ch:
		case <-time.After(time.Second):
			t.Fatal("broadcast not received")
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.msgs) != 2 {
		t.Fatalf("got %d broadcasts, want 2", len(rec.msgs))
	}
	first := decodeFrame(t, rec.msgs[0])
	second := decodeFrame(t, rec.msgs[1])
	if !first.Visible || second.Visible || second.Reason != "paused" || second.Seq != first.Seq+1 {
		t.Errorf("frames = %+v, %+v", first, second)
	}
}

func TestBroadcasterFullSyncCountsEveryFrame(t *testing.T) {
	rec := &recorder{ch: make(chan struct{}, 16)}
	plans := make(chan overlay.RenderPlan)
	b := NewBroadcaster(rec, plans)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- b.Run(ctx) }()

	shown := overlay.RenderPlan{Visible: true, Skin: "xbox", Scale: 1, Sprites: []overlay.Sprite{{Key: "BASE"}}}
	for i := 0; i < frameCountSync; i++ {
		plans <- shown
	}
	for i := 0; i < 2; i++ {
		select {
		case <-rec.ch:
		case <-time.After(time.Second):
			t.Fatal("broadcast not received")
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.msgs) != 2 {
		t.Fatalf("got %d broadcasts, want 2", len(rec.msgs))
	}
	if first := decodeFrame(t, rec.msgs[0]); first.Full {
		t.Errorf("first frame marked full: %+v", first)
	}
	if last := decodeFrame(t, rec.msgs[1]); !last.Full || !last.Visible {
		t.Errorf("frame %d = %+v, want a full resync", frameCountSync, last)
	}
}
