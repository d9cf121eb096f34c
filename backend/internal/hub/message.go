package hub

import (
	"fmt"
	"time"

	"github.com/go-faster/jx"

	"github.com/soar/padoverlay/backend/internal/gamectx"
	"github.com/soar/padoverlay/backend/internal/overlay"
	"github.com/soar/padoverlay/backend/internal/visibility"
)

// Server -> client message types.
const (
	TypeFrame  = "frame"  // a render plan; "full" marks periodic resyncs
	TypeResult = "result" // reply to a client "set" or "command"
)

// Client -> server message types.
const (
	TypeContext = "context"
	TypeSet     = "set"
	TypeCommand = "command"
)

func encodePlan(e *jx.Encoder, p overlay.RenderPlan) {
	e.ObjStart()
	e.FieldStart("visible")
	e.Bool(p.Visible)
	if p.Reason != "" {
		e.FieldStart("reason")
		e.Str(p.Reason)
	}
	if p.Visible {
		e.FieldStart("skin")
		e.Str(p.Skin)
		e.FieldStart("scale")
		e.Float64(p.Scale)
		e.FieldStart("sprites")
		e.ArrStart()
		for _, s := range p.Sprites {
			e.ObjStart()
			e.FieldStart("key")
			e.Str(s.Key)
			e.FieldStart("image")
			e.Str(s.Image)
			e.FieldStart("x")
			e.Float64(s.X)
			e.FieldStart("y")
			e.Float64(s.Y)
			e.ObjEnd()
		}
		e.ArrEnd()
	}
	e.ObjEnd()
}

// EncodeFrame builds a "frame" message.
func EncodeFrame(seq int64, full bool, p overlay.RenderPlan) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("type")
	e.Str(TypeFrame)
	e.FieldStart("seq")
	e.Int64(seq)
	e.FieldStart("timestamp")
	e.Int64(time.Now().UnixMilli())
	if full {
		e.FieldStart("full")
		e.Bool(true)
	}
	e.FieldStart("plan")
	encodePlan(&e, p)
	e.ObjEnd()
	return e.Bytes()
}

// EncodeResult builds a "result" message.
func EncodeResult(ok bool, message string) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("type")
	e.Str(TypeResult)
	e.FieldStart("ok")
	e.Bool(ok)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	return e.Bytes()
}

// ClientMessage is a decoded client request.
type ClientMessage struct {
	Type    string
	Context visibility.Context // TypeContext
	Name    string             // setting (TypeSet) or command (TypeCommand)
	Value   any                // TypeSet: float64, string or bool
}

func decodeValue(d *jx.Decoder) (any, error) {
	switch d.Next() {
	case jx.Number:
		return d.Float64()
	case jx.String:
		return d.Str()
	case jx.Bool:
		return d.Bool()
	}
	return nil, fmt.Errorf("value must be a number, string or bool, got %s", d.Next())
}

// DecodeClientMessage parses a message sent by a client.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	m, err := decodeFields(data)
	if err != nil {
		return ClientMessage{}, err
	}
	return validate(m)
}

// DecodeAs parses a message body whose type is implied by where it was
// sent, such as an HTTP endpoint. A "type" field in the body is ignored.
func DecodeAs(typ string, data []byte) (ClientMessage, error) {
	m, err := decodeFields(data)
	if err != nil {
		return ClientMessage{}, err
	}
	m.Type = typ
	return validate(m)
}

func decodeFields(data []byte) (ClientMessage, error) {
	var m ClientMessage
	err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "type":
			m.Type, err = d.Str()
		case "context":
			m.Context, err = gamectx.Decode(d)
		case "name":
			m.Name, err = d.Str()
		case "value":
			m.Value, err = decodeValue(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		return nil
	})
	return m, err
}

func validate(m ClientMessage) (ClientMessage, error) {
	switch m.Type {
	case TypeContext:
	case TypeSet:
		if m.Name == "" || m.Value == nil {
			return ClientMessage{}, fmt.Errorf("set: name and value required")
		}
	case TypeCommand:
		if m.Name == "" {
			return ClientMessage{}, fmt.Errorf("command: name required")
		}
	default:
		return ClientMessage{}, fmt.Errorf("unknown message type %q", m.Type)
	}
	return m, nil
}
