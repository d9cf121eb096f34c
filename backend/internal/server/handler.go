package server

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/spf13/cast"

	"github.com/soar/padoverlay/backend/internal/gamectx"
	"github.com/soar/padoverlay/backend/internal/hub"
	"github.com/soar/padoverlay/backend/internal/visibility"
)

const maxBody = 64 << 10

// Settings is the setting store as seen by the HTTP API.
type Settings interface {
	Get(name string) (any, error)
	Set(name string, value any) error
	Run(cmd string) (string, error)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func result(w http.ResponseWriter, ok bool, msg string) {
	status := http.StatusOK
	if !ok {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, hub.EncodeResult(ok, msg))
}

// Contexts is the game-context store as seen by the HTTP API.
type Contexts interface {
	hub.ContextSink
	Snapshot() visibility.Context
}

// handleContext accepts a game-context report (POST), the HTTP twin of the
// WebSocket "context" message, or returns the context the overlay
// currently sees (GET).
func handleContext(contexts Contexts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			var e jx.Encoder
			gamectx.Encode(&e, contexts.Snapshot())
			writeJSON(w, http.StatusOK, e.Bytes())
			return
		}

		body, ok := readBody(w, r)
		if !ok {
			return
		}
		ctx, err := gamectx.Decode(jx.DecodeBytes(body))
		if err != nil {
			result(w, false, err.Error())
			return
		}
		contexts.Set(ctx)
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleSettings reads (GET ?name=) or changes (POST {"name","value"}) a
// setting.
func handleSettings(s Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			name := r.URL.Query().Get("name")
			v, err := s.Get(name)
			if err != nil {
				result(w, false, err.Error())
				return
			}
			var e jx.Encoder
			e.ObjStart()
			e.FieldStart("name")
			e.Str(name)
			e.FieldStart("value")
			encodeValue(&e, v)
			e.ObjEnd()
			writeJSON(w, http.StatusOK, e.Bytes())
			return
		}

		body, ok := readBody(w, r)
		if !ok {
			return
		}
		m, err := hub.DecodeAs(hub.TypeSet, body)
		if err != nil {
			result(w, false, err.Error())
			return
		}
		if err := s.Set(m.Name, m.Value); err != nil {
			result(w, false, err.Error())
			return
		}
		result(w, true, m.Name)
	}
}

func encodeValue(e *jx.Encoder, v any) {
	switch v := v.(type) {
	case bool:
		e.Bool(v)
	case int, int32, int64, float32, float64:
		e.Float64(cast.ToFloat64(v))
	default:
		e.Str(cast.ToString(v))
	}
}

// handleCommand runs a command: POST {"name":"toggle"}.
func handleCommand(s Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		m, err := hub.DecodeAs(hub.TypeCommand, body)
		if err != nil {
			result(w, false, err.Error())
			return
		}
		out, err := s.Run(m.Name)
		if err != nil {
			result(w, false, err.Error())
			return
		}
		result(w, true, out)
	}
}
