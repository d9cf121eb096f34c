// Package posfile stores the overlay placement in a small key=value file:
//
//	x=20
//	y=980
//	scale=1
package posfile

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cast"
	"github.com/subosito/gotenv"

	"github.com/soar/padoverlay/backend/internal/logging"
)

const FileName = "xco_saved_pos.ini"

var log = logging.For("posfile")

type Position struct {
	X, Y, Scale float64
}

// Path returns the position file location inside the data dir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Save writes p to path, creating the parent folder.
func Save(path string, p Position) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	var buf bytes.Buffer
	for _, kv := range []struct {
		k string
		v float64
	}{{"x", p.X}, {"y", p.Y}, {"scale", p.Scale}} {
		buf.WriteString(kv.k)
		buf.WriteByte('=')
		buf.WriteString(strconv.FormatFloat(kv.v, 'g', -1, 64))
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

// Load reads the position file on top of def. Lines without '=', unknown
// keys and values that are not numbers are ignored. It reports false when
// the file cannot be read.
func Load(path string, def Position) (Position, bool) {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("load position: %v", err)
		}
		return def, false
	}
	defer f.Close()

	p := def
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		// Line by line so one bad line does not end the parse.
		env, err := gotenv.Unmarshal(sc.Text())
		if err != nil {
			continue
		}
		for k, raw := range env {
			v, err := cast.ToFloat64E(raw)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			switch k {
			case "x":
				p.X = v
			case "y":
				p.Y = v
			case "scale":
				p.Scale = v
			}
		}
	}
	if err := sc.Err(); err != nil {
		log.Warnf("load position: %v", err)
		return def, false
	}
	return p, true
}

// Change thresholds and write interval for AutoSaver.
const (
	moveEpsilon  = 0.01
	scaleEpsilon = 0.0005
	minInterval  = 250 * time.Millisecond
)

// AutoSaver writes the position whenever it has moved, at most once per
// 250ms. Observe is meant to be called every frame from one goroutine.
type AutoSaver struct {
	path      string
	last      Position
	lastWrite time.Time
	now       func() time.Time
	save      func(string, Position) error
}

func NewAutoSaver(path string) *AutoSaver {
	return &AutoSaver{
		path: path,
		// Far away from anything real so the first Observe counts as a move.
		last:      Position{X: -99999, Y: -99999, Scale: -99999},
		lastWrite: time.Now(),
		now:       time.Now,
		save:      Save,
	}
}

func changed(a, b Position) bool {
	return math.Abs(a.X-b.X) > moveEpsilon ||
		math.Abs(a.Y-b.Y) > moveEpsilon ||
		math.Abs(a.Scale-b.Scale) > scaleEpsilon
}

// Observe records the current position and saves it if due. It reports
// whether a write happened.
func (a *AutoSaver) Observe(p Position) bool {
	if !changed(a.last, p) {
		return false
	}
	now := a.now()
	if now.Sub(a.lastWrite) <= minInterval {
		return false
	}
	if err := a.save(a.path, p); err != nil {
		log.Warnf("autosave: %v", err)
		return false
	}
	a.lastWrite = now
	a.last = p
	return true
}
