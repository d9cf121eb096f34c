// Package skin resolves the image files that make up an overlay skin.
//
// A skin lives in <data>/skins/<name>/ and consists of a base image plus
// one image per layer. File names follow the built-in table below and can
// be overridden per skin with a skin.toml manifest:
//
//	base = "Custom_Base.png"
//
//	[layers]
//	A = "Green_A.png"
package skin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/soar/padoverlay/backend/internal/logging"
)

var log = logging.For("skin")

const (
	Default      = "xbox"
	manifestName = "skin.toml"
)

// Layer keys in draw order.
var Keys = []string{
	"A", "B", "X", "Y",
	"DU", "DD", "DL", "DR",
	"LB", "RB",
	"LT", "RT",
	"L3", "R3",
}

var layerFiles = map[string]string{
	"A":  "A_Button.png",
	"B":  "B_Button.png",
	"X":  "X_Button.png",
	"Y":  "Y_Button.png",
	"DU": "Dpad_Up.png",
	"DD": "Dpad_Down.png",
	"DL": "Dpad_Left.png",
	"DR": "Dpad_Right.png",
	"LB": "Left_Bumper.png",
	"RB": "Right_Bumper.png",
	"LT": "Left_Trigger.png",
	"RT": "Right_Trigger.png",
	"L3": "L3.png",
	"R3": "R3.png",
}

var baseFiles = map[string]string{
	"xbox": "Xbox_Base.png",
	"ps4":  "PS4_Base.png",
	"ps5":  "PS5_Base.png",
}

// NormalizeName lower-cases a skin name, mapping empty to the default.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Default
	}
	return name
}

// Dir returns the folder holding the named skin.
func Dir(dataDir, name string) string {
	return filepath.Join(dataDir, "skins", name)
}

type manifest struct {
	Base   string            `toml:"base"`
	Layers map[string]string `toml:"layers"`
}

// Skin is a resolved skin. Only images that exist on disk are listed.
type Skin struct {
	Name   string
	Base   string            // URL path of the base image, empty if missing
	Layers map[string]string // layer key -> URL path
}

// Ready reports whether the skin can be drawn at all.
func (s *Skin) Ready() bool {
	return s != nil && s.Base != ""
}

// Load resolves a skin. Missing images are logged and left out; a broken
// manifest is an error.
func Load(dataDir, name string) (*Skin, error) {
	name = NormalizeName(name)
	dir := Dir(dataDir, name)

	base, ok := baseFiles[name]
	if !ok {
		base = baseFiles[Default]
	}
	files := make(map[string]string, len(layerFiles))
	for k, f := range layerFiles {
		files[k] = f
	}

	var m manifest
	if _, err := toml.DecodeFile(filepath.Join(dir, manifestName), &m); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("skin %s: %w", name, err)
		}
	} else {
		if m.Base != "" {
			base = m.Base
		}
		for k, f := range m.Layers {
			if _, known := layerFiles[k]; !known {
				log.Warnf("skin %s: unknown layer %q in manifest", name, k)
				continue
			}
			files[k] = f
		}
	}

	s := &Skin{Name: name, Layers: make(map[string]string, len(files))}
	if exists(dir, base) {
		s.Base = url(name, base)
	} else {
		log.Warnf("missing image: %s", filepath.Join(dir, base))
	}
	for _, k := range Keys {
		if exists(dir, files[k]) {
			s.Layers[k] = url(name, files[k])
		} else {
			log.Warnf("missing image: %s", filepath.Join(dir, files[k]))
		}
	}
	return s, nil
}

func exists(dir, file string) bool {
	st, err := os.Stat(filepath.Join(dir, file))
	return err == nil && !st.IsDir()
}

func url(name, file string) string {
	return path.Join("/skins", name, file)
}
