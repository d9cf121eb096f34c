package overlay

import "github.com/soar/padoverlay/backend/internal/visibility"

// Sprite is one image placed on the canvas.
type Sprite struct {
	Key   string // layer key, "BASE" for the base image
	Image string // URL path of the image
	X, Y  float64
}

// RenderPlan is everything the canvas needs to draw one frame. A hidden
// plan carries the reason and no sprites.
type RenderPlan struct {
	Visible bool
	Reason  string
	Skin    string
	Scale   float64
	Sprites []Sprite // base first, then active layers in draw order
}

// Hidden reasons besides the visibility ones.
const (
	ReasonDisabled = "disabled"
	ReasonNoSkin   = "skin"
)

func hidden(reason visibility.Reason) RenderPlan {
	return RenderPlan{Reason: string(reason)}
}

// Equal reports whether two plans would draw the same picture.
func (p RenderPlan) Equal(o RenderPlan) bool {
	if p.Visible != o.Visible || p.Reason != o.Reason || p.Skin != o.Skin ||
		p.Scale != o.Scale || len(p.Sprites) != len(o.Sprites) {
		return false
	}
	for i := range p.Sprites {
		if p.Sprites[i] != o.Sprites[i] {
			return false
		}
	}
	return true
}
