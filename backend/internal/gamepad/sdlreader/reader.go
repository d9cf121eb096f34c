// Package sdlreader reads controllers through SDL3. Importing it loads
// libSDL3, so only the program entry point should.
package sdlreader

import (
	"fmt"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/padoverlay/backend/internal/gamepad"
	"github.com/soar/padoverlay/backend/internal/logging"
)

var log = logging.For("gamepad")

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *gamepad.DeviceMapping
	name     string
	id       sdl.JoystickID
}

// Reader reads controllers through the SDL3 Joystick API.
//
// All methods must be called from the same OS thread, the one that called
// Open. The frame loop owns that thread.
type Reader struct {
	joysticks map[sdl.JoystickID]*joystickInfo
	slots     []sdl.JoystickID // connection order, index = pad slot
	lastPad   sdl.JoystickID
}

func NewReader() *Reader {
	return &Reader{
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
	}
}

// Open initializes the SDL joystick subsystem and opens every controller
// that is already connected.
func (r *Reader) Open() error {
	if !sdl.Init(sdl.InitJoystick) {
		return fmt.Errorf("SDL init: %s", sdl.GetError())
	}
	log.Info("SDL3 Joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}
	return nil
}

// Close releases every opened controller and shuts SDL down.
func (r *Reader) Close() {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
	r.slots = nil
	sdl.Quit()
}

// ProcessEvents drains pending SDL events, handling hot-plug.
func (r *Reader) ProcessEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)

		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)

		case sdl.EventJoystickButtonDown:
			be := event.JButton()
			log.Debugf("button down: index=%d joystick=%d", be.Button, be.Which)

		case sdl.EventJoystickButtonUp:
			be := event.JButton()
			log.Debugf("button up: index=%d joystick=%d", be.Button, be.Which)
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Warnf("failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := gamepad.GetMapping(vendorID, productID)

	r.joysticks[jsID] = &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       jsID,
	}
	r.slots = append(r.slots, jsID)

	log.WithFields(map[string]any{
		"slot":    len(r.slots) - 1,
		"mapping": mapping.Name,
		"axes":    sdl.GetNumJoystickAxes(js),
		"buttons": sdl.GetNumJoystickButtons(js),
		"hats":    sdl.GetNumJoystickHats(js),
	}).Infof("joystick connected: %s (VID=%04X PID=%04X)", name, vendorID, productID)
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	log.Infof("joystick disconnected: %s", info.name)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	for i, id := range r.slots {
		if id == instanceID {
			r.slots = append(r.slots[:i], r.slots[i+1:]...)
			break
		}
	}
}

// pick resolves a pad setting to an opened controller.
func (r *Reader) pick(pad int) (*joystickInfo, bool) {
	if pad == gamepad.AutoPad {
		for _, id := range r.slots {
			if info := r.joysticks[id]; sdl.JoystickConnected(info.joystick) {
				return info, true
			}
		}
		return nil, false
	}
	if pad < 0 || pad >= len(r.slots) {
		return nil, false
	}
	info := r.joysticks[r.slots[pad]]
	if !sdl.JoystickConnected(info.joystick) {
		return nil, false
	}
	return info, true
}

// Sample reads the controller selected by pad (gamepad.AutoPad or a 0-based slot).
// It reports false when no such controller is connected; the caller then
// treats the frame as neutral.
func (r *Reader) Sample(pad int) (gamepad.RawSample, bool) {
	info, ok := r.pick(pad)
	if !ok {
		return gamepad.Neutral(), false
	}
	if info.id != r.lastPad {
		r.lastPad = info.id
		log.Infof("active joystick: %s (ID=%d, mapping=%s)", info.name, info.id, info.mapping.Name)
	}

	js := info.joystick
	mapping := info.mapping
	var sample gamepad.RawSample

	numAxes := sdl.GetNumJoystickAxes(js)
	for _, am := range mapping.Axes {
		if am.Index >= numAxes {
			continue
		}
		raw := sdl.GetJoystickAxis(js, am.Index)
		if am.IsTrigger {
			sample.SetAxis(am.Target, gamepad.NormalizeTrigger(raw, am.RawMin, am.RawMax))
		} else {
			sample.SetAxis(am.Target, gamepad.NormalizeAxis(raw))
		}
	}

	numButtons := sdl.GetNumJoystickButtons(js)
	for _, bm := range mapping.Buttons {
		if bm.Index >= numButtons {
			continue
		}
		sample.SetButton(bm.Target, sdl.GetJoystickButton(js, bm.Index))
	}

	if mapping.HasHat && sdl.GetNumJoystickHats(js) > 0 {
		sample.SetHat(sdl.GetJoystickHat(js, 0))
	}

	return sample, true
}
