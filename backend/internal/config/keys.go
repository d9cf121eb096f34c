package config

import (
	"strings"

	"github.com/soar/padoverlay/backend/internal/skin"
)

// Setting names. They double as config file keys and, upper-cased with a
// PADOVERLAY_ prefix, as environment variables.
const (
	KeyEnabled               = "enabled"
	KeyRequireAllowedContext = "require_allowed_context"
	KeyAllowFreeplayWorkshop = "allow_freeplay_workshop"
	KeyHideInMenus           = "hide_in_menus"
	KeyHideControllerMenu    = "hide_controller_menu"
	KeyHideWhenCursorVisible = "hide_when_cursor_visible"
	KeyShowWhileSettingsOpen = "show_while_settings_open"

	KeyX           = "x"
	KeyY           = "y"
	KeyScale       = "scale"
	KeyLayerShiftX = "layer_shift_x"
	KeyLayerShiftY = "layer_shift_y"

	KeySticksAlways     = "sticks_always"
	KeyStickRange       = "stick_range"
	KeyDeadzone         = "deadzone"
	KeyStickSmooth      = "stick_smooth"
	KeyTriggerThreshold = "trigger_thresh"

	KeyPad      = "pad"
	KeyHotkeyVK = "hotkey_vk"
	KeySkin     = "skin"

	KeyAutosave  = "autosave"
	KeyLoadSaved = "load_saved"

	KeyAddr           = "addr"
	KeyDataDir        = "data_dir"
	KeyLogLevel       = "log_level"
	KeyFrameRate      = "frame_rate"
	KeyContextTimeout = "context_timeout"
)

// Position defaults, also used by the reset_pos command.
const (
	DefaultX     = 20.0
	DefaultY     = 980.0
	DefaultScale = 1.0
)

// OffsetKey returns the setting name of a layer's x or y offset.
func OffsetKey(layer, axis string) string {
	return "offsets." + strings.ToLower(layer) + "." + axis
}

func defaults() map[string]any {
	d := map[string]any{
		KeyEnabled:               true,
		KeyRequireAllowedContext: true,
		KeyAllowFreeplayWorkshop: true,
		KeyHideInMenus:           true,
		KeyHideControllerMenu:    true,
		KeyHideWhenCursorVisible: false,
		KeyShowWhileSettingsOpen: true,

		KeyX:           DefaultX,
		KeyY:           DefaultY,
		KeyScale:       DefaultScale,
		KeyLayerShiftX: 0.0,
		KeyLayerShiftY: 0.0,

		KeySticksAlways:     true,
		KeyStickRange:       18.0,
		KeyDeadzone:         0.12,
		KeyStickSmooth:      0.90,
		KeyTriggerThreshold: 0.10,

		KeyPad:      -1,
		KeyHotkeyVK: 120, // F9
		KeySkin:     skin.Default,

		KeyAutosave:  false,
		KeyLoadSaved: false,

		KeyAddr:           ":8080",
		KeyDataDir:        "data",
		KeyLogLevel:       "info",
		KeyFrameRate:      60,
		KeyContextTimeout: "0s",
	}
	for _, k := range skin.Keys {
		d[OffsetKey(k, "x")] = 0.0
		d[OffsetKey(k, "y")] = 0.0
	}
	return d
}
