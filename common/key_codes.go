package common

// Key codes delivered by the window's key callbacks.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	KeyG = 71 // G key (ASCII)
	KeyP = 80 // P key (ASCII)
	KeyR = 82 // R key (ASCII)
	KeyS = 83 // S key (ASCII)

	KeyLeftBracket  = 91 // [ key (ASCII)
	KeyRightBracket = 93 // ] key (ASCII)

	KeyEsc = 256 // Escape key (GLFW)
)

// PaletteKeys maps the number row to palette slots, in order.
var PaletteKeys = [...]uint32{Key1, Key2, Key3}

// PaletteSlot returns the palette index bound to key, or -1.
func PaletteSlot(key uint32) int {
	for i, k := range PaletteKeys {
		if k == key {
			return i
		}
	}
	return -1
}
