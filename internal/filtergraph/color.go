package filtergraph

import "strings"

// EngineColor converts a CSS-style hex colour into the engine's 0xRRGGBB form.
// Three-digit forms are expanded by doubling each digit. Unrecognised input is
// passed through with a 0x prefix; an empty colour becomes black.
func EngineColor(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "0x000000"
	}
	if strings.HasPrefix(trimmed, "0x") {
		return trimmed
	}
	hex := strings.TrimPrefix(trimmed, "#")
	if !isHex(hex) {
		return "0x" + hex
	}
	switch len(hex) {
	case 3:
		var b strings.Builder
		b.Grow(8)
		b.WriteString("0x")
		for i := 0; i < 3; i++ {
			b.WriteByte(hex[i])
			b.WriteByte(hex[i])
		}
		return b.String()
	default:
		return "0x" + hex
	}
}

func isHex(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
