package coloring

import "fmt"

// colorNames maps the first color indices to human-readable names.
// Used by the CLI and API so results stay readable without a color display.
var colorNames = []string{
	"RED",
	"BLUE",
	"GREEN",
	"ORANGE",
	"PURPLE",
	"CYAN",
	"AMBER",
	"BROWN",
	"BLUE GREY",
	"PINK",
}

// Name returns the display name for a color index.
// Indices beyond the named palette get a synthesized "COLOR_n" name.
func Name(color int) string {
	if color >= 0 && color < len(colorNames) {
		return colorNames[color]
	}
	return fmt.Sprintf("COLOR_%d", color)
}

// Names returns the display names for every position of an assignment.
func Names(a Assignment) []string {
	out := make([]string, len(a))
	for i, c := range a {
		out[i] = Name(c)
	}
	return out
}
