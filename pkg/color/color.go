// Package color assigns stable terminal colors to names, so the same
// assignee is always printed the same way.
package color

import (
	"hash/fnv"

	fcolor "github.com/fatih/color"
)

var palette = []fcolor.Attribute{
	fcolor.FgHiRed,
	fcolor.FgHiGreen,
	fcolor.FgHiYellow,
	fcolor.FgHiBlue,
	fcolor.FgHiMagenta,
	fcolor.FgHiCyan,
	fcolor.FgRed,
	fcolor.FgGreen,
	fcolor.FgYellow,
	fcolor.FgBlue,
	fcolor.FgMagenta,
	fcolor.FgCyan,
}

// AttributeFor returns the palette entry for key.
func AttributeFor(key string) fcolor.Attribute {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return palette[h.Sum32()%uint32(len(palette))]
}

// ForKey returns a consistent color for key. It honours fcolor.NoColor.
func ForKey(key string) *fcolor.Color {
	return fcolor.New(AttributeFor(key))
}

// Label formats key as "@key" in its color.
func Label(key string) string {
	return ForKey(key).Sprintf("@%s", key)
}
