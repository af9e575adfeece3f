package brackets

import "strings"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// RenderContext carries the presentation state owned by the hosting page.
// It is passed into the builder explicitly instead of being read from globals.
type RenderContext struct {
	Theme        string
	SchoolColors map[string]string
}

func (rc RenderContext) theme() string {
	if rc.Theme == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

func (rc RenderContext) colorFor(school string) string {
	if len(rc.SchoolColors) == 0 || school == "" {
		return ""
	}
	if c, ok := rc.SchoolColors[school]; ok {
		return c
	}
	// Colors are often configured by hand, so fall back to a case-insensitive match.
	for name, c := range rc.SchoolColors {
		if strings.EqualFold(name, school) {
			return c
		}
	}
	return ""
}
