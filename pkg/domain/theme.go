package domain

// ThemePrefix prefixes the CSS class selected by the KeyTheme entry.
const ThemePrefix = "arbor-theme-"

// ThemeClass returns the CSS class for theme, or "" for the default theme.
func ThemeClass(theme string) string {
	if theme == "" {
		return ""
	}
	return ThemePrefix + theme
}
