package vanilla

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// DefaultThemeName identifies the built-in manifest.
const DefaultThemeName = "formbuilder"

// DefaultManifest returns the palette the stylesheet is written against. The
// "dark" variant only swaps surface colours.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":   "#3b2f80",
			"surface": "#f3f3fe",
			"border":  "#c3cad8bf",
			"danger":  "#dc2626",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface": "#1f1b3a",
					"border":  "#4b4a6b",
				},
			},
		},
	}
}

// ThemeConfig resolves manifest tokens for variant into renderer config.
// Unknown variants fall back to the base tokens.
func ThemeConfig(manifest *theme.Manifest, variant string) *theme.RendererConfig {
	if manifest == nil {
		manifest = DefaultManifest()
	}
	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}

	resolved := ""
	if v, ok := manifest.Variants[variant]; ok {
		resolved = variant
		for key, value := range v.Tokens {
			tokens[key] = value
		}
	}

	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		vars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:   manifest.Name,
		Variant: resolved,
		Tokens:  tokens,
		CSSVars: vars,
	}
}

func cssVarsInline(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteByte(';')
	}
	return b.String()
}
