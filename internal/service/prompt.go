package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pageza/kodawari/backend/internal/apperrors"
)

// TitleMarker prefixes the first heading of every generated recipe
const TitleMarker = "### Recipe Name:"

var titlePattern = regexp.MustCompile(`(?m)^###\s*Recipe Name:\s*(.+?)\s*$`)

// Preferences is the decoded themed form payload
type Preferences map[string]any

// Prompt is a fully built completion request
type Prompt struct {
	Theme       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	Stream      bool
}

var baseSections = []string{
	fmt.Sprintf(`Recipe name: always write it on the first line as "%s {title}".`, TitleMarker),
	"Ingredient list with concrete quantities.",
	"Detailed cooking steps that a beginner can follow with confidence.",
	"Total time until the dish is ready.",
	"Cooking tips such as cutting and heat control that help a beginner cook it well.",
}

// BuildPrompt turns a themed preference payload into a prompt. Every field
// falls back to its theme token, so the only failure is an unknown theme.
func BuildPrompt(slug string, prefs Preferences) (Prompt, error) {
	theme, ok := LookupTheme(slug)
	if !ok {
		return Prompt{}, apperrors.NewValidationError("unknown theme %q", slug)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s The theme is %q. Following the conditions below, suggest a recipe that %s would want to make.\n",
		theme.Persona, theme.Name, theme.Audience)
	for _, field := range theme.Fields {
		fmt.Fprintf(&b, "- %s: %s\n", field.Label, formatValue(prefs[field.Key], field))
	}

	b.WriteString("\nInclude the following in the recipe:\n")
	n := 1
	for _, section := range append(append([]string{}, baseSections...), theme.Extra...) {
		fmt.Fprintf(&b, "%d. %s\n", n, section)
		n++
	}

	b.WriteString("\nNotes:\n- Include every section.\n")
	for _, note := range theme.Notes {
		fmt.Fprintf(&b, "- %s\n", note)
	}

	return Prompt{
		Theme:       theme.Slug,
		System:      theme.Persona,
		User:        b.String(),
		MaxTokens:   theme.MaxTokens,
		Temperature: theme.Temperature,
		Stream:      theme.Stream,
	}, nil
}

// ExtractTitle returns the title written after TitleMarker, or "" when absent
func ExtractTitle(text string) string {
	m := titlePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func formatValue(v any, field ThemeField) string {
	var parts []string
	switch val := v.(type) {
	case []string:
		parts = val
	case []any:
		for _, item := range val {
			if s := scalar(item); s != "" {
				parts = append(parts, s)
			}
		}
	default:
		parts = []string{scalar(val)}
	}

	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return field.Fallback
	}
	return strings.Join(kept, ", ")
}

// scalar renders JSON scalars; anything else counts as absent
func scalar(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
