package authz

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// codePattern is the category.action form mutations must satisfy. Reads are
// deliberately looser: codes already stored or referenced ad hoc are treated
// as opaque strings.
var codePattern = regexp.MustCompile(`^[a-z0-9_-]+\.[a-z0-9_-]+$`)

var titleCaser = cases.Title(language.English)

// ValidCode reports whether code matches the category.action pattern.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// NormalizeCode lowercases and trims a permission code.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// SplitCode breaks a code into category and action. Codes without a dot
// yield the whole string as category and an empty action.
func SplitCode(code string) (category, action string) {
	parts := strings.SplitN(code, ".", 2)
	category = parts[0]
	if len(parts) == 2 {
		action = parts[1]
	}
	return category, action
}

// FallbackDescriptor synthesizes display metadata for a code that was never
// seeded into the catalog, so every referenced code stays presentable.
func FallbackDescriptor(code string) PermissionDescriptor {
	category, action := SplitCode(code)
	name := strings.TrimSpace(titleCaser.String(humanize(action)) + " " + titleCaser.String(humanize(category)))
	description := strings.TrimSpace("Can " + strings.TrimSpace(humanize(action)+" "+humanize(category)))
	return PermissionDescriptor{
		Code:        code,
		Name:        name,
		Description: description,
		Category:    category,
		Action:      action,
	}
}

func humanize(segment string) string {
	return strings.ReplaceAll(strings.ReplaceAll(segment, "_", " "), "-", " ")
}
