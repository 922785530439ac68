package schema

// commonInitialisms contains Go initialisms that should be all uppercase.
// See: https://github.com/golang/lint/blob/master/lint.go
var commonInitialisms = map[string]bool{
	"ACL":  true,
	"API":  true,
	"CPU":  true,
	"DB":   true,
	"DNS":  true,
	"HTML": true,
	"HTTP": true,
	"ID":   true,
	"IP":   true,
	"JSON": true,
	"SQL":  true,
	"TCP":  true,
	"TLS":  true,
	"TTL":  true,
	"UID":  true,
	"UUID": true,
	"URI":  true,
	"URL":  true,
	"XML":  true,
}

// ToPascalCase converts snake_case to PascalCase for field names.
// Handles Go initialisms properly (e.g., "user_id" -> "UserID", not "UserId").
func ToPascalCase(s string) string {
	if s == "" {
		return ""
	}

	parts := make([]string, 0)
	currentPart := make([]rune, 0)

	for _, ch := range s {
		if ch == '_' {
			if len(currentPart) > 0 {
				parts = append(parts, string(currentPart))
				currentPart = make([]rune, 0)
			}
		} else {
			currentPart = append(currentPart, ch)
		}
	}
	if len(currentPart) > 0 {
		parts = append(parts, string(currentPart))
	}

	final := ""
	for _, part := range parts {
		if part == "" {
			continue
		}

		upperPart := ""
		for _, ch := range part {
			upperPart += string(toUpper(ch))
		}

		if commonInitialisms[upperPart] {
			final += upperPart
		} else {
			final += string(toUpper(rune(part[0]))) + part[1:]
		}
	}

	return final
}

// ToSnakeCase converts PascalCase to snake_case.
func ToSnakeCase(s string) string {
	var result []rune
	for i, ch := range s {
		if i > 0 && ch >= 'A' && ch <= 'Z' {
			result = append(result, '_')
		}
		result = append(result, toLower(ch))
	}
	return string(result)
}

func toUpper(ch rune) rune {
	if ch >= 'a' && ch <= 'z' {
		return ch - 32
	}
	return ch
}

func toLower(ch rune) rune {
	if ch >= 'A' && ch <= 'Z' {
		return ch + 32
	}
	return ch
}
