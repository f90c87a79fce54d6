package migrate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ExecutionMode is how a section's statements run.
type ExecutionMode string

const (
	// ModeTransactional wraps the whole section in one transaction.
	ModeTransactional ExecutionMode = "transactional"
	// ModeNonTransactional runs statement by statement outside a
	// transaction, as concurrent index creation requires.
	ModeNonTransactional ExecutionMode = "non-transactional"
)

// DefaultSectionName is the implicit section of a migration without
// directives.
const DefaultSectionName = "default"

// Section is one independently retriable unit of a migration file.
type Section struct {
	Name          string
	Mode          ExecutionMode
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	SQL           string
}

const directivePrefix = "-- pgmt:"

// DestructiveMarker precedes statements that can lose data when applied.
// Applying a file containing it requires the force flag.
const DestructiveMarker = "-- pgmt:destructive"

// ContainsDestructive reports whether the content carries a destructive
// marker.
func ContainsDestructive(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == DestructiveMarker {
			return true
		}
	}
	return false
}

// ParseSections splits a migration file's content into sections on
// `-- pgmt:section` directives. A file with no directives is one
// transactional section named "default".
func ParseSections(content string) ([]Section, error) {
	lines := strings.Split(content, "\n")

	var sections []Section
	var current *Section
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.SQL = strings.TrimSpace(strings.Join(body, "\n"))
		sections = append(sections, *current)
		current = nil
		body = nil
	}

	var leading []string

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, directivePrefix) {
			if current != nil {
				body = append(body, line)
			} else {
				leading = append(leading, line)
			}
			continue
		}

		directive := strings.TrimSpace(strings.TrimPrefix(trimmed, directivePrefix))
		switch {
		case directive == "destructive":
			// Safety marker, not an execution directive; it stays with the
			// statement it annotates.
			if current != nil {
				body = append(body, line)
			} else {
				leading = append(leading, line)
			}
		case strings.HasPrefix(directive, "section"):
			flush()
			name, err := parseDirectiveValue(directive, "section", "name", i+1)
			if err != nil {
				return nil, err
			}
			current = &Section{Name: name, Mode: ModeTransactional}
		default:
			if current == nil {
				return nil, fmt.Errorf("line %d: directive %q outside any section", i+1, trimmed)
			}
			if err := applySectionAttribute(current, directive, i+1); err != nil {
				return nil, err
			}
		}
	}
	flush()

	if len(sections) == 0 {
		return []Section{{
			Name: DefaultSectionName,
			Mode: ModeTransactional,
			SQL:  strings.TrimSpace(content),
		}}, nil
	}

	// SQL before the first directive belongs to no section.
	if lead := strings.TrimSpace(stripComments(strings.Join(leading, "\n"))); lead != "" {
		return nil, fmt.Errorf("statements before the first pgmt:section directive")
	}
	return sections, nil
}

// ValidateSections rejects duplicate names and unusable settings.
func ValidateSections(sections []Section) error {
	seen := make(map[string]bool, len(sections))
	for _, s := range sections {
		if s.Name == "" {
			return fmt.Errorf("section with empty name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate section name %q", s.Name)
		}
		seen[s.Name] = true
		if s.Mode != ModeTransactional && s.Mode != ModeNonTransactional {
			return fmt.Errorf("section %q: unknown mode %q", s.Name, s.Mode)
		}
		if s.RetryAttempts < 0 {
			return fmt.Errorf("section %q: negative retry_attempts", s.Name)
		}
	}
	return nil
}

func applySectionAttribute(s *Section, directive string, line int) error {
	key, value, ok := splitDirective(directive)
	if !ok {
		return fmt.Errorf("line %d: malformed directive %q", line, directive)
	}
	switch key {
	case "mode":
		mode := ExecutionMode(value)
		if mode != ModeTransactional && mode != ModeNonTransactional {
			return fmt.Errorf("line %d: unknown mode %q", line, value)
		}
		s.Mode = mode
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("line %d: invalid timeout %q: %w", line, value, err)
		}
		s.Timeout = d
	case "retry_attempts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("line %d: invalid retry_attempts %q: %w", line, value, err)
		}
		s.RetryAttempts = n
	case "retry_delay":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("line %d: invalid retry_delay %q: %w", line, value, err)
		}
		s.RetryDelay = d
	default:
		return fmt.Errorf("line %d: unknown directive key %q", line, key)
	}
	return nil
}

// parseDirectiveValue extracts key="value" from a directive like
// `section name="add_email"`.
func parseDirectiveValue(directive, directiveName, key string, line int) (string, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(directive, directiveName))
	k, v, ok := splitDirective(rest)
	if !ok || k != key {
		return "", fmt.Errorf("line %d: %s directive needs %s=\"...\"", line, directiveName, key)
	}
	if v == "" {
		return "", fmt.Errorf("line %d: %s directive has empty %s", line, directiveName, key)
	}
	return v, nil
}

// splitDirective splits key="value" into its parts.
func splitDirective(s string) (key, value string, ok bool) {
	idx := strings.Index(s, "=")
	if idx <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(s[:idx])
	value = strings.TrimSpace(s[idx+1:])
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}

// stripComments removes `--` line comments so header blocks do not count as
// statements.
func stripComments(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// FormatSections renders sections back into migration file content with
// directive headers.
func FormatSections(sections []Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "-- pgmt:section name=%q\n", s.Name)
		fmt.Fprintf(&b, "-- pgmt:  mode=%q\n", s.Mode)
		if s.Timeout > 0 {
			fmt.Fprintf(&b, "-- pgmt:  timeout=%q\n", s.Timeout.String())
		}
		if s.RetryAttempts > 0 {
			fmt.Fprintf(&b, "-- pgmt:  retry_attempts=\"%d\"\n", s.RetryAttempts)
			if s.RetryDelay > 0 {
				fmt.Fprintf(&b, "-- pgmt:  retry_delay=%q\n", s.RetryDelay.String())
			}
		}
		b.WriteString(s.SQL)
		b.WriteString("\n")
	}
	return b.String()
}
