package patterns

import (
	"regexp"
	"strings"
)

// Format represents a document line format with named capture groups.
type Format struct {
	Name     string         // Format name for identification
	Pattern  string         // Pattern with {PLACEHOLDER} syntax
	Compiled *regexp.Regexp // Compiled regex (populated by Compile)
	Fields   []string       // Field names in capture order (for documentation)
}

// Compiler manages pattern compilation and matching for a set of formats.
type Compiler struct {
	basePatterns map[string]string
	formats      []Format
}

// NewCompiler creates a pattern compiler for the given formats. Local
// patterns overlay the global BasePatterns and may override them.
func NewCompiler(formats []Format, localPatterns map[string]string) *Compiler {
	c := &Compiler{
		basePatterns: make(map[string]string),
		formats:      make([]Format, len(formats)),
	}

	for k, v := range BasePatterns {
		c.basePatterns[k] = v
	}
	for k, v := range localPatterns {
		c.basePatterns[k] = v
	}

	copy(c.formats, formats)
	return c
}

// Compile expands all {PLACEHOLDER} references and compiles the regexes.
func (c *Compiler) Compile() error {
	for i := range c.formats {
		re, err := regexp.Compile(c.Expand(c.formats[i].Pattern))
		if err != nil {
			return err
		}
		c.formats[i].Compiled = re
	}
	return nil
}

// Expand replaces {PLACEHOLDER} references with their regex fragments.
func (c *Compiler) Expand(pattern string) string {
	result := pattern
	for name, regex := range c.basePatterns {
		result = strings.ReplaceAll(result, "{"+name+"}", regex)
	}
	return result
}

// Match represents a successful format match with extracted fields.
type Match struct {
	FormatName string            // Name of the matched format
	Captures   map[string]string // Named capture group values
}

// Parse attempts each compiled format in order and returns the first match,
// or nil if no format matches.
func (c *Compiler) Parse(text string) *Match {
	for _, format := range c.formats {
		if format.Compiled == nil {
			continue
		}

		m := format.Compiled.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		result := &Match{
			FormatName: format.Name,
			Captures:   make(map[string]string),
		}
		for i, name := range format.Compiled.SubexpNames() {
			if i == 0 || name == "" || i >= len(m) {
				continue
			}
			if m[i] != "" {
				result.Captures[name] = m[i]
			}
		}
		return result
	}
	return nil
}

// MustCompile expands a single {PLACEHOLDER} pattern against the global base
// patterns and compiles it, panicking on error. Intended for package-level
// pattern variables.
func MustCompile(pattern string) *regexp.Regexp {
	c := &Compiler{basePatterns: BasePatterns}
	return regexp.MustCompile(c.Expand(pattern))
}
