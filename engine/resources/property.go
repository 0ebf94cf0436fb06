package resources

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Property is one `key value` line of a property file.
type Property struct {
	Key   string
	Value string
}

// Properties is an ordered multi-valued mapping. Repeated keys keep every value
// in file order.
type Properties struct {
	entries []Property
}

func NewProperties() *Properties {
	return &Properties{}
}

func (p *Properties) Add(key, value string) {
	p.entries = append(p.entries, Property{Key: key, Value: value})
}

// Get returns the first value stored for key.
func (p *Properties) Get(key string) (string, bool) {
	for _, e := range p.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// All returns every value stored for key, in file order.
func (p *Properties) All(key string) []string {
	var values []string
	for _, e := range p.entries {
		if e.Key == key {
			values = append(values, e.Value)
		}
	}
	return values
}

// Entries returns a copy of every property in file order.
func (p *Properties) Entries() []Property {
	out := make([]Property, len(p.entries))
	copy(out, p.entries)
	return out
}

// Each calls fn for every property in file order.
func (p *Properties) Each(fn func(key, value string)) {
	for _, e := range p.entries {
		fn(e.Key, e.Value)
	}
}

func (p *Properties) Len() int {
	return len(p.entries)
}

// ParseProperties parses property file text. Carriage returns are dropped before
// splitting lines. The key is the first whitespace delimited token and the value
// is the rest of the line after the separating whitespace. Lines without a key
// are skipped, a key with nothing after it yields an empty value.
func ParseProperties(text string) *Properties {
	props := NewProperties()
	text = strings.ReplaceAll(text, "\r", "")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeftFunc(line, unicode.IsSpace)
		if line == "" {
			continue
		}
		end := strings.IndexFunc(line, unicode.IsSpace)
		if end < 0 {
			props.Add(line, "")
			continue
		}
		key := line[:end]
		value := strings.TrimLeftFunc(line[end:], unicode.IsSpace)
		props.Add(key, value)
	}
	return props
}

// LoadPropertyFile reads and parses the property file at path. Read failures are
// returned to the caller.
func LoadPropertyFile(path string) (*Properties, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open property file %s: %w", path, err)
	}
	return ParseProperties(string(raw)), nil
}

// WriteProperties serializes props as `key value` lines.
func WriteProperties(w io.Writer, props *Properties) error {
	bw := bufio.NewWriter(w)
	for _, e := range props.entries {
		if _, err := fmt.Fprintf(bw, "%s %s\n", e.Key, e.Value); err != nil {
			return err
		}
	}
	return bw.Flush()
}
