// Package unitfile parses and serializes systemd-style unit files.
//
// Unlike generic INI parsers, unit files legitimately repeat keys within a
// section (multiple Requires= lines, multiple Volume= lines); repeated keys
// accumulate into an ordered value list and round-trip losslessly.
package unitfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Options configures parsing behavior.
type Options struct {
	// AllowNoValue accepts bare option lines without '='; such options
	// serialize back as bare key lines.
	AllowNoValue bool
}

// Document is an ordered collection of sections.
type Document struct {
	opts     Options
	names    []string
	sections map[string]*Section
}

// Section is an insertion-ordered mapping from option key to its values.
// A key holds one value for a scalar option, several for a repeated option,
// and nil for a valueless option.
type Section struct {
	name   string
	keys   []string
	values map[string][]string
}

// NewDocument creates an empty document.
func NewDocument(opts Options) *Document {
	return &Document{opts: opts, sections: make(map[string]*Section)}
}

// ParseError reports a line that could not be parsed.
type ParseError struct {
	Line    int
	Content string
	Reason  string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Content)
}

// Parse reads a unit file. Repeated section headers reopen the existing
// section; repeated keys within a section accumulate in order.
func Parse(r io.Reader, opts Options) (*Document, error) {
	doc := NewDocument(opts)
	var current *Section

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				return nil, ParseError{Line: lineno, Content: line, Reason: "empty section name"}
			}
			current = doc.EnsureSection(name)
			continue
		}

		if current == nil {
			return nil, ParseError{Line: lineno, Content: line, Reason: "option before any section header"}
		}

		if key, value, found := strings.Cut(line, "="); found {
			key = strings.TrimSpace(key)
			if key == "" {
				return nil, ParseError{Line: lineno, Content: line, Reason: "empty option key"}
			}
			current.Append(key, strings.TrimSpace(value))
			continue
		}

		if !opts.AllowNoValue {
			return nil, ParseError{Line: lineno, Content: line, Reason: "option without a value"}
		}
		current.appendBare(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseBytes parses an in-memory unit file.
func ParseBytes(data []byte, opts Options) (*Document, error) {
	return Parse(bytes.NewReader(data), opts)
}

// SectionNames returns section names in insertion order.
func (d *Document) SectionNames() []string {
	return append([]string(nil), d.names...)
}

// Section returns the named section if present.
func (d *Document) Section(name string) (*Section, bool) {
	s, ok := d.sections[name]
	return s, ok
}

// EnsureSection returns the named section, creating it at the end of the
// document if absent.
func (d *Document) EnsureSection(name string) *Section {
	if s, ok := d.sections[name]; ok {
		return s
	}
	s := &Section{name: name, values: make(map[string][]string)}
	d.names = append(d.names, name)
	d.sections[name] = s
	return s
}

// Name returns the section's name.
func (s *Section) Name() string {
	return s.name
}

// Keys returns option keys in insertion order.
func (s *Section) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Values returns the ordered values for a key. The second return reports
// presence; a present key with nil values is a valueless option.
func (s *Section) Values(key string) ([]string, bool) {
	values, ok := s.values[key]
	if !ok {
		return nil, false
	}
	return append([]string(nil), values...), true
}

// Append adds one value to a key, accumulating after any existing values.
func (s *Section) Append(key, value string) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = append(s.values[key], value)
}

// Set replaces a key's values wholesale, discarding any accumulated values.
// A new key is appended to the section's key order.
func (s *Section) Set(key string, values []string) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	if values == nil {
		s.values[key] = nil
		return
	}
	s.values[key] = append([]string(nil), values...)
}

func (s *Section) appendBare(key string) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
		s.values[key] = nil
	}
}

// Write serializes the document: one blank-line-separated block per section,
// repeated keys written as repeated key=value lines in value order, and
// valueless options written as bare key lines.
func (d *Document) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, name := range d.names {
		section := d.sections[name]
		if _, err := fmt.Fprintf(bw, "[%s]\n", name); err != nil {
			return err
		}
		for _, key := range section.keys {
			values := section.values[key]
			if values == nil {
				if _, err := fmt.Fprintf(bw, "%s\n", key); err != nil {
					return err
				}
				continue
			}
			for _, value := range values {
				if _, err := fmt.Fprintf(bw, "%s=%s\n", key, value); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Bytes serializes the document to a byte slice.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_ = d.Write(&buf)
	return buf.Bytes()
}
