package incident

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a JSON document. Any failure is a
// *SchemaError listing every issue found, type mismatches included.
func Parse(data []byte) (Document, error) {
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return Document{}, malformed("JSON", err)
	}
	var mismatches []Issue
	if !typeCheck(tree, documentWireType, "", &mismatches) {
		return Document{}, &SchemaError{Issues: mismatches}
	}
	pruned, err := json.Marshal(tree)
	if err != nil {
		return Document{}, malformed("JSON", err)
	}
	var w documentWire
	if err := json.Unmarshal(pruned, &w); err != nil {
		// keys matched only case-insensitively escape the type walk
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return Document{}, malformed("JSON", err)
		}
		mismatches = append(mismatches, Issue{
			Path:    typeErr.Field,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		})
	}
	return finish(&w, mismatches)
}

// ParseYAML decodes and validates a YAML document.
func ParseYAML(data []byte) (Document, error) {
	var w documentWire
	var issues []Issue
	if err := yaml.Unmarshal(data, &w); err != nil {
		var typeErr *yaml.TypeError
		if !errors.As(err, &typeErr) {
			return Document{}, malformed("YAML", err)
		}
		for _, msg := range typeErr.Errors {
			issues = append(issues, Issue{Message: msg})
		}
	}
	return finish(&w, issues)
}

func malformed(format string, err error) *SchemaError {
	return &SchemaError{Issues: []Issue{{Message: "malformed " + format + ": " + err.Error()}}}
}

// finish validates w. Rule violations under a path that already failed its
// type check are dropped; the type issue stands for them.
func finish(w *documentWire, typeIssues []Issue) (Document, error) {
	issues := typeIssues
	for _, issue := range check(w) {
		if issue.Path != "" && covered(issue.Path, typeIssues) {
			continue
		}
		issues = append(issues, issue)
	}
	if len(issues) > 0 {
		return Document{}, &SchemaError{Issues: issues}
	}
	return w.toDocument(), nil
}

// Serialize validates d and renders it as indented JSON.
func Serialize(d Document) ([]byte, error) {
	w, err := validated(d)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return nil, fmt.Errorf("encode map: %w", err)
	}
	return buf.Bytes(), nil
}

// SerializeYAML validates d and renders it as YAML.
func SerializeYAML(d Document) ([]byte, error) {
	w, err := validated(d)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(w); err != nil {
		return nil, fmt.Errorf("encode map: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode map: %w", err)
	}
	return buf.Bytes(), nil
}

func validated(d Document) (*documentWire, error) {
	w := wireFromDocument(d)
	if issues := check(w); len(issues) > 0 {
		return nil, &SchemaError{Issues: issues}
	}
	return w, nil
}

// Format selects a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown map format %q", s)
	}
}

// FormatForPath picks the encoding from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Ext returns the file extension used for f.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Decode parses data in format f.
func (f Format) Decode(data []byte) (Document, error) {
	if f == FormatYAML {
		return ParseYAML(data)
	}
	return Parse(data)
}

// Encode serializes d in format f.
func (f Format) Encode(d Document) ([]byte, error) {
	if f == FormatYAML {
		return SerializeYAML(d)
	}
	return Serialize(d)
}
