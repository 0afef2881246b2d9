// Package output serializes collected completions into an editor completions file.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mehmetkoksal-w/rails-autocomplete/schemas"
)

// Completion is one entry of the completions list. Entries without a snippet
// encode as a bare string; the rest encode as {"trigger", "contents"}.
type Completion struct {
	Trigger    string
	Contents   string
	HasSnippet bool
}

// MarshalJSON implements json.Marshaler.
func (c Completion) MarshalJSON() ([]byte, error) {
	if !c.HasSnippet {
		return marshalNoEscape(c.Trigger)
	}
	return marshalNoEscape(struct {
		Trigger  string `json:"trigger"`
		Contents string `json:"contents"`
	}{c.Trigger, c.Contents})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Completion) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		*c = Completion{}
		return json.Unmarshal(b, &c.Trigger)
	}
	var obj struct {
		Trigger  string `json:"trigger"`
		Contents string `json:"contents"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*c = Completion{Trigger: obj.Trigger, Contents: obj.Contents, HasSnippet: true}
	return nil
}

// Document is the top-level completions file.
type Document struct {
	Scope       string       `json:"scope"`
	Completions []Completion `json:"completions"`
}

// Build concatenates the groups in order under scope.
func Build(scope string, groups ...[]Completion) Document {
	doc := Document{Scope: scope, Completions: []Completion{}}
	for _, g := range groups {
		doc.Completions = append(doc.Completions, g...)
	}
	return doc
}

// Encode renders doc as indented JSON without HTML escaping, so triggers
// such as `<=>` stay readable in the file.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write replaces the file at path with doc. The document is encoded and
// validated before the previous file is removed.
func Write(path string, doc Document) error {
	b, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("encode completions: %w", err)
	}
	if err := schemas.Validate(schemas.Completions, b); err != nil {
		return fmt.Errorf("completions invalid: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Read loads and validates a completions file written by Write.
func Read(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := schemas.Validate(schemas.Completions, b); err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
