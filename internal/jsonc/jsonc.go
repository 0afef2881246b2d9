// Package jsonc decodes JSON documents that may carry comments.
package jsonc

import (
	"encoding/json"
	"fmt"
	"os"

	jsonc "github.com/muhammadmuzzammil1998/jsonc"
)

// DecodeFile loads a JSONC file into the provided destination.
func DecodeFile(path string, dest any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := Decode(b, dest); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Decode cleans data and unmarshals it into dest.
func Decode(data []byte, dest any) error {
	return json.Unmarshal(Clean(data), dest)
}

// Clean strips comments from JSONC input.
func Clean(data []byte) []byte {
	return jsonc.ToJSON(data)
}
