package course

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidationError reports structural defects found while loading an authored
// course document. Unlike generated documents, where defects are warnings,
// loading a defective file is fatal.
type ValidationError struct {
	Defects []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("course document failed validation: %s", strings.Join(e.Defects, "; "))
}

// Load reads a hand-authored course document from a JSON or YAML file,
// normalizes the legacy page shape if present, and validates it.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course file: %w", err)
	}
	doc, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// Decode parses course document bytes. ext selects the format (".yaml" and
// ".yml" are YAML, anything else is JSON). The document is normalized and
// validated; any defect makes decoding fail.
func Decode(data []byte, ext string) (*Document, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		// Re-encode through JSON so the Block union decoding applies.
		var err error
		data, err = json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("convert yaml: %w", err)
		}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse course json: %w", err)
	}

	Normalize(&doc)
	if defects := Validate(&doc); len(defects) > 0 {
		return nil, &ValidationError{Defects: defects}
	}
	return &doc, nil
}
