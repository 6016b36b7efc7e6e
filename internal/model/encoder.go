package model

import (
	"encoding/json"
	"fmt"
)

// LabelEncoder maps classifier class indices to genre names
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

type labelEncoderFile struct {
	Classes []string `json:"classes"`
}

// NewLabelEncoder builds an encoder over classes in index order
func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("label encoder has no classes")
	}
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if c == "" {
			return nil, fmt.Errorf("class %d has an empty name", i)
		}
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		index[c] = i
	}
	return &LabelEncoder{classes: append([]string(nil), classes...), index: index}, nil
}

// ParseLabelEncoder decodes a label encoder artifact
func ParseLabelEncoder(data []byte) (*LabelEncoder, error) {
	var f labelEncoderFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid label encoder json: %w", err)
	}
	return NewLabelEncoder(f.Classes)
}

// Classes returns a copy of the genre names in index order
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

func (e *LabelEncoder) Len() int {
	return len(e.classes)
}

// Transform returns the class index of a genre name
func (e *LabelEncoder) Transform(name string) (int, error) {
	i, ok := e.index[name]
	if !ok {
		return 0, fmt.Errorf("unknown genre %q", name)
	}
	return i, nil
}

// InverseTransform returns the genre name of a class index
func (e *LabelEncoder) InverseTransform(i int) (string, error) {
	if i < 0 || i >= len(e.classes) {
		return "", fmt.Errorf("class index %d out of range [0, %d)", i, len(e.classes))
	}
	return e.classes[i], nil
}
