package vocab

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyVocabularyFile is returned when an extension file declares nothing.
var ErrEmptyVocabularyFile = errors.New("vocabulary file declares no subjects or keywords")

// SubjectEntry is one subject declared in an extension file.
type SubjectEntry struct {
	Name  string `yaml:"name"`
	Group string `yaml:"group,omitempty"`
}

// File is the YAML layout of a vocabulary extension:
//
//	subjects:
//	  - name: 인공지능 기초
//	    group: 기술가정
//	keywords:
//	  online: [메타버스]
type File struct {
	Subjects []SubjectEntry `yaml:"subjects"`
	Keywords Keywords       `yaml:"keywords"`
}

// Parse decodes an extension file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file: %w", err)
	}
	if len(f.Subjects) == 0 && len(f.Keywords.Exploration)+len(f.Keywords.Online)+len(f.Keywords.Qualitative) == 0 {
		return nil, ErrEmptyVocabularyFile
	}
	for i, s := range f.Subjects {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("subject at index %d has no name", i)
		}
	}
	return &f, nil
}

// Extend returns a new vocabulary made of the built-in entries followed by
// the entries of f. A group given for a built-in subject replaces its derived
// group. The built-in vocabulary is left untouched.
func Extend(f *File) *Vocabulary {
	subjects := append([]string(nil), defaultSubjects...)
	overrides := make(map[string]string, len(f.Subjects))
	for _, s := range f.Subjects {
		name := strings.TrimSpace(s.Name)
		subjects = append(subjects, name)
		if s.Group != "" {
			overrides[name] = s.Group
		}
	}
	return New(subjects, overrides, defaultKeywords.merge(f.Keywords))
}

// Load returns the built-in vocabulary when path is empty, or the built-in
// vocabulary extended with the YAML file at path.
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Extend(f), nil
}
