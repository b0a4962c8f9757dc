package corpus

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Difficulty grades a reference question.
type Difficulty string

const (
	DifficultyJunior  Difficulty = "Junior"
	DifficultyMid     Difficulty = "Mid"
	DifficultySenior  Difficulty = "Senior"
	DifficultyUnknown Difficulty = "Unknown"
)

// ParseDifficulty maps a free-form string onto a known difficulty, defaulting
// to Unknown.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "junior":
		return DifficultyJunior
	case "mid":
		return DifficultyMid
	case "senior":
		return DifficultySenior
	default:
		return DifficultyUnknown
	}
}

// ReferenceItem is one pre-authored reference question with its grading
// ground truth. Items are owned by the similarity index; the evaluation path
// only reads them.
type ReferenceItem struct {
	Question    string     `yaml:"question" mapstructure:"-"`
	IdealAnswer string     `yaml:"ideal_answer" mapstructure:"ideal_answer"`
	Keywords    string     `yaml:"keywords" mapstructure:"keywords"`
	Topic       string     `yaml:"topic" mapstructure:"topic"`
	Difficulty  Difficulty `yaml:"difficulty" mapstructure:"difficulty"`
}

// File is the on-disk corpus format consumed by the seed command.
type File struct {
	Role      string          `yaml:"role"`
	Questions []ReferenceItem `yaml:"questions"`
}

// LoadFile reads and validates a YAML corpus file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing corpus file %q: %w", path, err)
	}

	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("corpus file %q contains no questions", path)
	}

	for i, item := range file.Questions {
		if strings.TrimSpace(item.Question) == "" {
			return nil, fmt.Errorf("corpus item %d: question is required", i)
		}
		if strings.TrimSpace(item.IdealAnswer) == "" {
			return nil, fmt.Errorf("corpus item %d (%q): ideal_answer is required", i, item.Question)
		}
		file.Questions[i].Difficulty = ParseDifficulty(string(item.Difficulty))
	}

	return &file, nil
}
