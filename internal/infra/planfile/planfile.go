// Package planfile reads subtask plans from YAML files.
//
// A plan is one or more YAML documents. Each document is either a list of
// entries or a mapping with a "subtasks" list:
//
//	subtasks:
//	  - description: Leer el capítulo 3
//	    date: 2025-03-01
//	    hours: 1.5
//	---
//	- description: Redactar el resumen
//	  date: 2025-03-02
//	  hours: 2
//
// "planification_date" and "needed_hours" are accepted as aliases of "date" and "hours".
// Values are kept as written so that they go through the same validation as typed input.
package planfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/studyplan/planner/internal/domain"
)

// entry is one subtask in a plan file.
type entry struct {
	Description       string `yaml:"description"`
	Date              string `yaml:"date"`
	PlanificationDate string `yaml:"planification_date"`
	Hours             string `yaml:"hours"`
	NeededHours       string `yaml:"needed_hours"`
}

func (e entry) fields() domain.SubtaskFields {
	f := domain.SubtaskFields{
		Description:       e.Description,
		PlanificationDate: e.Date,
		NeededHours:       e.Hours,
	}
	if f.PlanificationDate == "" {
		f.PlanificationDate = e.PlanificationDate
	}
	if f.NeededHours == "" {
		f.NeededHours = e.NeededHours
	}
	return f
}

// document is the mapping form of a plan document.
type document struct {
	Subtasks []entry `yaml:"subtasks"`
}

// Parse decodes every document in data into raw subtask fields, in file order.
func Parse(data []byte) ([]domain.SubtaskFields, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, domain.ErrEmptyFile
	}

	var out []domain.SubtaskFields
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for doc := 1; ; doc++ {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}

		entries, err := decodeDocument(&node)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}
		for _, e := range entries {
			out = append(out, e.fields())
		}
	}

	if len(out) == 0 {
		return nil, domain.ErrNoSubtasksInFile
	}
	return out, nil
}

// ParseFile reads and parses the plan file at path.
func ParseFile(path string) ([]domain.SubtaskFields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	fields, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fields, nil
}

func decodeDocument(node *yaml.Node) ([]entry, error) {
	content := node
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}
		content = node.Content[0]
	}

	switch content.Kind {
	case yaml.SequenceNode:
		var entries []entry
		if err := content.Decode(&entries); err != nil {
			return nil, err
		}
		return entries, nil
	case yaml.MappingNode:
		var doc document
		if err := content.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Subtasks, nil
	case yaml.ScalarNode:
		if content.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("line %d: expected a list of subtasks", content.Line)
}
