package workflow

import (
	"errors"
	"fmt"

	"galaxy-sdk/models"
)

var (
	// ErrHistoryNotFound is returned when no history has the requested name
	ErrHistoryNotFound = errors.New("history not found")

	// ErrToolNotFound is returned when no tool in the panel has the
	// requested name
	ErrToolNotFound = errors.New("tool not found")
)

// FindHistory returns the first history whose name equals name exactly
func FindHistory(histories []*models.History, name string) (*models.History, error) {
	for _, h := range histories {
		if h != nil && h.Name == name {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w: no history with name %q", ErrHistoryNotFound, name)
}

// FindTool walks the tool panel in order and returns the first tool whose
// name equals name exactly. Sections and tools without a name are skipped.
func FindTool(sections []models.ToolSection, name string) (*models.Tool, error) {
	for _, section := range sections {
		if section.Name == "" {
			continue
		}
		for i := range section.Elems {
			tool := &section.Elems[i]
			if tool.Name == "" {
				continue
			}
			if tool.Name == name {
				return tool, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no tool with name %q", ErrToolNotFound, name)
}
