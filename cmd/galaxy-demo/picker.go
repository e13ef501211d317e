package main

import (
	"context"
	"fmt"

	galaxy "galaxy-sdk"
	"galaxy-sdk/models"

	"github.com/charmbracelet/huh"
)

// historyOptions labels each history with its id so that duplicate names
// stay distinguishable
func historyOptions(histories []*models.History) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(histories))
	for _, h := range histories {
		if h == nil || h.Deleted {
			continue
		}
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", h.Name, h.ID), h.ID))
	}
	return options
}

// pickHistory lets the user choose a history interactively
func pickHistory(ctx context.Context, client *galaxy.GalaxyClient, preferred string) (*models.History, error) {
	histories, err := client.Histories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list histories: %w", err)
	}

	options := historyOptions(histories)
	if len(options) == 0 {
		return nil, fmt.Errorf("no histories available for this API key")
	}

	var selected string
	for _, h := range histories {
		if h != nil && h.Name == preferred {
			selected = h.ID
			break
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a history").
				Description("The input file is uploaded into this history").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.RunWithContext(ctx); err != nil {
		return nil, err
	}

	for _, h := range histories {
		if h != nil && h.ID == selected {
			return h, nil
		}
	}
	return nil, fmt.Errorf("selected history %s not found", selected)
}
