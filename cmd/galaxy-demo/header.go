package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Build information - these are set via ldflags during build
var (
	version   = "dev"
	gitCommit = "unknown"
)

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

func versionString() string {
	versionInfo := fmt.Sprintf("v%s", version)
	if gitCommit != "unknown" && len(gitCommit) > 7 {
		versionInfo += fmt.Sprintf(" (%s)", gitCommit[:7])
	}
	return versionInfo
}

// RenderHeader renders the title and the Galaxy server in use
func RenderHeader(baseURL string) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2C3143")).
		Background(lipgloss.Color("#FFD700")).
		Bold(true).
		Padding(0, 1).
		MarginTop(1).
		MarginLeft(2)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginLeft(2).
		MarginBottom(1)

	title := titleStyle.Render("Galaxy API Demo")
	subtitle := subtitleStyle.Render(fmt.Sprintf("%s · %s", versionString(), baseURL))

	return fmt.Sprintf("%s\n%s\n", title, subtitle)
}
