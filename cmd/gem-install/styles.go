package main

import "github.com/charmbracelet/lipgloss"

// Shared lipgloss styles for CLI output.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))
)
