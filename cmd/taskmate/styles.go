package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/taskmate/internal/model"
)

// Nord palette
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3BE8C")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#BF616A")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#81A1C1"))
)

func priorityStyle(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityHigh:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#D08770"))
	case model.PriorityLow:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#A3BE8C"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#EBCB8B"))
	}
}
