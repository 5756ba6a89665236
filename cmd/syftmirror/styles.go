package main

import "github.com/charmbracelet/lipgloss"

var (
	red  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cyan = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)
