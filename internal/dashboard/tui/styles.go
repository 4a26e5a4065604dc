package tui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	Muted        lipgloss.Style
	Error        lipgloss.Style
	FieldError   lipgloss.Style
	Label        lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
	ToastInfo    lipgloss.Style
	Panel        lipgloss.Style
}

func DefaultStyles() Styles {
	toast := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	return Styles{
		Title:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Subtitle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		FieldError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Label:        lipgloss.NewStyle().Width(12),
		ToastSuccess: toast.Background(lipgloss.Color("28")).Foreground(lipgloss.Color("231")),
		ToastError:   toast.Background(lipgloss.Color("124")).Foreground(lipgloss.Color("231")),
		ToastInfo:    toast.Background(lipgloss.Color("25")).Foreground(lipgloss.Color("231")),
		Panel:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}
