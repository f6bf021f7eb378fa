package ui

import "github.com/charmbracelet/lipgloss"

var (
	Gray = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	Red  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// MethodColors styles HTTP methods in the dev route log
var MethodColors = map[string]lipgloss.Style{
	"GET":    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	"POST":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	"PUT":    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	"DELETE": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	"PATCH":  lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
}

// Method renders an HTTP method padded to a fixed width
func Method(method string) string {
	style, ok := MethodColors[method]
	if !ok {
		style = Gray
	}
	return style.Width(8).Render(" " + method)
}
