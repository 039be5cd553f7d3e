package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Document container
	docStyle = lipgloss.NewStyle().
			Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")). // purple
			Padding(1, 0)
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{
			Light: "#A49FA5",
			Dark:  "#777777",
		})

	// Lists (videos, crew steps)
	listHeaderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240")). // grey
			MarginBottom(1).
			PaddingBottom(1)
	listItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)
	selectedListItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(lipgloss.Color("62")).
				SetString("> ")
	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{
			Light: "#04B575",
			Dark:  "#04B575",
		}) // green
	errorMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9")) // red

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // blue
			Underline(true)

	// Creator report
	fieldNameStyle = lipgloss.NewStyle().
			Bold(true).
			Width(22)
	missingValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)
)
