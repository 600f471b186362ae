package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// styles groups the lipgloss styles used by the chat output.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	userTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	botTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("44"))

	botBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("44")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

func renderHeader(conversationID string) string {
	return headerStyle.Render("portfolio assistant") + " " + hintStyle.Render(conversationID)
}

func renderHint(text string) string {
	return hintStyle.Render(text)
}

func renderPrompt() string {
	return userTitleStyle.Render("you> ")
}

func renderUser(text string) string {
	return userTitleStyle.Render("you") + " " + text
}

func renderBot(text string) string {
	return fmt.Sprintf("%s\n%s", botTitleStyle.Render("assistant"), botBoxStyle.Render(text))
}

func renderError(text string) string {
	return errorStyle.Render("error: " + text)
}
