package display

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// Status line colors
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
	accentColor  = color.New(color.FgHiMagenta)

	boldText   = color.New(color.FgHiWhite, color.Bold)
	italicText = color.New(color.Italic)
	codeText   = color.New(color.FgHiWhite, color.BgHiBlack)
)

// Styles holds the lipgloss styles used for framed output
var Styles = struct {
	Title     lipgloss.Style
	Banner    lipgloss.Style
	Rule      lipgloss.Style
	Thin      lipgloss.Style
	Heading   lipgloss.Style
	Command   lipgloss.Style
	Label     lipgloss.Style
	Link      lipgloss.Style
	RoleUser  lipgloss.Style
	RoleModel lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("42")),

	Banner: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("33")).
		Padding(0, 2),

	Rule:      lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	Thin:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	Heading:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
	Command:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Link:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true),
	RoleUser:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
	RoleModel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")),
}
