package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var palette = newPalette("#7D56F4", "#04B575", "#FFA500", "#626262")

// struct stylesheet is a simple set of named [lipgloss.Style] fields for command output
type stylesheet struct {
	title lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	label lipgloss.Style
	box   lipgloss.Style
}

func newPalette(t, s, w, h string) *stylesheet {
	return &stylesheet{
		title: newBold(t).MarginBottom(1),
		ok:    newBold(s),
		warn:  newStyle(w),
		help:  newEm(h),
		label: newStyle(h).Width(12),
		box:   newBox(t),
	}
}

func newStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func newBold(fg string) lipgloss.Style {
	return newStyle(fg).Bold(true)
}

func newEm(fg string) lipgloss.Style {
	return newStyle(fg).Italic(true)
}

func newBox(border string) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1)
}

// field is one labelled line of a summary box.
type field struct {
	label string
	value any
	style *lipgloss.Style
}

// summary renders a titled box of labelled values.
func (p *stylesheet) summary(title string, fields ...field) string {
	lines := []string{p.title.Render(title)}
	for _, f := range fields {
		value := fmt.Sprint(f.value)
		if f.style != nil {
			value = f.style.Render(value)
		}
		lines = append(lines, p.label.Render(f.label)+value)
	}
	return p.box.Render(strings.Join(lines, "\n"))
}
