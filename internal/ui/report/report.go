// Package report renders sync summaries for the terminal.
package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"feedvault/internal/modules/feed/dto"
	"feedvault/internal/ui/theme"
)

type row struct {
	label string
	value int
	style lipgloss.Style
}

func Metadata(out dto.MetadataOutput) string {
	title := "Metadata"
	if out.StudentID != "" {
		title += " " + theme.Muted.Render(out.StudentID)
	}
	return render(title, []row{
		{label: "Not ready", value: out.Skipped, style: theme.Warn},
		{label: "Added", value: out.Added, style: theme.Good},
		{label: "Total", value: out.Total, style: theme.Value},
	})
}

func Media(out dto.MediaOutput) string {
	return render("Media", []row{
		{label: "Activities", value: out.Activities, style: theme.Value},
		{label: "Media", value: out.Media, style: theme.Value},
		{label: "Downloaded", value: out.Downloaded, style: theme.Good},
		{label: "Tagged", value: out.Tagged, style: theme.Good},
	})
}

func render(title string, rows []row) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, theme.Title.Render(title))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			theme.Label.Render(r.label),
			r.style.Render(humanize.Comma(int64(r.value))),
		))
	}
	return theme.Summary.Render(strings.Join(lines, "\n"))
}
