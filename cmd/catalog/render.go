package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-catalog-browser/browser"
	"github.com/goliatone/go-catalog-browser/catalog"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	linkStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// renderView renders one page of the browsing session.
func renderView(v browser.View) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(filterLabel(v.Filter)))
	b.WriteString("\n")

	switch {
	case v.IsLoading:
		b.WriteString(statusStyle.Render("loading..."))
		b.WriteString("\n")
	case v.Err != nil:
		b.WriteString(errorStyle.Render("error: " + v.Err.Error()))
		b.WriteString("\n")
		b.WriteString(statusStyle.Render("type r to retry"))
		b.WriteString("\n")
		return b.String()
	case len(v.Records) == 0:
		b.WriteString(statusStyle.Render("no resources"))
		b.WriteString("\n")
	}

	offset := (v.CurrentPage - 1) * v.ItemsPerPage
	for i, r := range v.Records {
		b.WriteString(renderResource(offset+i+1, r))
	}

	b.WriteString(statusStyle.Render(pageLabel(v)))
	b.WriteString("\n")
	return b.String()
}

func renderResource(n int, r catalog.Resource) string {
	line := fmt.Sprintf("%3d. %s  %s", n, titleStyle.Render(r.Title), linkStyle.Render(r.URL))
	if len(r.Tags) > 0 {
		line += "  " + tagStyle.Render("#"+strings.Join(r.Tags, " #"))
	}
	return line + "\n"
}

func filterLabel(f catalog.Filter) string {
	if f.IsAll() {
		return "All resources"
	}
	switch f.Kind {
	case catalog.KindTag:
		return "Tag: " + f.Value
	default:
		return "Category: " + f.Value
	}
}

func pageLabel(v browser.View) string {
	pages := max(v.TotalPages, 1)
	label := fmt.Sprintf("page %d/%d · %d resources", v.CurrentPage, pages, v.TotalCount)
	var hints []string
	if v.HasPrev {
		hints = append(hints, "p prev")
	}
	if v.HasNext {
		hints = append(hints, "n next")
	}
	if len(hints) > 0 {
		label += " · " + strings.Join(hints, "  ")
	}
	return label
}
