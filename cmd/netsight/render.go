package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/netsight"
	"github.com/poiesic/netsight/config"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/ingestion"
	"github.com/poiesic/netsight/search"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// maxRowErrors caps how many skipped rows are listed after an ingestion.
const maxRowErrors = 10

func renderIngestion(w io.Writer, result *ingestion.Result) {
	fmt.Fprintf(w, "%s %s in %s\n", okStyle.Render("Ingested"), result.Source, result.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  rows:       %d\n", result.Rows)
	fmt.Fprintf(w, "  people:     %d\n", result.People)
	fmt.Fprintf(w, "  companies:  %d\n", result.Companies)
	fmt.Fprintf(w, "  embeddings: %d\n", result.Embeddings)
	fmt.Fprintf(w, "  duplicates: %d\n", result.Duplicates)
	fmt.Fprintf(w, "  skipped:    %d\n", result.Skipped)

	for i, rowErr := range result.Errors {
		if i == maxRowErrors {
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  ... and %d more", len(result.Errors)-maxRowErrors)))
			break
		}
		fmt.Fprintln(w, warnStyle.Render("  "+rowErr.Error()))
	}
}

func renderResponse(w io.Writer, resp *search.Response) {
	header := fmt.Sprintf("%d results", len(resp.Items))
	if resp.Query != "" {
		header += fmt.Sprintf(" for %q", resp.Query)
	}
	fmt.Fprintln(w, headerStyle.Render(header))
	if resp.FilterDerived {
		fmt.Fprintln(w, mutedStyle.Render("filter inferred from the query: "+describeFilter(resp.Filter)))
	}

	for i, item := range resp.Items {
		fmt.Fprintf(w, "%2d. %s\n", i+1, formatItem(item))
	}

	if resp.Summary != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, summaryStyle.Render(resp.Summary))
	}
	renderWarnings(w, resp.Warnings)
}

func formatItem(item search.ResultItem) string {
	var sb strings.Builder
	if item.Person == nil {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("unknown contact %d", item.ID)))
	} else {
		sb.WriteString(formatPerson(item.Person))
	}

	tag := item.Tier.String()
	if item.SemanticScore != nil {
		tag += fmt.Sprintf(" %.2f", *item.SemanticScore)
	}
	sb.WriteString(" ")
	sb.WriteString(mutedStyle.Render("[" + tag + "]"))
	return sb.String()
}

func formatPerson(p *core.Person) string {
	var sb strings.Builder
	sb.WriteString(nameStyle.Render(p.Name))
	switch {
	case p.Position != "" && p.Company != "":
		fmt.Fprintf(&sb, ", %s at %s", p.Position, p.Company)
	case p.Position != "":
		fmt.Fprintf(&sb, ", %s", p.Position)
	case p.Company != "":
		fmt.Fprintf(&sb, ", %s", p.Company)
	}
	if !p.ConnectedOn.IsZero() {
		fmt.Fprintf(&sb, " (connected %s)", p.ConnectedOn.Format(time.DateOnly))
	}
	return sb.String()
}

func describeFilter(f search.Filter) string {
	var parts []string
	if f.Company != "" {
		parts = append(parts, "company="+f.Company)
	}
	if f.NameContains != "" {
		parts = append(parts, "name~"+f.NameContains)
	}
	if !f.ConnectedAfter.IsZero() {
		parts = append(parts, "after="+f.ConnectedAfter.Format(time.DateOnly))
	}
	if !f.ConnectedBefore.IsZero() {
		parts = append(parts, "before="+f.ConnectedBefore.Format(time.DateOnly))
	}
	return strings.Join(parts, " ")
}

func renderDetails(w io.Writer, d *search.ConnectionDetails) {
	p := d.Person
	fmt.Fprintln(w, headerStyle.Render(p.Name))
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %-10s %s\n", label+":", value)
		}
	}
	field("Position", p.Position)
	if d.Company != nil {
		field("Company", d.Company.Name)
	}
	field("Email", p.Email)
	field("Profile", p.LinkedInURL)
	if !p.ConnectedOn.IsZero() {
		field("Connected", p.ConnectedOn.Format(time.DateOnly))
	}

	if len(d.Similar) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Similar profiles"))
		for i, s := range d.Similar {
			fmt.Fprintf(w, "%2d. %s %s\n", i+1, formatPerson(s.Person), mutedStyle.Render(fmt.Sprintf("[%.2f]", s.Score)))
		}
	}
	renderWarnings(w, d.Warnings)
}

func renderStatus(w io.Writer, cfg *config.Config, status *netsight.Status) {
	fmt.Fprintln(w, headerStyle.Render("netsight"))
	fmt.Fprintf(w, "  graph:      %s\n", cfg.Storage.Graph)
	fmt.Fprintf(w, "  vector:     %s\n", cfg.Storage.Vector)
	fmt.Fprintf(w, "  people:     %d\n", status.People)
	fmt.Fprintf(w, "  companies:  %d\n", status.Companies)
	fmt.Fprintf(w, "  embeddings: %d\n", status.Embeddings)

	m := status.Manifest
	if m == nil {
		fmt.Fprintln(w, mutedStyle.Render("  nothing ingested yet"))
		return
	}
	fmt.Fprintf(w, "  last ingest: %s from %s (%s)\n", m.CompletedAt.Local().Format(time.DateTime), m.Source, m.Model)
	if status.Embeddings < status.People {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("  %d people have no embedding; run reembed", status.People-status.Embeddings)))
	}
}

func renderWarnings(w io.Writer, warnings []search.Warning) {
	for _, warning := range warnings {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("warning: %s: %s", warning.Code, warning.Message)))
	}
}
