package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"mobiledev-news/internal/features/crawler/models"
	"mobiledev-news/internal/features/crawler/sources"
)

const maxErrorWidth = 60

// table renders left-aligned columns, measuring cells in terminal cells so
// wide characters in source names line up
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(w io.Writer) {
	widths := make([]int, len(t.header))
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			if i == len(cells)-1 {
				parts[i] = cell
				continue
			}
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(t.header)
	for _, row := range t.rows {
		line(row)
	}
}

func writeWaveTable(w io.Writer, wave *models.WaveResult) {
	t := &table{header: []string{"SOURCE", "STATUS", "TOTAL", "CREATED", "SKIPPED", "ERRORS", "ERROR"}}
	for _, r := range wave.Results {
		status := string(r.Status)
		if r.Busy {
			status = "busy"
		}
		t.add(
			r.Key,
			status,
			strconv.Itoa(r.Stats.Total),
			strconv.Itoa(r.Stats.Created),
			strconv.Itoa(r.Stats.Skipped),
			strconv.Itoa(r.Stats.Errors),
			runewidth.Truncate(r.Error, maxErrorWidth, "..."),
		)
	}
	t.add(
		"TOTAL",
		"",
		strconv.Itoa(wave.Totals.Total),
		strconv.Itoa(wave.Totals.Created),
		strconv.Itoa(wave.Totals.Skipped),
		strconv.Itoa(wave.Totals.Errors),
		"",
	)

	fmt.Fprintf(w, "wave %s\n", wave.WaveID)
	t.write(w)
}

func writeSourceTable(w io.Writer, registry *sources.Registry) {
	t := &table{header: []string{"KEY", "KIND", "CATEGORY", "ENABLED", "NAME"}}
	for _, key := range registry.Keys() {
		spec, _ := registry.Get(key)
		t.add(key, string(spec.Kind), spec.DefaultCategory, strconv.FormatBool(!spec.Disabled), spec.Name)
	}
	t.write(w)
}
