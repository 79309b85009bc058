package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func textRow(cells ...string) []Cell {
	row := make([]Cell, len(cells))
	for i, c := range cells {
		row[i] = Cell{Text: c}
	}
	return row
}

func TestHTMLRenderer_Render(t *testing.T) {
	r := NewHTMLRenderer()

	t.Run("renders headers and rows", func(t *testing.T) {
		out, err := r.Render(Document{
			Title:   "Latency report",
			Headers: []string{"EVENT NAME", "MAX LATENCY"},
			Data: [][]Cell{
				textRow("CHECKOUT", "200.00ms"),
				textRow("LOGIN", "100.00ms"),
			},
			Date: "Fri Jun 30 2023",
		})
		require.NoError(t, err)

		html := string(out)
		require.Contains(t, html, "<th>EVENT NAME</th>")
		require.Contains(t, html, "<td>CHECKOUT</td>")
		require.Contains(t, html, "<td>100.00ms</td>")
		require.Contains(t, html, "Report date: Fri Jun 30 2023")
	})

	t.Run("renders link cells as anchors", func(t *testing.T) {
		out, err := r.Render(Document{
			Headers: []string{"MAX LAG LOG ID"},
			Data: [][]Cell{
				{{Text: "log-1", Href: "https://loglens.example.com/v1/logs/entry?log_id=log-1"}},
			},
		})
		require.NoError(t, err)
		require.Contains(t, string(out),
			`<a href="https://loglens.example.com/v1/logs/entry?log_id=log-1">log-1</a>`)
	})

	t.Run("escapes cell content", func(t *testing.T) {
		out, err := r.Render(Document{
			Title:   "t",
			Headers: []string{"h"},
			Data:    [][]Cell{textRow(`<script>alert(1)</script>`)},
		})
		require.NoError(t, err)
		require.NotContains(t, string(out), "<script>")
	})

	t.Run("rejects ragged rows", func(t *testing.T) {
		_, err := r.Render(Document{
			Headers: []string{"a", "b"},
			Data:    [][]Cell{textRow("only one")},
		})
		require.ErrorContains(t, err, "cells")
	})
}
