// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/envvars/lib/resolve"
)

// kindColors are ANSI 256 colour codes per variable kind.
var kindColors = map[resolve.Kind]lipgloss.Color{
	resolve.Plain:     lipgloss.Color("252"),
	resolve.Secret:    lipgloss.Color("203"),
	resolve.Reference: lipgloss.Color("111"),
}

const (
	headerColor = lipgloss.Color("39")
	borderColor = lipgloss.Color("240")
)

func writeTable(w io.Writer, set resolve.Set, color bool) error {
	// The profile is pinned so the decision made by the caller (flags,
	// NO_COLOR, terminal detection) is the only one that counts.
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI256
	}
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	headerStyle := renderer.NewStyle().Bold(true).Foreground(headerColor).Padding(0, 1)
	cellStyle := renderer.NewStyle().Padding(0, 1)

	rows := make([][]string, len(set))
	for i, variable := range set {
		rows[i] = []string{variable.Name, variable.Kind.String(), variable.Value}
	}

	rendered := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(renderer.NewStyle().Foreground(borderColor)).
		Headers("NAME", "KIND", "VALUE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(set) && col == 1 {
				return cellStyle.Foreground(kindColors[set[row].Kind])
			}
			return cellStyle
		}).
		String()

	_, err := io.WriteString(w, rendered+"\n")
	return err
}
