// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the color palette for help and listing output. Colors are
// ANSI 256-color codes.
type Theme struct {
	HeadingForeground lipgloss.Color
	NameForeground    lipgloss.Color
	FaintText         lipgloss.Color
	ErrorForeground   lipgloss.Color
}

// DefaultTheme targets dark-background 256-color terminals.
var DefaultTheme = Theme{
	HeadingForeground: lipgloss.Color("255"),
	NameForeground:    lipgloss.Color("75"),  // blue
	FaintText:         lipgloss.Color("245"), // gray
	ErrorForeground:   lipgloss.Color("196"), // red
}

// Styles are the rendered styles for one output writer.
type Styles struct {
	Heading lipgloss.Style
	Name    lipgloss.Style
	Faint   lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles builds DefaultTheme styles bound to w. The renderer detects
// w's color profile, so output to a pipe or buffer carries no escape
// sequences.
func NewStyles(w io.Writer) Styles {
	renderer := lipgloss.NewRenderer(w)
	return Styles{
		Heading: renderer.NewStyle().Bold(true).Foreground(DefaultTheme.HeadingForeground),
		Name:    renderer.NewStyle().Foreground(DefaultTheme.NameForeground),
		Faint:   renderer.NewStyle().Foreground(DefaultTheme.FaintText),
		Error:   renderer.NewStyle().Foreground(DefaultTheme.ErrorForeground),
	}
}
