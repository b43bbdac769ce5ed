// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Profile returns the colour profile for w: the environment's profile
// when w is a terminal, plain ASCII otherwise.
func Profile(w io.Writer) termenv.Profile {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return termenv.Ascii
	}
	return termenv.NewOutput(file).EnvColorProfile()
}

// Printer writes human-facing status lines with styles suited to its
// destination.
type Printer struct {
	w       io.Writer
	profile termenv.Profile

	stage    lipgloss.Style
	substage lipgloss.Style
	failure  lipgloss.Style
	success  lipgloss.Style
}

// NewPrinter returns a Printer for w using profile.
func NewPrinter(w io.Writer, profile termenv.Profile) *Printer {
	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(profile)
	return &Printer{
		w:        w,
		profile:  profile,
		stage:    renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		substage: renderer.NewStyle().Faint(true),
		failure:  renderer.NewStyle().Foreground(lipgloss.Color("1")),
		success:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
	}
}

// StreamLine writes one line of a deployment stream. Stage and
// substage lines are styled; server text is stripped of escape
// sequences when the destination has no colour support.
func (p *Printer) StreamLine(line string) {
	if p.profile == termenv.Ascii {
		line = ansi.Strip(line)
	}
	switch {
	case strings.HasPrefix(line, "→"):
		line = p.render(p.stage, line)
	case strings.HasPrefix(strings.TrimLeft(line, " "), "↳"):
		line = p.render(p.substage, line)
	case strings.HasPrefix(line, "HTTP "), strings.HasPrefix(line, "Error during deployment"):
		line = p.render(p.failure, line)
	}
	fmt.Fprintln(p.w, line)
}

// render applies style unless the destination is plain text.
func (p *Printer) render(style lipgloss.Style, text string) string {
	if p.profile == termenv.Ascii {
		return text
	}
	return style.Render(text)
}

// Success writes a highlighted completion message.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(p.success, fmt.Sprintf(format, args...)))
}

// Failure writes an error-styled message.
func (p *Printer) Failure(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(p.failure, fmt.Sprintf(format, args...)))
}

// Plain writes an unstyled message.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}
