// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

// UploadBar draws a single-line upload progress bar. It is redrawn in
// place with carriage returns, so it is only meant for terminals.
type UploadBar struct {
	mu      sync.Mutex
	w       io.Writer
	bar     progress.Model
	percent int
	drawn   bool
}

// NewUploadBar returns a bar writing to w.
func NewUploadBar(w io.Writer, profile termenv.Profile) *UploadBar {
	return &UploadBar{
		w:       w,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithColorProfile(profile)),
		percent: -1,
	}
}

// Update redraws the bar for sent of total bytes. Redraws happen only
// when the whole-percent value changes.
func (u *UploadBar) Update(sent, total int64) {
	if total <= 0 {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	percent := int(sent * 100 / total)
	if percent == u.percent {
		return
	}
	u.percent = percent
	u.drawn = true
	fmt.Fprintf(u.w, "\r%s %s / %s", u.bar.ViewAs(float64(sent)/float64(total)),
		humanize.Bytes(uint64(sent)), humanize.Bytes(uint64(total)))
}

// Done ends the bar's line.
func (u *UploadBar) Done() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.drawn {
		fmt.Fprintln(u.w)
		u.drawn = false
	}
}
