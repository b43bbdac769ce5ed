// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/inferex/inferex/lib/bundle"
	"github.com/inferex/inferex/lib/validate"
)

// ValidationReport writes the pipelines found by local validation, one
// row per decorated function, followed by a one-line summary.
func ValidationReport(w io.Writer, report *validate.Report) error {
	writer := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(writer, "PIPELINE\tFUNCTION\tFILE\tASYNC")
	for _, pipeline := range report.Pipelines {
		fmt.Fprintf(writer, "%s\t%s\t%s:%d\t%s\n",
			pipeline.Name, pipeline.Function, pipeline.Path, pipeline.Line, strconv.FormatBool(pipeline.IsAsync))
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s in %s, %s.\n",
		plural(len(report.Pipelines), "pipeline"),
		plural(report.Files, "python file"),
		plural(len(report.Warnings), "warning"))
	return err
}

// BundleSummary describes a built archive ("4 files, 1.2 MB → 310 kB xz").
func BundleSummary(b *bundle.Bundle) string {
	return fmt.Sprintf("%s, %s → %s %s",
		plural(b.Files, "file"),
		humanize.Bytes(uint64(b.Size)),
		humanize.Bytes(uint64(b.CompressedSize)),
		b.Compression)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
