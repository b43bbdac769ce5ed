// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package display renders inferex command output for terminals: resource
// tables, deployment stream lines, the upload progress bar, and the
// validation summary.
package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/inferex/inferex/lib/api"
)

// timestampLayouts are the added_at encodings the API has been seen to
// return. Timestamps without a zone are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// Age renders an added_at timestamp relative to now ("3 hours ago").
// Values that do not parse are returned unchanged.
func Age(addedAt string, now time.Time) string {
	if addedAt == "" {
		return "-"
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, addedAt); err == nil {
			return humanize.RelTime(parsed, now, "ago", "from now")
		}
	}
	return addedAt
}

// Projects writes a NAME/AGE table.
func Projects(w io.Writer, projects []api.Project, now time.Time) error {
	rows := make([][]string, 0, len(projects))
	for _, project := range projects {
		rows = append(rows, []string{project.Name, Age(project.AddedAt, now)})
	}
	return table(w, []string{"NAME", "AGE"}, rows)
}

// Deployments writes one row per deployment.
func Deployments(w io.Writer, deployments []api.Deployment, now time.Time) error {
	rows := make([][]string, 0, len(deployments))
	for _, deployment := range deployments {
		rows = append(rows, []string{
			deployment.GitSHA,
			deployment.ProjectName,
			orDash(deployment.Status),
			Age(deployment.AddedAt, now),
			orDash(deployment.URL),
			orDash(string(deployment.Version)),
		})
	}
	return table(w, []string{"SHA", "PROJECT", "STATUS", "AGE", "DOMAIN", "VERSION"}, rows)
}

// Pipelines writes one row per pipeline endpoint.
func Pipelines(w io.Writer, pipelines []api.Pipeline, now time.Time) error {
	rows := make([][]string, 0, len(pipelines))
	for _, pipeline := range pipelines {
		rows = append(rows, []string{
			pipeline.GitSHA,
			pipeline.ProjectName,
			orDash(pipeline.Status),
			Age(pipeline.AddedAt, now),
			orDash(pipeline.Path),
			orDash(string(pipeline.Version)),
			strconv.FormatBool(pipeline.IsAsync),
		})
	}
	return table(w, []string{"SHA", "PROJECT", "STATUS", "AGE", "PATH", "VERSION", "ASYNC"}, rows)
}

func table(w io.Writer, header []string, rows [][]string) error {
	writer := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(writer, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(writer, strings.Join(row, "\t"))
	}
	return writer.Flush()
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
