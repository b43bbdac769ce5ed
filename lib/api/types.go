// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Project is a named group of deployments.
type Project struct {
	Name    string `json:"name" yaml:"name"`
	AddedAt string `json:"added_at,omitempty" yaml:"added_at,omitempty"`
}

// Deployment is one uploaded bundle of a project, addressed by its
// deployment identifier.
type Deployment struct {
	GitSHA      string  `json:"git_sha" yaml:"git_sha"`
	ProjectName string  `json:"project_name" yaml:"project_name"`
	Status      string  `json:"deployment_status" yaml:"deployment_status"`
	AddedAt     string  `json:"added_at,omitempty" yaml:"added_at,omitempty"`
	URL         string  `json:"deployment_url,omitempty" yaml:"deployment_url,omitempty"`
	Version     Version `json:"version,omitempty" yaml:"version,omitempty"`
}

// Pipeline is an endpoint served by a deployment.
type Pipeline struct {
	GitSHA      string  `json:"git_sha" yaml:"git_sha"`
	ProjectName string  `json:"project_name" yaml:"project_name"`
	Status      string  `json:"deployment_status" yaml:"deployment_status"`
	AddedAt     string  `json:"added_at,omitempty" yaml:"added_at,omitempty"`
	Path        string  `json:"url" yaml:"url"`
	Version     Version `json:"version,omitempty" yaml:"version,omitempty"`
	IsAsync     bool    `json:"is_async" yaml:"is_async"`
}

// Version is a deployment version as reported by the server, which
// sends either a number or a string.
type Version string

func (v *Version) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*v = Version(text)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*v = Version(number.String())
	return nil
}

// TaskStatus is one poll of a server-side deployment task.
type TaskStatus struct {
	State     string `json:"state"`
	Stage     string `json:"stage,omitempty"`
	Substage  string `json:"substage,omitempty"`
	Exception string `json:"exception,omitempty"`
}

// Failed reports whether the task ended in failure.
func (t TaskStatus) Failed() bool {
	switch strings.ToLower(t.State) {
	case "failed", "failure":
		return true
	}
	return false
}

// Succeeded reports whether the task ended successfully.
func (t TaskStatus) Succeeded() bool {
	switch strings.ToLower(t.State) {
	case "success", "succeeded":
		return true
	}
	return false
}

// Terminal reports whether the task will not change state again.
func (t TaskStatus) Terminal() bool {
	return t.Failed() || t.Succeeded()
}

// UploadResult is the body of an accepted deployment upload.
type UploadResult struct {
	TaskID string `json:"task_id"`
}

// decodeList decodes a response that is either a JSON array of T or a
// single T object.
func decodeList[T any](response *Response) ([]T, error) {
	body := bytes.TrimSpace(response.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	if body[0] == '{' {
		var item T
		if err := response.Decode(&item); err != nil {
			return nil, err
		}
		return []T{item}, nil
	}
	var items []T
	if err := response.Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}
