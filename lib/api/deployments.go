// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// UploadField is the multipart form field that carries the bundle.
const UploadField = "file"

// Upload describes a deployment bundle upload.
type Upload struct {
	ProjectName string
	GitSHA      string

	// Stream asks the server to run the deployment as a task whose
	// progress can be polled with DeploymentStatus.
	Stream bool

	// ArchivePath is the bundle on disk and ContentType its media type
	// ("application/x-xz").
	ArchivePath string
	ContentType string

	// Token overrides the session token for this call.
	Token string

	// Progress receives upload byte counts.
	Progress func(sent, total int64)
}

// UploadDeployment sends a bundle. The raw response is returned so a
// caller that did not ask for streaming can show it as-is; decode an
// [UploadResult] from it to get the task id.
func (s *Session) UploadDeployment(ctx context.Context, upload Upload) (*Response, error) {
	body, err := NewFileUpload(UploadField, upload.ArchivePath, upload.ContentType)
	if err != nil {
		return nil, err
	}
	return s.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "deployments",
		Query: url.Values{
			"project_name":   {upload.ProjectName},
			"git_commit_sha": {upload.GitSHA},
			"stream":         {strconv.FormatBool(upload.Stream)},
		},
		Body:     body,
		Token:    upload.Token,
		Progress: upload.Progress,
	})
}

// DeploymentStatus fetches the current state of a deployment task.
func (s *Session) DeploymentStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	response, err := s.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "deployments/status",
		Query:  url.Values{"task_id": {taskID}},
	})
	if err != nil {
		return nil, err
	}
	var status TaskStatus
	if err := response.Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// DeploymentFilter narrows ListDeployments. Empty fields match
// everything.
type DeploymentFilter struct {
	GitSHA      string
	ProjectName string
}

func (f DeploymentFilter) query() url.Values {
	query := url.Values{}
	if f.GitSHA != "" {
		query.Set("git_sha", f.GitSHA)
	}
	if f.ProjectName != "" {
		query.Set("project_name", f.ProjectName)
	}
	return query
}

// ListDeployments returns the deployments matching filter.
func (s *Session) ListDeployments(ctx context.Context, filter DeploymentFilter) ([]Deployment, error) {
	response, err := s.Do(ctx, Request{Method: http.MethodGet, Path: "deployments", Query: filter.query()})
	if err != nil {
		return nil, err
	}
	return decodeList[Deployment](response)
}

// DeleteDeployment deletes the deployment with the given identifier.
func (s *Session) DeleteDeployment(ctx context.Context, gitSHA string) ([]Deployment, error) {
	response, err := s.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "deployments",
		Query:  url.Values{"git_sha": {gitSHA}},
	})
	if err != nil {
		return nil, err
	}
	return decodeList[Deployment](response)
}
