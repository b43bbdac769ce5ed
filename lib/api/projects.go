// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"
	"net/url"
)

// CreateProject registers a project, or confirms it if it already
// exists, and returns the name the server settled on. A non-empty
// token overrides the session token for this call.
func (s *Session) CreateProject(ctx context.Context, name, token string) (*Project, error) {
	response, err := s.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "projects",
		Query:  url.Values{"project_name": {name}},
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	var project Project
	if err := response.Decode(&project); err != nil {
		return nil, err
	}
	if project.Name == "" {
		project.Name = name
	}
	return &project, nil
}

// ListProjects returns all projects, or only the named one when name
// is not empty.
func (s *Session) ListProjects(ctx context.Context, name string) ([]Project, error) {
	query := url.Values{}
	if name != "" {
		query.Set("project_name", name)
	}
	response, err := s.Do(ctx, Request{Method: http.MethodGet, Path: "projects", Query: query})
	if err != nil {
		return nil, err
	}
	return decodeList[Project](response)
}

// DeleteProject deletes a project and everything deployed under it.
func (s *Session) DeleteProject(ctx context.Context, name string) ([]Project, error) {
	response, err := s.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "projects",
		Query:  url.Values{"project_name": {name}},
	})
	if err != nil {
		return nil, err
	}
	return decodeList[Project](response)
}
