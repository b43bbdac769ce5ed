// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListPipelines returns the pipelines served by a deployment.
func (s *Session) ListPipelines(ctx context.Context, gitSHA string) ([]Pipeline, error) {
	response, err := s.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "pipelines",
		Query:  url.Values{"git_sha": {gitSHA}},
	})
	if err != nil {
		return nil, err
	}
	return decodeList[Pipeline](response)
}
