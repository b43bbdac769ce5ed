// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package api is the client side of the inferex HTTP API.
//
// A [Session] is bound to one base URL and one bearer token. Every call
// goes through [Session.Do], which sets the standard headers, retries
// transient server statuses with capped exponential backoff, and on a
// 401 logs in once from the configured credentials and replays the
// request with the new token. Non-success responses come back as
// [*TransportError] carrying the status code and the server's detail
// message.
//
// Resource calls (projects, deployments, pipelines, login) are thin
// typed wrappers over Do:
//
//	session, err := api.NewSession(api.Config{BaseURL: "https://api.inferex.com", Token: token})
//	project, err := session.CreateProject(ctx, "sentiment", "")
//	status, err := session.DeploymentStatus(ctx, taskID)
//
// Request bodies implement [Body]. [FileUpload] streams a file as a
// multipart form with a known Content-Length and reports upload
// progress through [Request.Progress].
package api
