// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/inferex/inferex/lib/api"
	"github.com/inferex/inferex/lib/bundle"
	"github.com/inferex/inferex/lib/contenthash"
	"github.com/inferex/inferex/lib/ignore"
	"github.com/inferex/inferex/lib/project"
	"github.com/inferex/inferex/lib/validate"
)

// Server is the part of the API a deployment talks to.
// [*api.Session] satisfies it.
type Server interface {
	StatusSource
	CreateProject(ctx context.Context, name, token string) (*api.Project, error)
	UploadDeployment(ctx context.Context, upload api.Upload) (*api.Response, error)
}

// Config holds the parameters for creating an Orchestrator. Only
// Server is required; the other components default to their
// packages' defaults sharing Logger.
type Config struct {
	Server    Server
	Validator *validate.Validator
	Addresser *contenthash.Addresser
	Bundler   *bundle.Bundler
	Poller    *Poller
	Logger    *slog.Logger
}

// Orchestrator runs deployments.
type Orchestrator struct {
	server    Server
	validator *validate.Validator
	addresser *contenthash.Addresser
	bundler   *bundle.Bundler
	poller    *Poller
	logger    *slog.Logger
}

// New creates an Orchestrator.
func New(config Config) *Orchestrator {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	orchestrator := &Orchestrator{
		server:    config.Server,
		validator: config.Validator,
		addresser: config.Addresser,
		bundler:   config.Bundler,
		poller:    config.Poller,
		logger:    logger,
	}
	if orchestrator.validator == nil {
		orchestrator.validator = validate.New(validate.Config{Logger: logger})
	}
	if orchestrator.addresser == nil {
		orchestrator.addresser = contenthash.New(contenthash.Config{Logger: logger})
	}
	if orchestrator.bundler == nil {
		orchestrator.bundler = bundle.New(bundle.Config{Logger: logger})
	}
	if orchestrator.poller == nil {
		orchestrator.poller = NewPoller(PollerConfig{Source: config.Server, Logger: logger})
	}
	return orchestrator
}

// Options describes one deployment.
type Options struct {
	// Dir is the project directory.
	Dir string

	// Token overrides the session token for registration and upload.
	Token string

	// Force appends a random suffix to the identifier so the server
	// treats an unchanged project as a new deployment.
	Force bool

	// Stream requests a task-backed deployment whose progress is
	// returned as a Stream.
	Stream bool

	// ProjectName overrides the name from inferex.yaml.
	ProjectName string

	// Hooks receive progress notifications. All are optional.
	Hooks Hooks
}

// Hooks are called synchronously as a deployment advances.
type Hooks struct {
	Validated  func(*validate.Report)
	Registered func(projectName string)
	Identified func(deploymentID string)
	Bundled    func(*bundle.Bundle)
	Upload     func(sent, total int64)
}

// Result is a completed deployment upload. Exactly one of Response and
// Stream is set.
type Result struct {
	ProjectName  string
	DeploymentID string
	Report       *validate.Report
	Bundle       *bundle.Bundle

	// Response is the raw upload response of a non-streaming deploy.
	Response *api.Response

	// Stream follows the server task of a streaming deploy.
	Stream *Stream
}

// Deploy validates, registers, addresses, bundles, and uploads the
// project in options.Dir. The temporary archive is always removed
// before Deploy returns. Errors are *DeployFailureError.
func (o *Orchestrator) Deploy(ctx context.Context, options Options) (*Result, error) {
	dir, err := filepath.Abs(options.Dir)
	if err != nil {
		return nil, fail(StepValidate, err)
	}
	o.logger.Info("deploying project", "dir", dir)

	if err := contenthash.CheckNonEmpty(dir); err != nil {
		return nil, fail(StepValidate, err)
	}
	rules, err := ignore.Resolve(dir, o.logger)
	if err != nil {
		return nil, fail(StepValidate, err)
	}
	report, err := o.validator.Validate(ctx, dir, rules)
	if err != nil {
		return nil, fail(StepValidate, err)
	}
	result := &Result{Report: report}
	if options.Hooks.Validated != nil {
		options.Hooks.Validated(report)
	}

	name, err := o.projectName(dir, options.ProjectName)
	if err != nil {
		return nil, fail(StepConfigure, err)
	}

	registered, err := o.server.CreateProject(ctx, name, options.Token)
	if err != nil {
		return nil, fail(StepRegister, err)
	}
	result.ProjectName = registered.Name
	if options.Hooks.Registered != nil {
		options.Hooks.Registered(result.ProjectName)
	}

	result.DeploymentID, err = o.addresser.Compute(ctx, dir, rules, options.Force)
	if err != nil {
		return nil, fail(StepAddress, err)
	}
	o.logger.Info("deployment identifier", "id", result.DeploymentID, "project", result.ProjectName)
	if options.Hooks.Identified != nil {
		options.Hooks.Identified(result.DeploymentID)
	}

	archivePath, cleanup, err := o.bundler.Scratch()
	defer cleanup()
	if err != nil {
		return nil, fail(StepBundle, err)
	}
	result.Bundle, err = o.bundler.Build(ctx, dir, rules, archivePath)
	if err != nil {
		return nil, fail(StepBundle, err)
	}
	if options.Hooks.Bundled != nil {
		options.Hooks.Bundled(result.Bundle)
	}

	response, err := o.server.UploadDeployment(ctx, api.Upload{
		ProjectName: result.ProjectName,
		GitSHA:      result.DeploymentID,
		Stream:      options.Stream,
		ArchivePath: archivePath,
		ContentType: o.bundler.Compression().ContentType(),
		Token:       options.Token,
		Progress:    options.Hooks.Upload,
	})
	if err != nil {
		return nil, fail(StepUpload, err)
	}

	if !options.Stream {
		result.Response = response
		return result, nil
	}

	var accepted api.UploadResult
	if err := response.Decode(&accepted); err != nil {
		return nil, fail(StepUpload, err)
	}
	if accepted.TaskID == "" {
		return nil, fail(StepUpload, errors.New("upload response has no task_id"))
	}
	result.Stream = o.poller.Poll(ctx, accepted.TaskID)
	return result, nil
}

// projectName resolves the name to register: the override, else the
// name in inferex.yaml, else the directory name.
func (o *Orchestrator) projectName(dir, override string) (string, error) {
	cfg, _, err := project.Load(dir)
	if err != nil {
		return "", err
	}
	configured := project.Name(dir, cfg)
	if override == "" {
		return configured, nil
	}
	if cfg != nil && configured != override {
		o.logger.Warn(fmt.Sprintf("Project name %q overrides %q from %s", override, configured, project.FileName))
	}
	return override, nil
}
