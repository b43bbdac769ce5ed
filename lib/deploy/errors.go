// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"errors"
	"fmt"
)

// Step names a phase of a deployment.
type Step string

const (
	StepValidate  Step = "validate"
	StepConfigure Step = "configure"
	StepRegister  Step = "register"
	StepAddress   Step = "address"
	StepBundle    Step = "bundle"
	StepUpload    Step = "upload"
	StepStream    Step = "stream"
)

// ErrTaskFailed is wrapped by the stream error when the server reports
// the deployment task as failed.
var ErrTaskFailed = errors.New("deployment task failed")

// DeployFailureError is returned by Deploy and by a Stream that ended
// badly.
type DeployFailureError struct {
	Step Step
	Err  error
}

func (e *DeployFailureError) Error() string {
	return fmt.Sprintf("deploy failed during %s: %v", e.Step, e.Err)
}

func (e *DeployFailureError) Unwrap() error { return e.Err }

func fail(step Step, err error) error {
	return &DeployFailureError{Step: step, Err: err}
}
