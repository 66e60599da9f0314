package models

import (
	"fmt"
)

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names.
const (
	StagePrepare     StageName = "prepare"
	StageRegister    StageName = "register"
	StageBuildServer StageName = "build_server"
	StageBuildClient StageName = "build_client"
	StagePost        StageName = "post"
)

// StageForTarget returns the stage that builds target.
func StageForTarget(t Target) StageName {
	if t == TargetClient {
		return StageBuildClient
	}
	return StageBuildServer
}

// StageErrorKind classifies the outcome of a stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"
	StageErrorCanceled StageErrorKind = "canceled"
)

// StageError records which stage failed and why.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }
