package models

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateProject is returned when a record already exists for a project.
	ErrDuplicateProject = errors.New("model already exists")

	// ErrNoBestModel is returned when no algorithm scores above the selection floor.
	ErrNoBestModel = errors.New("no best model selected")

	// ErrRecordNotFound is returned by Registry.Get for unknown projects.
	ErrRecordNotFound = errors.New("model not found")
)

// ConfigError reports a missing or invalid model spec key.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("model specs must include the key: %s", e.Key)
	}
	return fmt.Sprintf("invalid model spec %s: %s", e.Key, e.Reason)
}

// MissingArtifactError reports an artifact that an earlier stage should have
// produced. It signals an out-of-order invocation by the caller.
type MissingArtifactError struct {
	Algorithm string
	Partition Partition
	Artifact  string
}

func (e *MissingArtifactError) Error() string {
	switch {
	case e.Algorithm == "":
		return fmt.Sprintf("missing %s", e.Artifact)
	case e.Partition == "":
		return fmt.Sprintf("missing %s for algorithm %s", e.Artifact, e.Algorithm)
	default:
		return fmt.Sprintf("missing %s for algorithm %s (partition %s)", e.Artifact, e.Algorithm, e.Partition)
	}
}
