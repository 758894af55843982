package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateFailureError(t *testing.T) {
	err := &GateFailureError{
		Message: "2 of 10 results scored below accuracy=0.8000",
	}

	assert.Equal(t, "2 of 10 results scored below accuracy=0.8000", err.Error())
}

func TestErrorTypeDetection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"GateFailureError", &GateFailureError{Message: "gate"}, true},
		{"regular error", errors.New("config error"), false},
		{"wrapped GateFailureError", fmt.Errorf("run: %w", &GateFailureError{Message: "gate"}), true},
		{"joined GateFailureError", errors.Join(&GateFailureError{Message: "gate"}, errors.New("context")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gateErr *GateFailureError
			assert.Equal(t, tt.want, errors.As(tt.err, &gateErr))
		})
	}
}

func TestRootCommand_Version(t *testing.T) {
	out, err := runRoot(t, "--version")
	assert.NoError(t, err)
	assert.Contains(t, out, "stacker version dev")
}

func TestAlgorithmsCommand(t *testing.T) {
	out, err := runRoot(t, "algorithms")
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "Algorithm"))
	assert.Contains(t, out, "LOGR       yes             -")
	assert.Contains(t, out, "RIDGE      -               yes")
	assert.Contains(t, out, "KNN        yes             yes")
}
