package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Run completed and every gated metric passed
	ExitGateFailed = 1 // One or more algorithms missed the --min-score gate
	ExitError      = 2 // Configuration or runtime error
)

// GateFailureError indicates that the run completed, but one or more
// algorithms or aliases missed the metric threshold.
type GateFailureError struct {
	Message string
}

func (e *GateFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var gateErr *GateFailureError
		if errors.As(err, &gateErr) {
			os.Exit(ExitGateFailed)
		}

		os.Exit(ExitError)
	}
}
