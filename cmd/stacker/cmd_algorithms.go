package main

import (
	"fmt"

	"github.com/spboyer/stacker/internal/learners"
	"github.com/spboyer/stacker/internal/models"
	"github.com/spf13/cobra"
)

func newAlgorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the built-in base algorithms",
		Long: `List the algorithm ids accepted in model.algorithms and the task kinds
each one supports.`,
		Args: cobra.NoArgs,
		RunE: algorithmsCommandE,
	}
}

func algorithmsCommandE(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-15s %s\n", "Algorithm", "Classification", "Regression") //nolint:errcheck
	for _, id := range learners.Algorithms() {
		fmt.Fprintf(out, "%-10s %-15s %s\n", id, supports(id, models.Classification), supports(id, models.Regression)) //nolint:errcheck
	}
	return nil
}

func supports(id string, task models.TaskKind) string {
	if _, err := learners.New(id, task); err != nil {
		return "-"
	}
	return "yes"
}
