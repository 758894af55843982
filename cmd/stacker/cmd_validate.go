package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spboyer/stacker/internal/learners"
	"github.com/spboyer/stacker/internal/models"
	"github.com/spboyer/stacker/internal/projectconfig"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dir]",
		Short: "Check a .stacker.yaml without training",
		Long: `Validate the project configuration found from dir (default: the current
directory) against the config schema, then check that the model keys are
complete and that every listed algorithm supports the configured task.`,
		Args: cobra.MaximumNArgs(1),
		RunE: validateCommandE,
	}
}

func validateCommandE(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	w := cmd.OutOrStdout()

	cfg, err := projectconfig.Load(dir)
	if err != nil {
		var schemaErr *projectconfig.SchemaError
		if errors.As(err, &schemaErr) {
			fmt.Fprintf(w, "❌ Schema: %s\n", schemaErr.Path) //nolint:errcheck
			for _, p := range schemaErr.Problems {
				fmt.Fprintf(w, "   %s\n", p) //nolint:errcheck
			}
		}
		return err
	}
	if cfg.Path == "" {
		return fmt.Errorf("no %s found in %s or its parents", projectconfig.FileName, dir)
	}
	fmt.Fprintf(w, "✅ Schema: %s\n", cfg.Path) //nolint:errcheck

	problems := checkModel(cfg)
	for _, p := range problems {
		fmt.Fprintf(w, "❌ %s\n", p) //nolint:errcheck
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s has %d problem(s)", cfg.Path, len(problems))
	}
	fmt.Fprintf(w, "✅ Model: %s (%s)\n", cfg.Model.Project, cfg.Model.Algorithms) //nolint:errcheck
	return nil
}

// checkModel returns one line per problem with the model and data sections.
func checkModel(cfg *projectconfig.ProjectConfig) []string {
	var problems []string
	specs := cfg.Specs()
	if err := specs.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	task := models.Classification
	if specs.Regression {
		task = models.Regression
		if specs.NumFolds < 2 {
			problems = append(problems, "regression blending requires model.n_folds of at least 2")
		}
	}
	if algos, err := specs.AlgorithmList(); err != nil {
		problems = append(problems, err.Error())
	} else {
		for _, id := range algos {
			if _, err := learners.New(id, task); err != nil {
				problems = append(problems, err.Error())
			}
		}
	}

	if cfg.Data.Target == "" {
		problems = append(problems, "data.target is required")
	}
	for _, p := range []string{cfg.Data.Train, cfg.Data.Test} {
		path := cfg.Resolve(p)
		if _, err := os.Stat(path); err != nil {
			problems = append(problems, fmt.Sprintf("data file %s: %v", filepath.Base(path), errors.Unwrap(err)))
		}
	}
	return problems
}
