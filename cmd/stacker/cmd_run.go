package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spboyer/stacker/internal/dataset"
	"github.com/spboyer/stacker/internal/ensemble"
	"github.com/spboyer/stacker/internal/metrics"
	"github.com/spboyer/stacker/internal/models"
	"github.com/spboyer/stacker/internal/projectconfig"
	"github.com/spboyer/stacker/internal/reporting"
	"github.com/spboyer/stacker/internal/results"
	"github.com/spboyer/stacker/internal/spinner"
	"github.com/spboyer/stacker/internal/training"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	runProject    string
	runAlgorithms string
	runRegression bool
	runFolds      int
	runTrain      string
	runTest       string
	runTarget     string
	runOutputDir  string
	runWorkers    int
	runSets       []string
	runSave       []string
	runSavePart   string
	runSeed       uint64
	runVerbose    bool
	runJUnit      string
	runMinScore   float64
	runGateMetric string
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Train the base algorithms, then select and blend them",
		Long: `Train every algorithm listed in model.algorithms, score them on the train
and test partitions, promote the best one to BEST and fit a meta-learner over
their outputs as BLEND.

Configuration is read from .stacker.yaml, searched upward from dir (default:
the current directory). Flags override the file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&runProject, "project", "p", "", "Project name (overrides model.project)")
	cmd.Flags().StringVarP(&runAlgorithms, "algorithms", "a", "", "Delimited algorithm list (overrides model.algorithms)")
	cmd.Flags().BoolVar(&runRegression, "regression", false, "Treat the target as continuous (overrides model.regression)")
	cmd.Flags().IntVar(&runFolds, "folds", 0, "Cross-validation fold count (overrides model.n_folds)")
	cmd.Flags().StringVar(&runTrain, "train", "", "Train CSV file (overrides data.train)")
	cmd.Flags().StringVar(&runTest, "test", "", "Test CSV file (overrides data.test)")
	cmd.Flags().StringVar(&runTarget, "target", "", "Target column name (overrides data.target)")
	cmd.Flags().StringVarP(&runOutputDir, "output-dir", "o", "", "Base output directory (overrides output.base_dir)")
	cmd.Flags().IntVar(&runWorkers, "workers", 0, "Concurrent metric workers (overrides metrics.workers)")
	cmd.Flags().StringArrayVar(&runSets, "set", nil, "Override a model key as key=value (can be repeated)")
	cmd.Flags().StringArrayVar(&runSave, "save", []string{models.AliasBlend}, "Alias whose outputs are written (can be repeated)")
	cmd.Flags().StringVar(&runSavePart, "save-partition", string(models.PartitionTest), "Partition whose outputs --save writes: train or test")
	cmd.Flags().Uint64Var(&runSeed, "seed", 1, "Seed for the bootstrap confidence intervals")
	cmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Also print confusion matrices")
	cmd.Flags().StringVar(&runJUnit, "junit", "", "Write a JUnit XML report of the gate to this file")
	cmd.Flags().Float64Var(&runMinScore, "min-score", 0, "Fail when an algorithm scores below this on the gate metric")
	cmd.Flags().StringVar(&runGateMetric, "gate-metric", "", "Metric checked by --min-score (default: accuracy or r2)")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	cfg, err := projectconfig.Load(dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}

	savePartition, err := models.ParsePartition(runSavePart)
	if err != nil {
		return fmt.Errorf("--save-partition: %w", err)
	}

	specs := cfg.Specs()
	if len(runSets) > 0 {
		raw, err := parseSets(runSets)
		if err != nil {
			return err
		}
		if specs, err = specs.With(raw); err != nil {
			return err
		}
	}

	rec, err := models.NewRegistry().Create(specs)
	if err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}

	comma, err := delimiter(cfg.Data.Delimiter)
	if err != nil {
		return err
	}
	split, err := dataset.Load(cfg.Resolve(cfg.Data.Train), cfg.Resolve(cfg.Data.Test),
		dataset.Options{Target: cfg.Data.Target, Comma: comma})
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	rec.SetData(split.Train.Features, split.Test.Features, split.Train.Labels, split.Test.Labels)
	slog.Info("Loaded data", "model", rec.Name, "task", rec.Task,
		"train_rows", split.Train.Rows(), "test_rows", split.Test.Rows(), "features", len(split.Train.Columns))

	start := time.Now()
	ctx := cmd.Context()

	trainOpts := []training.Option{training.WithSeed(runSeed)}
	stopSpinner := func() {}
	if isTerminal(os.Stderr) {
		sp := spinner.Start(os.Stderr, "Training")
		stopSpinner = sp.Stop
		trainOpts = append(trainOpts, training.WithProgress(func(algo string, n, total int) {
			sp.Update(fmt.Sprintf("Training %s (%d/%d)", algo, n, total))
		}))
	}
	trained, err := training.New(trainOpts...).Fit(ctx, rec)
	stopSpinner()
	if err != nil {
		return err
	}

	engineOpts := []metrics.Option{metrics.WithWorkers(cfg.Metrics.Workers)}
	if cfg.ProbabilityAUC() {
		engineOpts = append(engineOpts, metrics.WithProbabilityAUC())
	}
	engine := metrics.NewEngine(engineOpts...)
	if err := computeAll(cmd, engine, rec); err != nil {
		return err
	}

	best, err := ensemble.SelectBest(rec)
	if err != nil {
		if !errors.Is(err, models.ErrNoBestModel) {
			return err
		}
		slog.Warn("No algorithm scored above zero; BEST is not set", "model", rec.Name)
	}
	if err := ensemble.Blend(rec); err != nil {
		return err
	}
	if err := computeAll(cmd, engine, rec); err != nil {
		return err
	}
	elapsed := time.Since(start)

	files, err := saveOutputs(rec, results.NewWriter(specs, cfg.Compress()), savePartition, cfg.WritePredictions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := reporting.TableOptions{Highlight: isTerminal(out)}
	for _, p := range models.Partitions {
		if err := reporting.WriteMetricTable(out, rec, p, opts); err != nil {
			return err
		}
		fmt.Fprintln(out) //nolint:errcheck
	}
	if runVerbose && rec.IsClassification() {
		printConfusionMatrices(cmd, rec)
	}
	fmt.Fprint(out, reporting.FormatSummaryReport(reporting.Summary{ //nolint:errcheck
		Record:   rec,
		Best:     best,
		Training: trained,
		Files:    files,
	}))

	return checkGate(cmd, rec, elapsed)
}

// applyRunFlags overlays the flags the user set onto cfg.
func applyRunFlags(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) error {
	flags := cmd.Flags()
	if flags.Changed("project") {
		cfg.Model.Project = runProject
	}
	if flags.Changed("algorithms") {
		cfg.Model.Algorithms = runAlgorithms
	}
	if flags.Changed("regression") {
		cfg.Model.Regression = &runRegression
	}
	if flags.Changed("folds") {
		cfg.Model.NumFolds = runFolds
	}
	if flags.Changed("target") {
		cfg.Data.Target = runTarget
	}
	if flags.Changed("workers") {
		if runWorkers < 1 {
			return fmt.Errorf("--workers must be at least 1, got %d", runWorkers)
		}
		cfg.Metrics.Workers = runWorkers
	}

	// Paths given on the command line are relative to the working directory,
	// not to the config file.
	for _, f := range []struct {
		name string
		val  string
		dst  *string
	}{
		{"train", runTrain, &cfg.Data.Train},
		{"test", runTest, &cfg.Data.Test},
		{"output-dir", runOutputDir, &cfg.Output.BaseDir},
	} {
		if !flags.Changed(f.name) {
			continue
		}
		abs, err := filepath.Abs(f.val)
		if err != nil {
			return fmt.Errorf("resolving --%s: %w", f.name, err)
		}
		*f.dst = abs
	}
	return nil
}

// parseSets turns key=value pairs into a map for models.Specs.With.
func parseSets(pairs []string) (map[string]any, error) {
	raw := make(map[string]any, len(pairs))
	for _, kv := range pairs {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", kv)
		}
		raw[key] = value
	}
	return raw, nil
}

func delimiter(s string) (rune, error) {
	if s == "" {
		return ',', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, &models.ConfigError{Key: "data.delimiter", Reason: fmt.Sprintf("must be a single character, got %q", s)}
	}
	return r, nil
}

func computeAll(cmd *cobra.Command, engine *metrics.Engine, rec *models.Record) error {
	for _, p := range models.Partitions {
		if _, err := engine.Compute(cmd.Context(), rec, p); err != nil {
			return err
		}
	}
	return nil
}

// saveOutputs writes the outputs of every --save alias on partition p and
// returns the paths written.
func saveOutputs(rec *models.Record, w *results.Writer, p models.Partition, predictions bool) ([]string, error) {
	var files []string
	aliases := rec.Aliases()
	for _, alias := range runSave {
		alias = strings.ToUpper(strings.TrimSpace(alias))
		if !models.IsAlias(alias) {
			return nil, fmt.Errorf("--save %q: must be %s or %s", alias, models.AliasBest, models.AliasBlend)
		}
		if !slices.Contains(aliases, alias) {
			slog.Warn("Alias is not populated; nothing to save", "model", rec.Name, "alias", alias)
			continue
		}
		path, err := w.Save(rec, alias, p)
		if err != nil {
			return nil, fmt.Errorf("saving %s: %w", alias, err)
		}
		if path != "" {
			files = append(files, path)
		}
		if predictions {
			path, err := w.SavePredictions(rec, alias, p)
			if err != nil {
				return nil, fmt.Errorf("saving %s predictions: %w", alias, err)
			}
			files = append(files, path)
		}
	}
	return files, nil
}

func printConfusionMatrices(cmd *cobra.Command, rec *models.Record) {
	out := cmd.OutOrStdout()
	ids := append(append([]string(nil), rec.Algorithms...), rec.Aliases()...)
	for _, p := range models.Partitions {
		for _, id := range ids {
			if cm := reporting.FormatConfusionMatrix(rec, id, p); cm != "" {
				fmt.Fprintln(out, cm) //nolint:errcheck
			}
		}
	}
}

// checkGate writes the JUnit report when requested and returns a
// GateFailureError when --min-score was given and something missed it.
func checkGate(cmd *cobra.Command, rec *models.Record, elapsed time.Duration) error {
	gated := cmd.Flags().Changed("min-score")
	if !gated && runJUnit == "" {
		return nil
	}

	metric := models.MetricName(runGateMetric)
	if metric == "" {
		metric = models.MetricAccuracy
		if !rec.IsClassification() {
			metric = models.MetricR2
		}
	}
	if metric == models.MetricConfusionMatrix || !slices.Contains(models.Battery(rec.Task), metric) {
		return fmt.Errorf("--gate-metric %q is not computed for %s", metric, rec.Task)
	}

	suites := reporting.ConvertToJUnit(rec, reporting.Gate{Metric: metric, Threshold: runMinScore}, elapsed, time.Now())
	if runJUnit != "" {
		if err := reporting.WriteJUnitXML(suites, runJUnit); err != nil {
			return fmt.Errorf("failed to write JUnit report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "JUnit report written to: %s\n", runJUnit) //nolint:errcheck
	}
	if gated && suites.Failures > 0 {
		return &GateFailureError{
			Message: fmt.Sprintf("%d of %d results scored below %s=%.4f", suites.Failures, suites.Tests, metric, runMinScore),
		}
	}
	return nil
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
