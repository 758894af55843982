// Package results writes per-alias artifact vectors to dated delimited files
// under <base dir>/<project>/.
package results

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/spboyer/stacker/internal/models"
)

// Artifact kinds, used as the file name prefix.
const (
	KindProbabilities = "probas"
	KindPredictions   = "preds"
)

const dateLayout = "010206"

// Writer serializes one artifact vector per call as a single delimited line.
type Writer struct {
	BaseDir        string
	Project        string
	Extension      string
	FieldSeparator string
	// Compress gzips the output and appends .gz to the file name.
	Compress bool

	now func() time.Time
}

// NewWriter returns a Writer for project using the record's output specs.
// Empty extension and field separator default to "csv" and ",".
func NewWriter(specs models.Specs, compress bool) *Writer {
	w := &Writer{
		BaseDir:        specs.BaseDir,
		Project:        specs.Project,
		Extension:      specs.Extension,
		FieldSeparator: specs.FieldSeparator,
		Compress:       compress,
	}
	if w.Extension == "" {
		w.Extension = "csv"
	}
	if w.FieldSeparator == "" {
		w.FieldSeparator = ","
	}
	return w
}

// Path returns the file an artifact of kind is written to today.
func (w *Writer) Path(kind string) string {
	now := time.Now
	if w.now != nil {
		now = w.now
	}
	name := fmt.Sprintf("%s_%s.%s", kind, now().Format(dateLayout), w.Extension)
	if w.Compress {
		name += ".gz"
	}
	return filepath.Join(w.BaseDir, w.Project, name)
}

// Save writes the positive-class probabilities of alias on partition p and
// returns the file path. It is a no-op for regression records, which carry
// no probabilities.
func (w *Writer) Save(rec *models.Record, alias string, p models.Partition) (string, error) {
	if !rec.IsClassification() {
		return "", nil
	}
	values, ok := rec.Probability(alias, p)
	if !ok {
		return "", &models.MissingArtifactError{Algorithm: alias, Partition: p, Artifact: "probabilities"}
	}
	return w.write(KindProbabilities, values)
}

// SavePredictions writes the predictions of alias on partition p for either
// task kind and returns the file path.
func (w *Writer) SavePredictions(rec *models.Record, alias string, p models.Partition) (string, error) {
	values, ok := rec.Prediction(alias, p)
	if !ok {
		return "", &models.MissingArtifactError{Algorithm: alias, Partition: p, Artifact: "predictions"}
	}
	return w.write(KindPredictions, values)
}

func (w *Writer) write(kind string, values []float64) (string, error) {
	path := w.Path(kind)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var out io.Writer = f
	var zw *gzip.Writer
	if w.Compress {
		zw = gzip.NewWriter(f)
		out = zw
	}
	if err := WriteLine(out, values, w.FieldSeparator); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return "", fmt.Errorf("compressing %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

// WriteLine writes values as one sep-delimited line in %.18e notation
// terminated by a newline.
func WriteLine(dst io.Writer, values []float64, sep string) error {
	bw := bufio.NewWriter(dst)
	var buf []byte
	for i, v := range values {
		if i > 0 {
			if _, err := bw.WriteString(sep); err != nil {
				return err
			}
		}
		buf = strconv.AppendFloat(buf[:0], v, 'e', 18, 64)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}
