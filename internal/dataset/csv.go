// Package dataset loads numeric train/test frames from delimited files.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gonum.org/v1/gonum/mat"
)

// Frame is a numeric table split into a feature matrix and an optional label
// column.
type Frame struct {
	// Columns names the feature columns, in matrix column order.
	Columns  []string
	Features *mat.Dense
	// Labels is nil when the file has no target column.
	Labels []float64
}

// Rows returns the number of samples.
func (f *Frame) Rows() int {
	r, _ := f.Features.Dims()
	return r
}

// Options controls how a delimited file is parsed.
type Options struct {
	// Target is the label column. Empty means the file holds features only.
	Target string
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// LoadCSV reads a delimited file with a header row. Files ending in .gz are
// decompressed transparently.
func LoadCSV(path string, opts Options) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("csv: gzip %s: %w", path, err)
		}
		defer zr.Close() //nolint:errcheck
		r = zr
	}

	frame, err := ReadCSV(r, opts)
	if err != nil {
		return nil, fmt.Errorf("csv: %s: %w", path, err)
	}
	return frame, nil
}

// ReadCSV parses a header row followed by numeric records. The target column,
// when present, becomes Labels; every other column is a feature.
func ReadCSV(r io.Reader, opts Options) (*Frame, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file (no header row)")
	}
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	target := -1
	if opts.Target != "" {
		target = slices.Index(headers, opts.Target)
	}
	columns := make([]string, 0, len(headers))
	for j, h := range headers {
		if j != target {
			columns = append(columns, h)
		}
	}
	if len(columns) == 0 {
		return nil, errors.New("no feature columns")
	}

	var (
		data   []float64
		labels []float64
	)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %q is not numeric", line, headers[j], field)
			}
			if j == target {
				labels = append(labels, v)
			} else {
				data = append(data, v)
			}
		}
	}
	if len(data) == 0 {
		return nil, errors.New("no data rows")
	}

	return &Frame{
		Columns:  columns,
		Features: mat.NewDense(len(data)/len(columns), len(columns), data),
		Labels:   labels,
	}, nil
}

// Split is a train/test pair with matching feature columns.
type Split struct {
	Train *Frame
	Test  *Frame
}

// Load reads the train and test files. The train file must carry the target
// column; the test file may omit it when its labels are unknown.
func Load(trainPath, testPath string, opts Options) (*Split, error) {
	if opts.Target == "" {
		return nil, errors.New("dataset: a target column is required")
	}
	train, err := LoadCSV(trainPath, opts)
	if err != nil {
		return nil, err
	}
	if train.Labels == nil {
		return nil, fmt.Errorf("csv: %s: target column %q not found", trainPath, opts.Target)
	}
	test, err := LoadCSV(testPath, opts)
	if err != nil {
		return nil, err
	}
	if !slices.Equal(train.Columns, test.Columns) {
		return nil, fmt.Errorf("dataset: test features %v do not match train features %v", test.Columns, train.Columns)
	}
	return &Split{Train: train, Test: test}, nil
}
