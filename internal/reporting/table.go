package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/stacker/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultPrinter formats numbers in report tables.
var DefaultPrinter = message.NewPrinter(language.English)

// TableOptions controls WriteMetricTable.
type TableOptions struct {
	Printer *message.Printer
	// Highlight marks the best value of each column with '*'.
	Highlight bool
}

// WriteMetricTable writes one row per base algorithm and alias of rec with
// the scalar metrics stored for partition p. It writes nothing if no metrics
// exist for the partition.
func WriteMetricTable(w io.Writer, rec *models.Record, p models.Partition, opts TableOptions) error {
	printer := opts.Printer
	if printer == nil {
		printer = DefaultPrinter
	}

	var columns []models.MetricName
	for _, m := range models.Battery(rec.Task) {
		if m != models.MetricConfusionMatrix {
			columns = append(columns, m)
		}
	}
	ids := append(append([]string(nil), rec.Algorithms...), rec.Aliases()...)

	cells := make([][]string, 0, len(ids))
	values := make([][]*float64, 0, len(ids))
	for _, id := range ids {
		row := []string{id}
		vals := make([]*float64, len(columns))
		found := false
		for j, m := range columns {
			v, ok := rec.Metric(id, p, m)
			if !ok {
				row = append(row, "-")
				continue
			}
			f := v.Float()
			vals[j] = &f
			row = append(row, printer.Sprintf("%.4f", f))
			found = true
		}
		if found {
			cells = append(cells, row)
			values = append(values, vals)
		}
	}
	if len(cells) == 0 {
		return nil
	}

	if opts.Highlight {
		for j, m := range columns {
			best := -1
			for i := range values {
				if values[i][j] == nil {
					continue
				}
				if best < 0 || better(m, *values[i][j], *values[best][j]) {
					best = i
				}
			}
			if best >= 0 {
				cells[best][j+1] += "*"
			}
		}
	}

	header := []string{"Algorithm"}
	for _, m := range columns {
		header = append(header, string(m))
	}
	widths := make([]int, len(header))
	for _, row := range append([][]string{header}, cells...) {
		for j, c := range row {
			widths[j] = max(widths[j], runewidth.StringWidth(c))
		}
	}

	if _, err := fmt.Fprintf(w, "Metrics (%s, %s)\n", rec.Name, p); err != nil {
		return err
	}
	if err := writeRow(w, header, widths); err != nil {
		return err
	}
	rule := make([]string, len(widths))
	for j, width := range widths {
		rule[j] = strings.Repeat("─", width)
	}
	if err := writeRow(w, rule, widths); err != nil {
		return err
	}
	for _, row := range cells {
		if err := writeRow(w, row, widths); err != nil {
			return err
		}
	}
	return nil
}

func better(m models.MetricName, a, b float64) bool {
	if m.LowerIsBetter() {
		return a < b
	}
	return a > b
}

func writeRow(w io.Writer, row []string, widths []int) error {
	padded := make([]string, len(row))
	for j, c := range row {
		padded[j] = padRight(c, widths[j])
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(padded, "  "), " "))
	return err
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// FormatConfusionMatrix renders the stored confusion matrix of algorithm on
// partition p, or "" when none is stored.
func FormatConfusionMatrix(rec *models.Record, algorithm string, p models.Partition) string {
	v, ok := rec.Metric(algorithm, p, models.MetricConfusionMatrix)
	if !ok || !v.IsMatrix() {
		return ""
	}
	cm := v.Dense()
	r, c := cm.Dims()

	var b strings.Builder
	fmt.Fprintf(&b, "Confusion matrix (%s, %s): rows = true, columns = predicted\n", algorithm, p)
	width := 1
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			width = max(width, len(DefaultPrinter.Sprintf("%d", int(cm.At(i, j)))))
		}
	}
	for i := 0; i < r; i++ {
		b.WriteString(" ")
		for j := 0; j < c; j++ {
			fmt.Fprintf(&b, " %*s", width, DefaultPrinter.Sprintf("%d", int(cm.At(i, j))))
		}
		b.WriteString("\n")
	}
	return b.String()
}
