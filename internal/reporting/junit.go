package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/spboyer/stacker/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one partition of a model run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one algorithm or alias.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure marks an algorithm whose metric missed the threshold.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks an algorithm without the gated metric.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Gate is a pass/fail rule on one metric. Error metrics pass at or below the
// threshold; every other metric passes at or above it.
type Gate struct {
	Metric    models.MetricName
	Threshold float64
}

// Passes reports whether v satisfies the gate.
func (g Gate) Passes(v float64) bool {
	if g.Metric.LowerIsBetter() {
		return v <= g.Threshold
	}
	return v >= g.Threshold
}

// ConvertToJUnit reports every algorithm and alias of rec as a test case of
// one suite per partition, failing those whose metric misses the gate.
// Partitions without metrics are left out.
func ConvertToJUnit(rec *models.Record, gate Gate, elapsed time.Duration, now time.Time) *JUnitTestSuites {
	ids := append(append([]string(nil), rec.Algorithms...), rec.Aliases()...)
	out := &JUnitTestSuites{Time: elapsed.Seconds()}

	for _, p := range models.Partitions {
		suite := JUnitTestSuite{
			Name:      fmt.Sprintf("%s/%s", rec.Name, p),
			Time:      elapsed.Seconds(),
			Timestamp: now.Format(time.RFC3339),
			Properties: []JUnitProperty{
				{Name: "task", Value: rec.Task.String()},
				{Name: "metric", Value: string(gate.Metric)},
				{Name: "threshold", Value: fmt.Sprintf("%.4f", gate.Threshold)},
			},
		}
		scored := false
		for _, id := range ids {
			tc := JUnitTestCase{Name: id, Classname: rec.Name}
			v, ok := rec.Metric(id, p, gate.Metric)
			switch {
			case !ok:
				tc.Skipped = &JUnitSkipped{Message: fmt.Sprintf("no %s for %s", gate.Metric, p)}
				suite.Skipped++
			case !gate.Passes(v.Float()):
				scored = true
				tc.Failure = &JUnitFailure{
					Message: fmt.Sprintf("%s: %s=%.4f", id, gate.Metric, v.Float()),
					Type:    "ThresholdFailure",
					Body:    formatEntries(rec.MetricsFor(id, p)),
				}
				suite.Failures++
			default:
				scored = true
			}
			suite.TestCases = append(suite.TestCases, tc)
		}
		if !scored {
			continue
		}
		suite.Tests = len(suite.TestCases)
		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.TestSuites = append(out.TestSuites, suite)
	}
	return out
}

func formatEntries(entries []models.MetricEntry) string {
	var result string
	for _, e := range entries {
		result += fmt.Sprintf("%s=%s\n", e.Name, e.Value)
	}
	return result
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(suites *JUnitTestSuites, path string) error {
	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
