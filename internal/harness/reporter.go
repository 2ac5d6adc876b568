package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// consoleStyles holds the lipgloss styles for the console reporter. When
// the output is not a terminal all styles are zero and render plain text.
type consoleStyles struct {
	pass   lipgloss.Style
	fail   lipgloss.Style
	skip   lipgloss.Style
	errs   lipgloss.Style
	header lipgloss.Style
	faint  lipgloss.Style
}

func newConsoleStyles(colored bool) consoleStyles {
	if !colored {
		return consoleStyles{}
	}
	return consoleStyles{
		pass:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		skip:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		errs:   lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		header: lipgloss.NewStyle().Bold(true),
		faint:  lipgloss.NewStyle().Faint(true),
	}
}

// consoleReporter is the default human-oriented reporter.
type consoleReporter struct {
	out        io.Writer
	verbose    bool
	reportPath string
	styles     consoleStyles
}

// NewConsoleReporter creates the default reporter. Color is enabled only
// when out is a terminal. reportPath, when non-empty, is a directory a
// detailed JSON report is saved into after the run.
func NewConsoleReporter(out io.Writer, verbose bool, reportPath string) Reporter {
	colored := false
	if f, ok := out.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &consoleReporter{
		out:        out,
		verbose:    verbose,
		reportPath: reportPath,
		styles:     newConsoleStyles(colored),
	}
}

func (r *consoleReporter) ReportStart(total int) {
	fmt.Fprintln(r.out, r.styles.header.Render(fmt.Sprintf("Running %d tests", total)))
}

func (r *consoleReporter) ReportTestStart(t *TestDescriptor) {
	if r.verbose {
		fmt.Fprintf(r.out, "%s %s\n", r.styles.faint.Render("START"), t.QualifiedName())
		if t.Description != "" {
			fmt.Fprintf(r.out, "      %s\n", r.styles.faint.Render(t.Description))
		}
	}
}

func (r *consoleReporter) ReportTestResult(rec TestRecord) {
	label := r.resultLabel(rec.Result)
	fmt.Fprintf(r.out, "%s %s.%s (%s)\n", label, rec.Module, rec.Name, rec.Duration.Round(time.Millisecond))
	if rec.Error != "" && (r.verbose || rec.Result != ResultSkipped) {
		fmt.Fprintf(r.out, "      %s\n", rec.Error)
	}
}

func (r *consoleReporter) ReportSuiteResult(result ExecutionResult, outcome Outcome, elapsed time.Duration) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.styles.header.Render("Suite complete"))
	fmt.Fprintf(r.out, "  ran:      %d\n", result.Ran)
	fmt.Fprintf(r.out, "  failures: %d\n", result.Failures)
	fmt.Fprintf(r.out, "  errors:   %d\n", result.Errors)
	fmt.Fprintf(r.out, "  skipped:  %d\n", result.Skipped)
	fmt.Fprintf(r.out, "  elapsed:  %s\n", elapsed.Round(time.Millisecond))

	if outcome == OutcomeSuccess {
		fmt.Fprintln(r.out, r.styles.pass.Render(outcome.String()))
	} else {
		fmt.Fprintln(r.out, r.styles.fail.Render(outcome.String()))
	}

	if r.reportPath != "" {
		if path, err := saveDetailedReport(r.reportPath, result, outcome); err != nil {
			fmt.Fprintf(r.out, "failed to save detailed report: %v\n", err)
		} else {
			fmt.Fprintf(r.out, "detailed report saved to %s\n", path)
		}
	}
}

func (r *consoleReporter) resultLabel(res TestResult) string {
	switch res {
	case ResultPassed:
		return r.styles.pass.Render("PASS ")
	case ResultFailed:
		return r.styles.fail.Render("FAIL ")
	case ResultSkipped:
		return r.styles.skip.Render("SKIP ")
	case ResultError:
		return r.styles.errs.Render("ERROR")
	default:
		return string(res)
	}
}

// saveDetailedReport writes a timestamped JSON summary into dir.
func saveDetailedReport(dir string, result ExecutionResult, outcome Outcome) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("ofprobe-report-%s.json", time.Now().Format("20060102-150405")))
	payload := struct {
		Result  ExecutionResult `json:"result"`
		Outcome string          `json:"outcome"`
	}{result, outcome.String()}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// NewQuietReporter creates a reporter that only surfaces failures and the
// final summary, for CI logs.
func NewQuietReporter(out io.Writer) Reporter {
	return &quietReporter{out: out}
}

type quietReporter struct {
	out io.Writer
}

func (r *quietReporter) ReportStart(total int) {}

func (r *quietReporter) ReportTestStart(t *TestDescriptor) {}

func (r *quietReporter) ReportTestResult(rec TestRecord) {
	if rec.Result == ResultFailed || rec.Result == ResultError {
		fmt.Fprintf(r.out, "%s %s.%s: %s\n", rec.Result, rec.Module, rec.Name, rec.Error)
	}
}

func (r *quietReporter) ReportSuiteResult(result ExecutionResult, outcome Outcome, elapsed time.Duration) {
	fmt.Fprintf(r.out, "%s: %d ran, %d failures, %d errors, %d skipped (%s)\n",
		outcome, result.Ran, result.Failures, result.Errors, result.Skipped,
		elapsed.Round(time.Millisecond))
}

// NewJSONReporter creates a reporter that emits one JSON document with all
// records after the run, for machine consumption.
func NewJSONReporter(out io.Writer) Reporter {
	return &jsonReporter{out: out}
}

type jsonReporter struct {
	out     io.Writer
	records []TestRecord
}

func (r *jsonReporter) ReportStart(total int) {
	r.records = make([]TestRecord, 0, total)
}

func (r *jsonReporter) ReportTestStart(t *TestDescriptor) {}

func (r *jsonReporter) ReportTestResult(rec TestRecord) {
	r.records = append(r.records, rec)
}

func (r *jsonReporter) ReportSuiteResult(result ExecutionResult, outcome Outcome, elapsed time.Duration) {
	payload := struct {
		Tests   []TestRecord    `json:"tests"`
		Result  ExecutionResult `json:"result"`
		Outcome string          `json:"outcome"`
		Elapsed string          `json:"elapsed"`
	}{r.records, result, outcome.String(), elapsed.String()}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(r.out, `{"error": %q}`+"\n", err.Error())
		return
	}
	fmt.Fprintln(r.out, string(data))
}
