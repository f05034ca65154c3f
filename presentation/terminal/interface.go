package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ui_automation/application/scenario"
	"ui_automation/domain/entities"
)

// RunFunc executes the chosen scenarios
type RunFunc func(ctx context.Context, scenarios []scenario.Scenario) (entities.RunReport, error)

type TerminalInterface struct {
	registry *scenario.Registry
	reader   *bufio.Reader
	out      io.Writer
}

// NewTerminalInterface - creates the interactive scenario prompt
func NewTerminalInterface(registry *scenario.Registry, in io.Reader, out io.Writer) *TerminalInterface {
	return &TerminalInterface{
		registry: registry,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run - prompts for scenarios and runs them until the user quits or input ends
func (t *TerminalInterface) Run(ctx context.Context, run RunFunc) error {
	fmt.Fprintln(t.out, "UI Automation")
	fmt.Fprintln(t.out, "=============")
	t.printScenarios()
	fmt.Fprintln(t.out, "Enter scenario numbers or names, 'all' (or empty) for everything, 'quit' to exit")
	fmt.Fprintln(t.out)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(t.out, "> ")
		input, err := t.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil

		input = strings.TrimSpace(input)
		if eof && input == "" {
			fmt.Fprintln(t.out)
			return nil
		}
		if input == "quit" || input == "exit" || input == "q" {
			fmt.Fprintln(t.out, "Bye!")
			return nil
		}
		if input == "list" {
			t.printScenarios()
			continue
		}

		scenarios, selErr := t.Parse(input)
		if selErr != nil {
			fmt.Fprintf(t.out, "%v\n\n", selErr)
			continue
		}

		fmt.Fprintf(t.out, "\nRunning %d scenario(s)\n\n", len(scenarios))
		report, runErr := run(ctx, scenarios)
		PrintReport(t.out, report)
		if runErr != nil {
			fmt.Fprintf(t.out, "Warning: %v\n", runErr)
		}
		fmt.Fprintln(t.out)

		if eof {
			return nil
		}
	}
}

// Parse - resolves a selection line into scenarios
func (t *TerminalInterface) Parse(input string) ([]scenario.Scenario, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 || (len(fields) == 1 && fields[0] == "all") {
		return t.registry.All(), nil
	}

	all := t.registry.All()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil {
			if n < 1 || n > len(all) {
				return nil, fmt.Errorf("no scenario number %d (1-%d)", n, len(all))
			}
			names = append(names, all[n-1].Name)
			continue
		}
		names = append(names, f)
	}
	return t.registry.Select(names...)
}

func (t *TerminalInterface) printScenarios() {
	for i, s := range t.registry.All() {
		fmt.Fprintf(t.out, "%2d. %-24s [%s] %s\n", i+1, s.Name, s.Kind, s.Description)
	}
}

// PrintReport - writes a run report as a short table
func PrintReport(w io.Writer, report entities.RunReport) {
	fmt.Fprintf(w, "Run %s (%s, %s) started %s\n", report.ID, report.Engine, report.BaseURL, report.StartedAt.Format("2006-01-02 15:04:05"))
	for _, res := range report.Results {
		fmt.Fprintf(w, "  %-7s %-24s %6dms", strings.ToUpper(string(res.Status)), res.Name, res.DurationMs)
		if res.Error != "" {
			fmt.Fprintf(w, "  %s", firstLine(res.Error))
		}
		fmt.Fprintln(w)
	}
	passed, failed := report.Counts()
	fmt.Fprintf(w, "Passed: %d, failed: %d, total: %d\n", passed, failed, len(report.Results))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " ..."
	}
	return s
}
