// Command indicatorctl validates and evaluates indicator formulas against a
// JSON dataset file from the command line.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/rulego/indicators"
	"github.com/rulego/indicators/dataset"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// globals holds the flags shared by every command.
type globals struct {
	out       io.Writer
	threshold *float64
	maxRows   *int
	timeout   *time.Duration
	asJSON    *bool
}

func (g *globals) engine() *indicators.Engine {
	return indicators.New(
		indicators.WithDiscardLog(),
		indicators.WithMaxRows(*g.maxRows),
		indicators.WithTimeout(*g.timeout),
	)
}

func (g *globals) loadDataset(path string) (*dataset.Dataset, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("dataset must be a JSON array of objects: %w", err)
	}
	return dataset.FromRecords(records, *g.threshold), nil
}

func (g *globals) printJSON(v any) error {
	enc := json.NewEncoder(g.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newApp(out io.Writer) *kingpin.Application {
	app := kingpin.New("indicatorctl", "Validate and evaluate indicator formulas.")
	app.UsageWriter(out)
	app.ErrorWriter(out)
	g := &globals{
		out:       out,
		threshold: app.Flag("threshold", "Share of numeric values above which a column is numeric.").Default("0.9").Float64(),
		maxRows:   app.Flag("max-rows", "Maximum dataset rows per evaluation (0 = unlimited).").Default("0").Int(),
		timeout:   app.Flag("timeout", "Evaluation timeout (0 = none).").Default("0s").Duration(),
		asJSON:    app.Flag("json", "Print results as JSON.").Bool(),
	}
	addValidateCommand(app, g)
	addPreviewCommand(app, g)
	addComputeCommand(app, g)
	addFieldsCommand(app, g)
	return app
}

func run(args []string, out io.Writer) error {
	_, err := newApp(out).Parse(args)
	return err
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "indicatorctl: %v\n", err)
		os.Exit(1)
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
