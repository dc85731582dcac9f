package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/rulego/indicators"
	"github.com/rulego/indicators/condition"
	"github.com/rulego/indicators/dataset"
	"github.com/rulego/indicators/formula"
	"github.com/rulego/indicators/utils/table"
)

// errFailed is returned when a formula is invalid or fails to evaluate, after
// the diagnostics have been printed.
var errFailed = errors.New("formula failed")

type validateCommand struct {
	g       *globals
	formula *string
	data    *string
}

func addValidateCommand(app *kingpin.Application, g *globals) {
	cmd := &validateCommand{g: g}
	c := app.Command("validate", "Check a formula, optionally against a dataset schema.").Action(cmd.run)
	cmd.formula = c.Arg("formula", "The formula to check.").Required().String()
	cmd.data = c.Flag("data", "JSON dataset whose fields the formula must reference.").ExistingFile()
}

func (cmd *validateCommand) run(*kingpin.ParseContext) error {
	var schema *dataset.Schema
	if *cmd.data != "" {
		ds, err := cmd.g.loadDataset(*cmd.data)
		if err != nil {
			return err
		}
		schema = ds.Schema()
	}
	res := cmd.g.engine().Validate(*cmd.formula, schema)
	if *cmd.g.asJSON {
		if err := cmd.g.printJSON(res); err != nil {
			return err
		}
	} else if res.Valid {
		fmt.Fprintf(cmd.g.out, "%s %s\n", color.GreenString("valid:"), res.Message)
	} else {
		printFailure(cmd.g, *cmd.formula, res.Details, res.Error)
	}
	if !res.Valid {
		return errFailed
	}
	return nil
}

type previewCommand struct {
	g       *globals
	formula *string
	data    *string
	filter  *string
}

func addPreviewCommand(app *kingpin.Application, g *globals) {
	cmd := &previewCommand{g: g}
	c := app.Command("preview", "Evaluate a formula over a dataset.").Action(cmd.run)
	cmd.formula = c.Arg("formula", "The formula to evaluate.").Required().String()
	cmd.data = c.Flag("data", "JSON dataset file.").Required().ExistingFile()
	cmd.filter = c.Flag("filter", "Filter criteria as a JSON object.").String()
}

func (cmd *previewCommand) run(*kingpin.ParseContext) error {
	ds, err := cmd.g.loadDataset(*cmd.data)
	if err != nil {
		return err
	}
	var criteria condition.Criteria
	if *cmd.filter != "" {
		if err := json.Unmarshal([]byte(*cmd.filter), &criteria); err != nil {
			return fmt.Errorf("filter must be a JSON object: %w", err)
		}
	}
	res := cmd.g.engine().Preview(context.Background(), *cmd.formula, ds, criteria)
	if *cmd.g.asJSON {
		if err := cmd.g.printJSON(res); err != nil {
			return err
		}
	} else if res.OK() {
		table.PrintTableFromSlice(cmd.g.out, []map[string]any{{
			"value":          res.Value,
			"rows_processed": humanize.Comma(int64(res.RowsProcessed)),
			"total_rows":     humanize.Comma(int64(res.TotalRows)),
		}}, []string{"value", "rows_processed", "total_rows"})
	} else {
		printFailure(cmd.g, *cmd.formula, res.Details, res.Error)
	}
	if !res.OK() {
		return errFailed
	}
	return nil
}

type computeCommand struct {
	g          *globals
	data       *string
	indicators *string
}

// indicatorFile is one entry of the --indicators file.
type indicatorFile struct {
	ID             int64              `json:"id"`
	Name           string             `json:"name"`
	Formula        string             `json:"formula"`
	FilterCriteria condition.Criteria `json:"filter_criteria"`
}

func addComputeCommand(app *kingpin.Application, g *globals) {
	cmd := &computeCommand{g: g}
	c := app.Command("compute", "Evaluate a batch of indicators over a dataset.").Action(cmd.run)
	cmd.data = c.Flag("data", "JSON dataset file.").Required().ExistingFile()
	cmd.indicators = c.Flag("indicators", "JSON array of {id, name, formula, filter_criteria}.").Required().ExistingFile()
}

func (cmd *computeCommand) run(*kingpin.ParseContext) error {
	ds, err := cmd.g.loadDataset(*cmd.data)
	if err != nil {
		return err
	}
	raw, err := readFile(*cmd.indicators)
	if err != nil {
		return err
	}
	var entries []indicatorFile
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("indicators must be a JSON array: %w", err)
	}
	specs := make([]indicators.IndicatorSpec, len(entries))
	for i, e := range entries {
		specs[i] = indicators.IndicatorSpec{ID: e.ID, Name: e.Name, Formula: e.Formula, Filter: e.FilterCriteria}
	}

	report := cmd.g.engine().Compute(context.Background(), ds, specs)
	if *cmd.g.asJSON {
		return cmd.g.printJSON(report)
	}
	rows := make([]map[string]any, len(report.Results))
	for i, r := range report.Results {
		row := map[string]any{"id": r.IndicatorID, "name": r.IndicatorName, "status": r.Status}
		if r.OK() {
			row["value"] = r.Value
			row["rows"] = humanize.Comma(int64(r.RowsProcessed))
		} else {
			row["error"] = r.Error
		}
		rows[i] = row
	}
	table.PrintTableFromSlice(cmd.g.out, rows, []string{"id", "name", "status", "value", "rows", "error"})
	fmt.Fprintf(cmd.g.out, "run %s: %d succeeded, %d failed over %s rows\n",
		report.RunID, report.Succeeded, report.Failed, humanize.Comma(int64(report.TotalRows)))
	return nil
}

type fieldsCommand struct {
	g    *globals
	data *string
}

func addFieldsCommand(app *kingpin.Application, g *globals) {
	cmd := &fieldsCommand{g: g}
	c := app.Command("fields", "Describe the fields of a dataset.").Action(cmd.run)
	cmd.data = c.Arg("data", "JSON dataset file.").Required().ExistingFile()
}

func (cmd *fieldsCommand) run(*kingpin.ParseContext) error {
	ds, err := cmd.g.loadDataset(*cmd.data)
	if err != nil {
		return err
	}
	profiles := dataset.Profile(ds)
	if *cmd.g.asJSON {
		return cmd.g.printJSON(profiles)
	}
	rows := make([]map[string]any, len(profiles))
	for i, p := range profiles {
		row := map[string]any{
			"name":     p.Name,
			"type":     string(p.Type),
			"non_null": p.NonNullCount,
			"null":     p.NullCount,
		}
		if p.Mean != nil {
			row["mean"] = *p.Mean
		}
		if p.UniqueCount != nil {
			row["unique"] = *p.UniqueCount
		}
		rows[i] = row
	}
	table.PrintTableFromSlice(cmd.g.out, rows, []string{"name", "type", "non_null", "null", "mean", "unique"})
	return nil
}

func printFailure(g *globals, src string, fe *formula.Error, msg string) {
	if fe == nil {
		fmt.Fprintf(g.out, "%s %s\n", color.RedString("error:"), msg)
		return
	}
	fmt.Fprintf(g.out, "%s %s\n", color.RedString("error:"), fe.Pretty(src))
}
