package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/specbench/internal/catalog"
	"github.com/roach88/specbench/internal/ir"
	"github.com/roach88/specbench/internal/queryir"
	"github.com/roach88/specbench/internal/querysql"
	"github.com/roach88/specbench/internal/store"
)

// ExplainResult is everything known about one filter without running it.
type ExplainResult struct {
	Name         string          `json:"name"`
	Entity       string          `json:"entity"`
	Table        string          `json:"table"`
	Structure    json.RawMessage `json:"structure"`
	Fingerprint  string          `json:"fingerprint"`
	Translatable bool            `json:"translatable"`
	Warnings     []string        `json:"warnings,omitempty"`
	SQL          string          `json:"sql,omitempty"`
	Params       []any           `json:"params,omitempty"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <catalog> <filter>",
		Short: "Show a filter's structure, fingerprint and SQL",
		Long: `Bind one catalog filter to its entity and print what it becomes:
the canonical JSON structure, its fingerprint, portability warnings and the
SQL the store would run for it.

Example:
  specbench explain ./filters.cue paid_by_alice
  specbench explain ./catalog huskies --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.resolve(cmd); err != nil {
				return err
			}
			return runExplain(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runExplain(opts *RootOptions, catalogPath, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), issuesFrom(err))
	}
	def, err := cat.Lookup(name)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), cat.Names())
	}

	result, err := explain(def)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDefinition, err.Error(), issuesFrom(err))
	}

	return formatter.Render(result, func(w io.Writer) {
		writeExplainText(w, result)
	})
}

// explain binds def and gathers its structural form, fingerprint and SQL.
// An untranslatable filter is still explained; its SQL is left empty.
func explain(def catalog.Definition) (*ExplainResult, error) {
	pred, err := describeBound(def)
	if err != nil {
		return nil, err
	}

	obj, err := queryir.Describe(pred)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", def.Name, err)
	}
	structure, err := ir.MarshalCanonical(obj)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", def.Name, err)
	}
	fp, err := queryir.Fingerprint(pred)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", def.Name, err)
	}

	table := catalog.Tables[def.Entity]
	validation := queryir.ValidatePredicate(pred)
	result := &ExplainResult{
		Name:         def.Name,
		Entity:       def.Entity,
		Table:        table,
		Structure:    structure,
		Fingerprint:  fp,
		Translatable: validation.Translatable,
		Warnings:     validation.Warnings,
	}

	sql, params, err := store.From(table).Where(pred).SQL()
	switch {
	case err == nil:
		result.SQL, result.Params = sql, params
	case querysql.IsTranslateError(err, ""):
		result.Translatable = false
		result.Warnings = append(result.Warnings, err.Error())
	default:
		return nil, fmt.Errorf("compile %s: %w", def.Name, err)
	}
	return result, nil
}

// describeBound builds def against its entity and returns the structural
// form of the resulting spec. Catalog junctions are folded during binding,
// so this is the form both evaluation paths actually see.
func describeBound(def catalog.Definition) (queryir.Predicate, error) {
	switch def.Entity {
	case catalog.EntityOrder:
		s, err := catalog.BindDefinition(def, catalog.OrderEntity())
		if err != nil {
			return nil, err
		}
		return s.Describe(), nil
	case catalog.EntityAnimal:
		s, err := catalog.BindDefinition(def, catalog.AnimalEntity())
		if err != nil {
			return nil, err
		}
		return s.Describe(), nil
	default:
		return nil, catalog.Validate(&catalog.Catalog{Definitions: []catalog.Definition{def}})
	}
}

func writeExplainText(w io.Writer, r *ExplainResult) {
	fmt.Fprintf(w, "filter:      %s (%s -> %s)\n", r.Name, r.Entity, r.Table)
	fmt.Fprintf(w, "fingerprint: %s\n", r.Fingerprint)
	fmt.Fprintf(w, "structure:   %s\n", r.Structure)
	if r.SQL != "" {
		fmt.Fprintf(w, "sql:         %s\n", r.SQL)
		params, _ := json.Marshal(r.Params)
		fmt.Fprintf(w, "params:      %s\n", params)
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "warnings:\n  %s\n", strings.Join(r.Warnings, "\n  "))
	}
}
