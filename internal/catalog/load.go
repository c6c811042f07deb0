package catalog

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/specbench/internal/queryir"
)

// Definition is one named filter read from a catalog.
type Definition struct {
	Name   string            // label under "filters"
	Entity string            // entity the filter applies to, e.g. "order"
	Where  queryir.Predicate // structural form of the filter
}

// Catalog holds the definitions of one CUE file or package, sorted by name.
type Catalog struct {
	Definitions []Definition
}

// Lookup returns the definition called name.
func (c *Catalog) Lookup(name string) (Definition, error) {
	for _, d := range c.Definitions {
		if d.Name == name {
			return d, nil
		}
	}
	return Definition{}, &DefinitionError{
		Code:    ErrCodeUnknownFilter,
		Path:    "filters." + name,
		Message: fmt.Sprintf("no filter named %q", name),
	}
}

// Names lists the definition names in order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Definitions))
	for i, d := range c.Definitions {
		names[i] = d.Name
	}
	return names
}

// Load reads a catalog from path. A directory is loaded as one CUE package
// instance; anything else is compiled as a single CUE file.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if info.IsDir() {
		return loadDir(path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return Parse(path, src)
}

func loadDir(dir string) (*Catalog, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("load catalog %s: no CUE instances loaded", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err, dir)
	}
	return fromValue(ctx.BuildInstance(inst))
}

// Parse compiles CUE source and extracts its filter definitions.
// filename is used only for error positions.
//
// All definition errors are collected and returned joined; each is a
// *DefinitionError.
func Parse(filename string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()
	return fromValue(ctx.CompileBytes(src, cue.Filename(filename)))
}

func fromValue(v cue.Value) (*Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, "$")
	}

	filtersVal := v.LookupPath(cue.ParsePath("filters"))
	if !filtersVal.Exists() {
		return nil, defErr(ErrCodeNoFilters, "filters", v.Pos(), "catalog declares no filters")
	}

	iter, err := filtersVal.Fields()
	if err != nil {
		return nil, formatCUEError(err, "filters")
	}

	cat := &Catalog{}
	var errs []error
	for iter.Next() {
		name := iter.Selector().Unquoted()
		def, err := parseDefinition(name, iter.Value())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cat.Definitions = append(cat.Definitions, def)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	slices.SortFunc(cat.Definitions, func(a, b Definition) int {
		return strings.Compare(a.Name, b.Name)
	})
	return cat, nil
}

func parseDefinition(name string, v cue.Value) (Definition, error) {
	path := "filters." + name

	entityVal := v.LookupPath(cue.ParsePath("entity"))
	if !entityVal.Exists() {
		return Definition{}, defErr(ErrCodeMissingField, path+".entity", v.Pos(), "entity is required")
	}
	entity, err := entityVal.String()
	if err != nil {
		return Definition{}, formatCUEError(err, path+".entity")
	}

	whereVal := v.LookupPath(cue.ParsePath("where"))
	if !whereVal.Exists() {
		return Definition{}, defErr(ErrCodeMissingField, path+".where", v.Pos(), "where is required")
	}
	where, err := parseExpr(whereVal, path+".where")
	if err != nil {
		return Definition{}, err
	}

	return Definition{Name: name, Entity: entity, Where: where}, nil
}
