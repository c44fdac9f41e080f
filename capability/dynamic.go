package capability

import (
	"fmt"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Dynamic capability units are Go source files fetched from the store and
// evaluated in an isolated yaegi interpreter per unit. A unit is a `package
// main` source exporting exactly this contract:
//
//	func Name() string
//	func Description() string
//	func Parameters() map[string]interface{}
//	func Perform(args map[string]string) (string, error)
//
// The interpreter only exposes the stdlib symbol surface and imports are
// checked against an allow-list before evaluation, so fetched source cannot
// reach the filesystem, network or process environment. Units run as pure
// functions of their arguments; store access stays with compiled-in
// capabilities.

// allowedUnitImports is the import surface granted to dynamic units.
var allowedUnitImports = map[string]bool{
	"strings":         true,
	"strconv":         true,
	"fmt":             true,
	"math":            true,
	"regexp":          true,
	"encoding/json":   true,
	"encoding/base64": true,
	"time":            true,
	"sort":            true,
	"bytes":           true,
	"unicode":         true,
	"errors":          true,
}

// dynamicCapability wraps the extracted unit functions behind the Capability
// interface. The invocation Context is intentionally unused: interpreted
// units get no ambient authority.
type dynamicCapability struct {
	name        string
	description string
	parameters  map[string]any
	perform     func(args map[string]string) (string, error)
}

func (d *dynamicCapability) Name() string               { return d.name }
func (d *dynamicCapability) Description() string        { return d.description }
func (d *dynamicCapability) Parameters() map[string]any { return d.parameters }

func (d *dynamicCapability) Perform(_ *Context, args map[string]string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CapabilityError{
				Capability: d.name,
				Message:    fmt.Sprintf("unit panicked: %v", r),
				Code:       "EXECUTION_ERROR",
			}
		}
	}()
	result, err = d.perform(args)
	if err != nil {
		if _, ok := err.(*CapabilityError); !ok {
			err = &CapabilityError{Capability: d.name, Message: err.Error(), Code: "EXECUTION_ERROR"}
		}
		return "", err
	}
	return result, nil
}

// MaterializeUnit evaluates one capability source unit in a fresh sandboxed
// interpreter and extracts the capability contract. Missing or mistyped
// symbols are reported as errors, equivalent to "not found" for that unit.
func MaterializeUnit(src string) (Capability, error) {
	if err := validateUnitImports(src); err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load stdlib symbols: %w", err)
	}

	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("evaluate unit source: %w", err)
	}

	name, err := extractFunc[func() string](i, "main.Name")
	if err != nil {
		return nil, err
	}
	description, err := extractFunc[func() string](i, "main.Description")
	if err != nil {
		return nil, err
	}
	parameters, err := extractFunc[func() map[string]interface{}](i, "main.Parameters")
	if err != nil {
		return nil, err
	}
	perform, err := extractFunc[func(map[string]string) (string, error)](i, "main.Perform")
	if err != nil {
		return nil, err
	}

	declared := strings.TrimSpace(name())
	if declared == "" {
		return nil, fmt.Errorf("unit declares an empty capability name")
	}

	return &dynamicCapability{
		name:        declared,
		description: description(),
		parameters:  parameters(),
		perform:     perform,
	}, nil
}

// extractFunc resolves a symbol from the interpreter and asserts its signature.
func extractFunc[T any](i *interp.Interpreter, symbol string) (T, error) {
	var zero T
	v, err := i.Eval(symbol)
	if err != nil {
		return zero, fmt.Errorf("symbol %s not found: %w", symbol, err)
	}
	fn, ok := v.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("symbol %s has incorrect signature (got %T)", symbol, v.Interface())
	}
	return fn, nil
}

// validateUnitImports checks that the source only imports allowed packages.
// The source is parsed properly so every spelling an import can take
// (grouped, aliased, dot, compact) is inspected; source that does not parse
// is rejected outright.
func validateUnitImports(src string) error {
	f, err := parser.ParseFile(token.NewFileSet(), "unit.go", src, parser.ImportsOnly)
	if err != nil {
		return fmt.Errorf("parse unit source: %w", err)
	}

	var forbidden []string
	for _, imp := range f.Imports {
		pkg, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			forbidden = append(forbidden, imp.Path.Value)
			continue
		}
		if !allowedUnitImports[pkg] {
			forbidden = append(forbidden, pkg)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports in unit: %v", forbidden)
	}
	return nil
}
