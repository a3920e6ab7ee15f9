// Package script evaluates free-form queries written as HCL expressions.
// Expressions only see the model tuples, the caller's bindings and a fixed
// function table, so they cannot reach the host.
package script

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/internal/lru"
	"github.com/statikgen/statik/schema"
	"github.com/zclconf/go-cty/cty"
)

// ExpressionCacheSize number of parsed expressions kept by an Evaluator
const ExpressionCacheSize = 256

// Evaluator evaluates expressions over a fixed set of records. It is safe
// for concurrent use.
type Evaluator struct {
	models  map[string]cty.Value
	objects map[[2]string]cty.Value
	records map[[2]string]schema.Record
	exprs   *lru.LRU[string, hclsyntax.Expression]
}

// New converts every table once. tables maps model names to their records
// in load order and must not change afterwards.
func New(tables map[string][]schema.Record) *Evaluator {
	e := &Evaluator{
		models:  make(map[string]cty.Value, len(tables)),
		objects: map[[2]string]cty.Value{},
		records: map[[2]string]schema.Record{},
		exprs:   lru.NewLRU[string, hclsyntax.Expression](ExpressionCacheSize, nil),
	}

	for name, records := range tables {
		values := make([]cty.Value, len(records))
		for i, record := range records {
			obj := recordObject(record)
			e.objects[record.Identity()] = obj
			e.records[record.Identity()] = record
			values[i] = obj
		}
		e.models[name] = tuple(values)
	}
	return e
}

func (e *Evaluator) object(record schema.Record) cty.Value {
	if obj, ok := e.objects[record.Identity()]; ok {
		return obj
	}
	return recordObject(record)
}

func (e *Evaluator) lookup(model, pk string) (schema.Record, bool) {
	record, ok := e.records[[2]string{model, pk}]
	return record, ok
}

// Eval evaluates src. Record objects in the result come back as the stored
// records; other values become plain Go values.
func (e *Evaluator) Eval(src string, bindings map[string]interface{}) (interface{}, error) {
	expr, err := e.parse(src)
	if err != nil {
		return nil, err
	}

	variables := make(map[string]cty.Value, len(e.models)+len(bindings))
	for name, value := range e.models {
		variables[name] = value
	}
	for name, value := range bindings {
		variables[name] = toValue(value, maxDepth, e.object)
	}

	ctx := &hcl.EvalContext{
		Variables: variables,
		Functions: Functions(),
	}

	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return nil, errs.Wrap(errs.ErrQuery, diags, "cannot evaluate %q", src)
	}

	result, err := fromValue(val, e.lookup)
	if err != nil {
		return nil, errs.Wrap(errs.ErrQuery, err, "cannot use result of %q", src)
	}
	return result, nil
}

// parse parses src once, for-each queries run the same expression for
// every instance of a view
func (e *Evaluator) parse(src string) (hclsyntax.Expression, error) {
	if expr, ok := e.exprs.Get(src); ok {
		return expr, nil
	}
	expr, diags := hclsyntax.ParseExpression([]byte(src), "query", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, errs.Wrap(errs.ErrQuery, diags, "cannot parse %q", src)
	}
	e.exprs.Add(src, expr)
	return expr, nil
}
