// Package clause implements the structured query form accepted in safe
// mode: a single model, a where filter, ordering and a limit window.
package clause

import (
	"sort"

	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/schema"
)

// Query keys
const (
	KeyFrom     = "from"
	KeyWhere    = "where"
	KeyOrderBy  = "order-by"
	KeyOrderBy2 = "order_by"
	KeyLimit    = "limit"
	KeyOffset   = "offset"
	KeySkip     = "skip"
)

// Query a parsed structured query
type Query struct {
	From    string
	Where   Where
	OrderBy OrderBy
	Limit   Limit
}

// Parse parses a structured query. Strings starting with `$.` anywhere in
// the where clause are looked up in bindings. Anything that is not a
// structured query fails with ErrSafetyViolation.
func Parse(q interface{}, bindings map[string]interface{}) (*Query, error) {
	spec, ok := asMap(q)
	if !ok {
		return nil, errs.New(errs.ErrSafetyViolation, "structured query required, got %T", q)
	}

	query := &Query{}
	for _, key := range sortedKeys(spec) {
		value := spec[key]
		var err error
		switch key {
		case KeyFrom:
			name, ok := value.(string)
			if !ok || name == "" {
				return nil, errs.New(errs.ErrQuery, "from must name a model")
			}
			query.From = name
		case KeyWhere:
			query.Where, err = ParseWhere(value, bindings)
		case KeyOrderBy, KeyOrderBy2:
			query.OrderBy, err = ParseOrderBy(value)
		case KeyLimit:
			query.Limit.Limit, err = parseCount(key, value)
		case KeyOffset, KeySkip:
			var offset *int
			if offset, err = parseCount(key, value); offset != nil {
				query.Limit.Offset = *offset
			}
		default:
			return nil, errs.New(errs.ErrSafetyViolation, "unknown query key %q", key)
		}
		if err != nil {
			return nil, err
		}
	}

	if query.From == "" {
		return nil, errs.New(errs.ErrQuery, "missing from")
	}
	return query, nil
}

// Validate checks every referenced column exists on model
func (query *Query) Validate(model *schema.Model) error {
	if model == nil || model.Name != query.From {
		return errs.New(errs.ErrQuery, "unknown model %q", query.From)
	}

	columns := query.Where.Columns()
	for _, column := range query.OrderBy.Columns {
		columns = append(columns, column.Column)
	}
	for _, column := range columns {
		if !model.HasKey(column) {
			return errs.New(errs.ErrQuery, "unknown field").WithModel(model.Name).WithField(column)
		}
	}
	return nil
}

// Apply filters, sorts and windows records, leaving the input untouched
func (query *Query) Apply(records []schema.Record, model *schema.Model) ([]schema.Record, error) {
	result := make([]schema.Record, 0, len(records))
	for _, record := range records {
		ok, err := query.Where.Eval(record, model)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, record)
		}
	}

	if len(query.OrderBy.Columns) > 0 {
		sort.SliceStable(result, func(i, j int) bool {
			return query.OrderBy.Less(result[i], result[j], model)
		})
	}

	return query.Limit.Window(result), nil
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case schema.Record:
		return nil, false
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(m))
		for k, item := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			result[key] = item
		}
		return result, true
	}
	return nil, false
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
