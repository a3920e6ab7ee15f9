package clause

import (
	"strings"

	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/schema"
)

// Operators understood inside a where clause
const (
	OpEq       = "$eq"
	OpNe       = "$ne"
	OpGt       = "$gt"
	OpGte      = "$gte"
	OpLt       = "$lt"
	OpLte      = "$lte"
	OpIn       = "$in"
	OpNin      = "$nin"
	OpLike     = "$like"
	OpContains = "$contains"
	OpAnd      = "$and"
	OpOr       = "$or"
	OpNot      = "$not"
)

// Where where clause, every expression must hold
type Where struct {
	Exprs []Expression
}

func (where Where) Eval(record schema.Record, model *schema.Model) (bool, error) {
	return AndConditions(where).Eval(record, model)
}

func (where Where) Columns() []string {
	return columnsOf(where.Exprs)
}

// ParseWhere parses a where mapping
func ParseWhere(value interface{}, bindings map[string]interface{}) (Where, error) {
	if value == nil {
		return Where{}, nil
	}
	m, ok := asMap(value)
	if !ok {
		return Where{}, errs.New(errs.ErrSafetyViolation, "where must be a mapping, got %T", value)
	}
	exprs, err := parseConditions(m, bindings)
	return Where{Exprs: exprs}, err
}

func parseConditions(m map[string]interface{}, bindings map[string]interface{}) ([]Expression, error) {
	var exprs []Expression
	for _, key := range sortedKeys(m) {
		value := m[key]

		switch key {
		case OpAnd, OpOr:
			items, ok := value.([]interface{})
			if !ok {
				return nil, errs.New(errs.ErrQuery, "%s needs a list of conditions", key)
			}
			var group []Expression
			for _, item := range items {
				sub, ok := asMap(item)
				if !ok {
					return nil, errs.New(errs.ErrQuery, "%s entries must be mappings", key)
				}
				conds, err := parseConditions(sub, bindings)
				if err != nil {
					return nil, err
				}
				group = append(group, AndConditions{Exprs: conds})
			}
			if key == OpAnd {
				exprs = append(exprs, AndConditions{Exprs: group})
			} else {
				exprs = append(exprs, OrConditions{Exprs: group})
			}
		case OpNot:
			sub, ok := asMap(value)
			if !ok {
				return nil, errs.New(errs.ErrQuery, "$not needs a mapping")
			}
			conds, err := parseConditions(sub, bindings)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, NotConditions{Exprs: conds})
		default:
			if strings.HasPrefix(key, "$") {
				return nil, errs.New(errs.ErrQuery, "unknown operator %q", key)
			}
			conds, err := parseColumn(key, value, bindings)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, conds...)
		}
	}
	return exprs, nil
}

func parseColumn(column string, value interface{}, bindings map[string]interface{}) ([]Expression, error) {
	ops, isOps := asMap(value)
	if !isOps || !hasOperatorKeys(ops) {
		resolved, err := Resolve(value, bindings)
		if err != nil {
			return nil, err
		}
		return []Expression{Eq{Column: column, Value: resolved}}, nil
	}

	var exprs []Expression
	for _, op := range sortedKeys(ops) {
		arg, err := Resolve(ops[op], bindings)
		if err != nil {
			return nil, err
		}

		switch op {
		case OpEq:
			exprs = append(exprs, Eq{Column: column, Value: arg})
		case OpNe:
			exprs = append(exprs, Neq{Column: column, Value: arg})
		case OpGt:
			exprs = append(exprs, Gt{Column: column, Value: arg})
		case OpGte:
			exprs = append(exprs, Gte{Column: column, Value: arg})
		case OpLt:
			exprs = append(exprs, Lt{Column: column, Value: arg})
		case OpLte:
			exprs = append(exprs, Lte{Column: column, Value: arg})
		case OpIn, OpNin:
			values, err := toList(op, column, arg)
			if err != nil {
				return nil, err
			}
			if op == OpIn {
				exprs = append(exprs, IN{Column: column, Values: values})
			} else {
				exprs = append(exprs, NotIN{Column: column, Values: values})
			}
		case OpLike:
			pattern, ok := arg.(string)
			if !ok {
				return nil, errs.New(errs.ErrQuery, "$like needs a string pattern").WithField(column)
			}
			like, err := NewLike(column, pattern)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, like)
		case OpContains:
			exprs = append(exprs, Contains{Column: column, Value: arg})
		default:
			return nil, errs.New(errs.ErrQuery, "unknown operator %q", op).WithField(column)
		}
	}
	return exprs, nil
}

func hasOperatorKeys(m map[string]interface{}) bool {
	if len(m) == 0 {
		return false
	}
	for key := range m {
		if !strings.HasPrefix(key, "$") {
			return false
		}
	}
	return true
}

func toList(op, column string, value interface{}) ([]interface{}, error) {
	switch v := value.(type) {
	case []interface{}:
		return v, nil
	case []string:
		list := make([]interface{}, len(v))
		for i, s := range v {
			list[i] = s
		}
		return list, nil
	case []schema.Record:
		list := make([]interface{}, len(v))
		for i, r := range v {
			list[i] = r
		}
		return list, nil
	}
	return nil, errs.New(errs.ErrQuery, "%s needs a list, got %T", op, value).WithField(column)
}
