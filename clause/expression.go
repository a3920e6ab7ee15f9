package clause

import (
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/schema"
)

// Expression a condition evaluated against one record
type Expression interface {
	Eval(record schema.Record, model *schema.Model) (bool, error)
	Columns() []string
}

// Column value of column for record. Foreign keys compare by target pk.
func Column(record schema.Record, model *schema.Model, column string) any {
	if model != nil {
		if field := model.LookUpField(column); field != nil && field.Kind == schema.ForeignKey {
			return record[field.KeyName()]
		}
	}
	return record[column]
}

// Eq equal to for where
type Eq struct {
	Column string
	Value  interface{}
}

func (eq Eq) Eval(record schema.Record, model *schema.Model) (bool, error) {
	return Equal(Column(record, model, eq.Column), eq.Value), nil
}

func (eq Eq) Columns() []string { return []string{eq.Column} }

// Neq not equal to for where
type Neq Eq

func (neq Neq) Eval(record schema.Record, model *schema.Model) (bool, error) {
	return !Equal(Column(record, model, neq.Column), neq.Value), nil
}

func (neq Neq) Columns() []string { return []string{neq.Column} }

// Gt greater than for where
type Gt Eq

func (gt Gt) Eval(record schema.Record, model *schema.Model) (bool, error) {
	c, ok := Compare(Column(record, model, gt.Column), gt.Value)
	return ok && c > 0, nil
}

func (gt Gt) Columns() []string { return []string{gt.Column} }

// Gte greater than or equal to for where
type Gte Eq

func (gte Gte) Eval(record schema.Record, model *schema.Model) (bool, error) {
	c, ok := Compare(Column(record, model, gte.Column), gte.Value)
	return ok && c >= 0, nil
}

func (gte Gte) Columns() []string { return []string{gte.Column} }

// Lt less than for where
type Lt Eq

func (lt Lt) Eval(record schema.Record, model *schema.Model) (bool, error) {
	c, ok := Compare(Column(record, model, lt.Column), lt.Value)
	return ok && c < 0, nil
}

func (lt Lt) Columns() []string { return []string{lt.Column} }

// Lte less than or equal to for where
type Lte Eq

func (lte Lte) Eval(record schema.Record, model *schema.Model) (bool, error) {
	c, ok := Compare(Column(record, model, lte.Column), lte.Value)
	return ok && c <= 0, nil
}

func (lte Lte) Columns() []string { return []string{lte.Column} }

// IN Whether a value is within a set of values
type IN struct {
	Column string
	Values []interface{}
}

func (in IN) Eval(record schema.Record, model *schema.Model) (bool, error) {
	value := Column(record, model, in.Column)
	for _, v := range in.Values {
		if Equal(value, v) {
			return true, nil
		}
	}
	return false, nil
}

func (in IN) Columns() []string { return []string{in.Column} }

// NotIN Whether a value is outside a set of values
type NotIN IN

func (nin NotIN) Eval(record schema.Record, model *schema.Model) (bool, error) {
	found, err := IN(nin).Eval(record, model)
	return !found, err
}

func (nin NotIN) Columns() []string { return []string{nin.Column} }

// Like whether string matches a pattern with `%` and `_` wildcards, case insensitive
type Like struct {
	Column  string
	Pattern string
	re      *regexp.Regexp
}

// NewLike compiles the pattern of a like condition
func NewLike(column, pattern string) (Like, error) {
	var b strings.Builder
	b.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return Like{}, errs.Wrap(errs.ErrQuery, err, "invalid $like pattern %q", pattern).WithField(column)
	}
	return Like{Column: column, Pattern: pattern, re: re}, nil
}

func (like Like) Eval(record schema.Record, model *schema.Model) (bool, error) {
	value := Column(record, model, like.Column)
	if value == nil {
		return false, nil
	}
	s, err := cast.ToStringE(normalize(value))
	if err != nil {
		return false, nil
	}
	return like.re.MatchString(s), nil
}

func (like Like) Columns() []string { return []string{like.Column} }

// Contains whether a collection column holds a value, usually a pk of a
// many to many target
type Contains Eq

func (contains Contains) Eval(record schema.Record, model *schema.Model) (bool, error) {
	switch items := Column(record, model, contains.Column).(type) {
	case []schema.Record:
		for _, item := range items {
			if Equal(item, contains.Value) {
				return true, nil
			}
		}
	case []interface{}:
		for _, item := range items {
			if Equal(item, contains.Value) {
				return true, nil
			}
		}
	case []string:
		for _, item := range items {
			if Equal(item, contains.Value) {
				return true, nil
			}
		}
	case string:
		if s, err := cast.ToStringE(normalize(contains.Value)); err == nil {
			return strings.Contains(items, s), nil
		}
	case nil:
	default:
		return false, errs.New(errs.ErrQuery, "$contains needs a collection, got %T", items).WithField(contains.Column)
	}
	return false, nil
}

func (contains Contains) Columns() []string { return []string{contains.Column} }

// AndConditions all expressions must hold
type AndConditions struct {
	Exprs []Expression
}

func (and AndConditions) Eval(record schema.Record, model *schema.Model) (bool, error) {
	for _, expr := range and.Exprs {
		if ok, err := expr.Eval(record, model); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (and AndConditions) Columns() []string { return columnsOf(and.Exprs) }

// OrConditions one expression must hold
type OrConditions struct {
	Exprs []Expression
}

func (or OrConditions) Eval(record schema.Record, model *schema.Model) (bool, error) {
	for _, expr := range or.Exprs {
		if ok, err := expr.Eval(record, model); err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (or OrConditions) Columns() []string { return columnsOf(or.Exprs) }

// NotConditions none of the expressions may hold
type NotConditions struct {
	Exprs []Expression
}

func (not NotConditions) Eval(record schema.Record, model *schema.Model) (bool, error) {
	ok, err := AndConditions(not).Eval(record, model)
	return !ok && err == nil, err
}

func (not NotConditions) Columns() []string { return columnsOf(not.Exprs) }

func columnsOf(exprs []Expression) []string {
	var columns []string
	for _, expr := range exprs {
		columns = append(columns, expr.Columns()...)
	}
	return columns
}

func normalize(v interface{}) interface{} {
	switch value := v.(type) {
	case schema.Record:
		return value.PK()
	case map[string]interface{}:
		if pk, ok := value[schema.PrimaryKey]; ok {
			return fmt.Sprint(pk)
		}
	case template.HTML:
		return string(value)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
		return cast.ToFloat64(value)
	case *time.Time:
		if value != nil {
			return *value
		}
		return nil
	}
	return v
}

// Equal reports whether two values compare equal
func Equal(a, b interface{}) bool {
	c, ok := Compare(a, b)
	return ok && c == 0
}

// Compare orders two values. Records compare by pk, numbers numerically,
// times chronologically and nil sorts first. ok is false when the values
// cannot be compared.
func Compare(a, b interface{}) (c int, ok bool) {
	a, b = normalize(a), normalize(b)

	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return -1, true
	case b == nil:
		return 1, true
	}

	switch x := a.(type) {
	case float64:
		y, err := cast.ToFloat64E(b)
		if err != nil {
			return 0, false
		}
		return compareOrdered(x, y), true
	case time.Time:
		y, err := cast.ToTimeE(b)
		if err != nil {
			return 0, false
		}
		return x.Compare(y), true
	case bool:
		y, err := cast.ToBoolE(b)
		if err != nil {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	case string:
		switch b.(type) {
		case string:
			return strings.Compare(x, b.(string)), true
		case float64, time.Time, bool:
			c, ok := Compare(b, a)
			return -c, ok
		}
	}
	return 0, false
}

func compareOrdered(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
