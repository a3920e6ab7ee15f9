package clause

import (
	"strings"

	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/schema"
)

type OrderByColumn struct {
	Column string
	Desc   bool
}

type OrderBy struct {
	Columns []OrderByColumn
}

// ParseOrderBy accepts a field name or a list of them, `-name` sorts descending
func ParseOrderBy(value interface{}) (OrderBy, error) {
	var names []string
	switch v := value.(type) {
	case nil:
	case string:
		names = []string{v}
	case []string:
		names = v
	case []interface{}:
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return OrderBy{}, errs.New(errs.ErrQuery, "order-by entries must be field names, got %v", item)
			}
			names = append(names, name)
		}
	default:
		return OrderBy{}, errs.New(errs.ErrQuery, "order-by must be a field name or a list, got %T", value)
	}

	orderBy := OrderBy{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		column := OrderByColumn{Column: strings.TrimPrefix(name, "-"), Desc: strings.HasPrefix(name, "-")}
		if column.Column == "" {
			return OrderBy{}, errs.New(errs.ErrQuery, "empty order-by field")
		}
		orderBy.Columns = append(orderBy.Columns, column)
	}
	return orderBy, nil
}

// Less reports whether a sorts before b. Incomparable values keep their order.
func (orderBy OrderBy) Less(a, b schema.Record, model *schema.Model) bool {
	for _, column := range orderBy.Columns {
		c, ok := Compare(Column(a, model, column.Column), Column(b, model, column.Column))
		if !ok || c == 0 {
			continue
		}
		if column.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}
