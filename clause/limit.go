package clause

import (
	"github.com/spf13/cast"
	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/schema"
)

// Limit represents a limit window
type Limit struct {
	Limit  *int
	Offset int
}

// Window returns the records inside the window
func (limit Limit) Window(records []schema.Record) []schema.Record {
	if limit.Offset > 0 {
		if limit.Offset >= len(records) {
			return []schema.Record{}
		}
		records = records[limit.Offset:]
	}
	if limit.Limit != nil && *limit.Limit < len(records) {
		records = records[:*limit.Limit]
	}
	return records
}

func parseCount(key string, value interface{}) (*int, error) {
	if value == nil {
		return nil, nil
	}
	n, err := cast.ToIntE(value)
	if err != nil || n < 0 {
		return nil, errs.New(errs.ErrQuery, "%s must be a non-negative integer, got %v", key, value)
	}
	return &n, nil
}
