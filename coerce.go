package statik

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"github.com/spf13/cast"
	"github.com/statikgen/statik/schema"
)

// Coerce converts a raw value read from a content file into the Go type
// stored for kind. Missing values stay nil.
//
//	String, Text        string
//	Integer             int64
//	Float               float64
//	Boolean             bool (true/false, yes/no, on/off, 1/0)
//	DateTime            time.Time
//	Date                time.Time at midnight UTC
//	Content             template.HTML
func Coerce(kind schema.Kind, raw interface{}, reference time.Time) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}

	switch kind {
	case schema.String, schema.Text:
		switch v := raw.(type) {
		case map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("expected a string, got %T", v)
		case time.Time:
			return v.Format(time.RFC3339), nil
		}
		return cast.ToStringE(raw)
	case schema.Content:
		s, err := cast.ToStringE(raw)
		return template.HTML(s), err
	case schema.Integer:
		return toInteger(raw)
	case schema.Float:
		if s, ok := raw.(string); ok {
			return strconv.ParseFloat(strings.TrimSpace(s), 64)
		}
		return cast.ToFloat64E(raw)
	case schema.Boolean:
		return toBoolean(raw)
	case schema.DateTime:
		return toTime(raw, reference)
	case schema.Date:
		t, err := toTime(raw, reference)
		if err != nil {
			return nil, err
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return nil, fmt.Errorf("%s values are not scalar", kind)
}

func toInteger(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("%q is not an integer", v)
		}
		return floatToInteger(f)
	case float32, float64:
		f := cast.ToFloat64(v)
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return floatToInteger(f)
	case uint, uint64:
		if u := cast.ToUint64(v); u > math.MaxInt64 {
			return 0, fmt.Errorf("%d is out of the integer range", u)
		}
	case bool:
		return 0, fmt.Errorf("%v is not an integer", v)
	}
	return cast.ToInt64E(raw)
}

// floatToInteger converts a whole float, MaxInt64 rounds up to 2^63 as a
// float64 so the upper bound is exclusive
func floatToInteger(f float64) (int64, error) {
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%g is out of the integer range", f)
	}
	return int64(f), nil
}

func toBoolean(raw interface{}) (bool, error) {
	if s, ok := raw.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "y", "on":
			return true, nil
		case "no", "n", "off":
			return false, nil
		}
	}
	return cast.ToBoolE(raw)
}

func toTime(raw interface{}, reference time.Time) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v != nil {
			return *v, nil
		}
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		if t, err := now.New(reference.UTC()).Parse(s); err == nil {
			return t, nil
		}
		return cast.ToTimeInDefaultLocationE(s, time.UTC)
	case int, int64, float64:
		return time.Unix(cast.ToInt64(v), 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("cannot read %T as a time", raw)
}
