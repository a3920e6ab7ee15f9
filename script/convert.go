package script

import (
	"fmt"
	"html/template"
	"math/big"
	"time"

	"github.com/spf13/cast"
	"github.com/statikgen/statik/schema"
	"github.com/zclconf/go-cty/cty"
)

// maxDepth bounds conversion of nested bindings, records can reach each
// other through back-populated collections
const maxDepth = 6

// Mapper is implemented by values that expose themselves as a map to
// expressions, such as pagination pages
type Mapper interface {
	Map() map[string]interface{}
}

// recordObject exposes the scalar values of a record. Foreign keys become the
// target pk and collections a tuple of pks.
func recordObject(record schema.Record) cty.Value {
	attrs := make(map[string]cty.Value, len(record))
	for key, value := range record {
		switch v := value.(type) {
		case schema.Record:
			attrs[key] = cty.StringVal(v.PK())
		case []schema.Record:
			pks := make([]cty.Value, len(v))
			for i, item := range v {
				pks[i] = cty.StringVal(item.PK())
			}
			attrs[key] = tuple(pks)
		default:
			attrs[key] = toValue(value, maxDepth-1, nil)
		}
	}
	attrs[schema.PrimaryKey] = cty.StringVal(record.PK())
	attrs[schema.ModelKey] = cty.StringVal(record.Model())
	return cty.ObjectVal(attrs)
}

func tuple(values []cty.Value) cty.Value {
	if len(values) == 0 {
		return cty.EmptyTupleVal
	}
	return cty.TupleVal(values)
}

// toValue converts a Go value into a cty value. cached resolves records
// that are already converted.
func toValue(value interface{}, depth int, cached func(schema.Record) cty.Value) cty.Value {
	if depth < 0 {
		return cty.NullVal(cty.DynamicPseudoType)
	}

	switch v := value.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType)
	case cty.Value:
		return v
	case string:
		return cty.StringVal(v)
	case template.HTML:
		return cty.StringVal(string(v))
	case bool:
		return cty.BoolVal(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return cty.NumberIntVal(cast.ToInt64(v))
	case uint64:
		return cty.NumberUIntVal(v)
	case float32, float64:
		return cty.NumberFloatVal(cast.ToFloat64(v))
	case time.Time:
		return cty.StringVal(v.Format(time.RFC3339))
	case *time.Time:
		if v == nil {
			return cty.NullVal(cty.DynamicPseudoType)
		}
		return cty.StringVal(v.Format(time.RFC3339))
	case schema.Record:
		if cached != nil {
			return cached(v)
		}
		return recordObject(v)
	case []schema.Record:
		values := make([]cty.Value, len(v))
		for i, item := range v {
			values[i] = toValue(item, depth-1, cached)
		}
		return tuple(values)
	case []interface{}:
		values := make([]cty.Value, len(v))
		for i, item := range v {
			values[i] = toValue(item, depth-1, cached)
		}
		return tuple(values)
	case []string:
		values := make([]cty.Value, len(v))
		for i, item := range v {
			values[i] = cty.StringVal(item)
		}
		return tuple(values)
	case map[string]interface{}:
		attrs := make(map[string]cty.Value, len(v))
		for key, item := range v {
			attrs[key] = toValue(item, depth-1, cached)
		}
		return cty.ObjectVal(attrs)
	case Mapper:
		return toValue(v.Map(), depth, cached)
	case fmt.Stringer:
		return cty.StringVal(v.String())
	}
	return cty.StringVal(cast.ToString(value))
}

// fromValue converts a result back into Go values, mapping record objects
// to the stored records through lookup.
func fromValue(val cty.Value, lookup func(model, pk string) (schema.Record, bool)) (interface{}, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("result is not known")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		return fromNumber(val.AsBigFloat()), nil
	case ty.IsObjectType() || ty.IsMapType():
		if record, ok := asRecord(val, lookup); ok {
			return record, nil
		}
		result := map[string]interface{}{}
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			item, err := fromValue(v, lookup)
			if err != nil {
				return nil, err
			}
			result[k.AsString()] = item
		}
		return result, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var (
			records = make([]schema.Record, 0, val.LengthInt())
			values  = make([]interface{}, 0, val.LengthInt())
			all     = true
		)
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			if all {
				if record, ok := asRecord(v, lookup); ok {
					records = append(records, record)
				} else {
					all = false
				}
			}
			item, err := fromValue(v, lookup)
			if err != nil {
				return nil, err
			}
			values = append(values, item)
		}
		if all {
			return records, nil
		}
		return values, nil
	}
	return nil, fmt.Errorf("unsupported result type %s", ty.FriendlyName())
}

func asRecord(val cty.Value, lookup func(model, pk string) (schema.Record, bool)) (schema.Record, bool) {
	if val.IsNull() || !val.IsKnown() || !val.Type().IsObjectType() {
		return nil, false
	}
	ty := val.Type()
	if !ty.HasAttribute(schema.ModelKey) || !ty.HasAttribute(schema.PrimaryKey) {
		return nil, false
	}
	model, pk := val.GetAttr(schema.ModelKey), val.GetAttr(schema.PrimaryKey)
	if model.IsNull() || pk.IsNull() || model.Type() != cty.String || pk.Type() != cty.String {
		return nil, false
	}
	return lookup(model.AsString(), pk.AsString())
}

func fromNumber(bf *big.Float) interface{} {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
	}
	f, _ := bf.Float64()
	return f
}

// goValue converts a single attribute for comparisons inside functions
func goValue(val cty.Value) interface{} {
	if val.IsNull() || !val.IsKnown() {
		return nil
	}
	switch val.Type() {
	case cty.String:
		return val.AsString()
	case cty.Bool:
		return val.True()
	case cty.Number:
		return fromNumber(val.AsBigFloat())
	}
	return nil
}
