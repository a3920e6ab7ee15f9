package script

import (
	"fmt"
	"sort"

	"github.com/statikgen/statik/clause"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

func listParam(name string) function.Parameter {
	return function.Parameter{Name: name, Type: cty.DynamicPseudoType}
}

func elements(list cty.Value) ([]cty.Value, error) {
	if list.IsNull() {
		return nil, nil
	}
	ty := list.Type()
	if !ty.IsTupleType() && !ty.IsListType() && !ty.IsSetType() {
		return nil, fmt.Errorf("expected a list, got %s", ty.FriendlyName())
	}
	values := make([]cty.Value, 0, list.LengthInt())
	for it := list.ElementIterator(); it.Next(); {
		_, v := it.Element()
		values = append(values, v)
	}
	return values, nil
}

func attr(v cty.Value, name string) cty.Value {
	if v.IsNull() || !v.IsKnown() {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	ty := v.Type()
	switch {
	case ty.IsObjectType():
		if ty.HasAttribute(name) {
			return v.GetAttr(name)
		}
	case ty.IsMapType():
		key := cty.StringVal(name)
		if v.HasIndex(key).True() {
			return v.Index(key)
		}
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

func count(v cty.Value) (int, error) {
	if v.IsNull() || v.Type() != cty.Number {
		return 0, fmt.Errorf("expected a number")
	}
	n, _ := v.AsBigFloat().Int64()
	if n < 0 {
		return 0, fmt.Errorf("expected a non-negative number, got %d", n)
	}
	return int(n), nil
}

func sortFunc(desc bool) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{listParam("list"), {Name: "field", Type: cty.String}},
		Type:   function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			values, err := elements(args[0])
			if err != nil {
				return cty.NilVal, err
			}
			field := args[1].AsString()
			sort.SliceStable(values, func(i, j int) bool {
				c, ok := clause.Compare(goValue(attr(values[i], field)), goValue(attr(values[j], field)))
				if !ok {
					return false
				}
				if desc {
					return c > 0
				}
				return c < 0
			})
			return tuple(values), nil
		},
	})
}

var limitFunc = function.New(&function.Spec{
	Params: []function.Parameter{listParam("list"), {Name: "n", Type: cty.Number}},
	Type:   function.StaticReturnType(cty.DynamicPseudoType),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		values, err := elements(args[0])
		if err != nil {
			return cty.NilVal, err
		}
		n, err := count(args[1])
		if err != nil {
			return cty.NilVal, err
		}
		if n < len(values) {
			values = values[:n]
		}
		return tuple(values), nil
	},
})

var offsetFunc = function.New(&function.Spec{
	Params: []function.Parameter{listParam("list"), {Name: "n", Type: cty.Number}},
	Type:   function.StaticReturnType(cty.DynamicPseudoType),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		values, err := elements(args[0])
		if err != nil {
			return cty.NilVal, err
		}
		n, err := count(args[1])
		if err != nil {
			return cty.NilVal, err
		}
		if n >= len(values) {
			return cty.EmptyTupleVal, nil
		}
		return tuple(values[n:]), nil
	},
})

var reverseFunc = function.New(&function.Spec{
	Params: []function.Parameter{listParam("list")},
	Type:   function.StaticReturnType(cty.DynamicPseudoType),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		values, err := elements(args[0])
		if err != nil {
			return cty.NilVal, err
		}
		for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
			values[i], values[j] = values[j], values[i]
		}
		return tuple(values), nil
	},
})

var whereEqFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		listParam("list"),
		{Name: "field", Type: cty.String},
		{Name: "value", Type: cty.DynamicPseudoType, AllowNull: true},
	},
	Type: function.StaticReturnType(cty.DynamicPseudoType),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		values, err := elements(args[0])
		if err != nil {
			return cty.NilVal, err
		}
		field, want := args[1].AsString(), goValue(args[2])
		matched := make([]cty.Value, 0, len(values))
		for _, v := range values {
			if clause.Equal(goValue(attr(v, field)), want) {
				matched = append(matched, v)
			}
		}
		return tuple(matched), nil
	},
})

var getFunc = function.New(&function.Spec{
	Params: []function.Parameter{listParam("list"), {Name: "pk", Type: cty.String}},
	Type:   function.StaticReturnType(cty.DynamicPseudoType),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		values, err := elements(args[0])
		if err != nil {
			return cty.NilVal, err
		}
		pk := args[1].AsString()
		for _, v := range values {
			if id := attr(v, "pk"); !id.IsNull() && id.Type() == cty.String && id.AsString() == pk {
				return v, nil
			}
		}
		return cty.NilVal, fmt.Errorf("no record with pk %q", pk)
	},
})

// Functions available to every expression
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"sort_by":      sortFunc(false),
		"sort_by_desc": sortFunc(true),
		"limit":        limitFunc,
		"offset":       offsetFunc,
		"reverse":      reverseFunc,
		"where_eq":     whereEqFunc,
		"get":          getFunc,
		"length":       stdlib.LengthFunc,
		"upper":        stdlib.UpperFunc,
		"lower":        stdlib.LowerFunc,
		"concat":       stdlib.ConcatFunc,
		"max":          stdlib.MaxFunc,
		"min":          stdlib.MinFunc,
	}
}
