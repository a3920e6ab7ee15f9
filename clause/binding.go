package clause

import (
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/schema"
)

// BindingPrefix marks a string value as a JSONPath into the query bindings
const BindingPrefix = "$."

// Resolve replaces `$.`-prefixed strings in value, including inside lists,
// with what the JSONPath selects from bindings
func Resolve(value interface{}, bindings map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		if !strings.HasPrefix(v, BindingPrefix) {
			return v, nil
		}
		return Lookup(v, bindings)
	case []interface{}:
		resolved := make([]interface{}, len(v))
		for i, item := range v {
			r, err := Resolve(item, bindings)
			if err != nil {
				return nil, err
			}
			resolved[i] = r
		}
		return resolved, nil
	}
	return value, nil
}

// Lookup evaluates a JSONPath such as `$.post.author.pk` or `$.tags[0]`
// against bindings. Records are walked by key, so back references between
// records never need to be copied.
func Lookup(path string, bindings map[string]interface{}) (interface{}, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrQuery, err, "invalid binding path %q", path)
	}

	var current interface{} = bindings
	for _, frag := range x {
		switch f := frag.(type) {
		case jp.Root, jp.At, jp.Bracket:
		case jp.Child:
			next, ok := child(current, string(f))
			if !ok {
				return nil, errs.New(errs.ErrQuery, "binding path %q: no key %q", path, string(f))
			}
			current = next
		case jp.Nth:
			next, ok := nth(current, int(f))
			if !ok {
				return nil, errs.New(errs.ErrQuery, "binding path %q: no index %d", path, int(f))
			}
			current = next
		default:
			// wildcards, filters and the like select many values at once
			return nil, errs.New(errs.ErrQuery, "binding path %q must select a single value", path)
		}
	}
	return current, nil
}

func child(v interface{}, key string) (interface{}, bool) {
	switch m := v.(type) {
	case schema.Record:
		value, ok := m[key]
		return value, ok
	case map[string]interface{}:
		value, ok := m[key]
		return value, ok
	case interface{ Map() map[string]interface{} }:
		value, ok := m.Map()[key]
		return value, ok
	}

	// plain structs and other map types
	value := jp.C(key).First(v)
	return value, value != nil
}

func nth(v interface{}, i int) (interface{}, bool) {
	var n int
	switch list := v.(type) {
	case []schema.Record:
		n = len(list)
		if i < 0 {
			i += n
		}
		if i >= 0 && i < n {
			return list[i], true
		}
	case []interface{}:
		n = len(list)
		if i < 0 {
			i += n
		}
		if i >= 0 && i < n {
			return list[i], true
		}
	case []string:
		n = len(list)
		if i < 0 {
			i += n
		}
		if i >= 0 && i < n {
			return list[i], true
		}
	}
	return nil, false
}
