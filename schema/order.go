package schema

import (
	"sort"
	"strings"

	"github.com/statikgen/statik/internal/errs"
)

// BuildCreationOrder orders models so that every model comes after the
// models its relations point to. Self references never block a model.
func BuildCreationOrder(models map[string]*Model) ([]string, error) {
	pending := make([]string, 0, len(models))
	for name, model := range models {
		for _, dep := range model.Dependencies() {
			if _, ok := models[dep]; !ok {
				return nil, errs.New(errs.ErrInternal, "depends on unknown model %s", dep).WithModel(name)
			}
		}
		pending = append(pending, name)
	}
	sort.Strings(pending)

	var (
		order   = make([]string, 0, len(models))
		emitted = make(map[string]bool, len(models))
	)

	for len(pending) > 0 {
		var stuck []string
		for _, name := range pending {
			ready := true
			for _, dep := range models[name].Dependencies() {
				if !emitted[dep] {
					ready = false
					break
				}
			}

			if ready {
				order = append(order, name)
				emitted[name] = true
			} else {
				stuck = append(stuck, name)
			}
		}

		if len(stuck) == len(pending) {
			return nil, errs.New(errs.ErrCircularDependency, "models depend on each other: %s", strings.Join(stuck, ", "))
		}
		pending = stuck
	}

	return order, nil
}
