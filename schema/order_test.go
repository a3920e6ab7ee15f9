package schema

import (
	"errors"
	"testing"

	"github.com/statikgen/statik/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}

func TestBuildCreationOrder(t *testing.T) {
	models := parseModels(t, map[string]string{
		"Author":   "name: String\n",
		"Post":     "author: Author\ntags: Tag[]\ncategory: Category\n",
		"Tag":      "",
		"Category": "parent: Category\n",
		"Comment":  "post: Post\nauthor: Author\n",
	})

	order, err := BuildCreationOrder(models)
	require.NoError(t, err)
	assert.Len(t, order, len(models))

	for name, model := range models {
		for _, dep := range model.Dependencies() {
			assert.Less(t, indexOf(order, dep), indexOf(order, name), "%s must come after %s", name, dep)
		}
	}

	again, err := BuildCreationOrder(models)
	require.NoError(t, err)
	assert.Equal(t, order, again)
}

func TestSelfReferenceIsNotACycle(t *testing.T) {
	models := parseModels(t, map[string]string{
		"Employee": "name: String\nmanager: Employee\n",
	})
	order, err := BuildCreationOrder(models)
	require.NoError(t, err)
	assert.Equal(t, []string{"Employee"}, order)
}

func TestCircularDependency(t *testing.T) {
	models := parseModels(t, map[string]string{
		"A":    "b: B\n",
		"B":    "a: A\n",
		"Free": "title: String\n",
	})
	_, err := BuildCreationOrder(models)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrCircularDependency))
	assert.Contains(t, err.Error(), "A, B")
	assert.NotContains(t, err.Error(), "Free")
}

func TestCreationOrderUnknownDependency(t *testing.T) {
	models := parseModels(t, map[string]string{
		"A": "b: B\n",
		"B": "",
	})
	delete(models, "B")
	_, err := BuildCreationOrder(models)
	assert.True(t, errors.Is(err, errs.ErrInternal))
}
