package statik

import (
	"errors"
	"testing"

	"github.com/statikgen/statik/logger"
	"github.com/statikgen/statik/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredQuery(t *testing.T) {
	db := mustOpenDB(t, blogFiles)

	tests := []struct {
		name     string
		query    map[string]interface{}
		expected []string
	}{
		{"all", map[string]interface{}{"from": "Post"}, []string{"third", "hello", "second"}},
		{"where", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"author": "michael"}}, []string{"third", "hello"}},
		{"order by", map[string]interface{}{"from": "Post", "order-by": "-views"}, []string{"hello", "third", "second"}},
		{"date", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"published": map[string]interface{}{"$gte": "2024-02-01"}}, "order_by": "published"}, []string{"second", "third"}},
		{"limit", map[string]interface{}{"from": "Post", "order-by": "published", "limit": 1, "offset": 1}, []string{"second"}},
		{"back reference", map[string]interface{}{"from": "Tag", "where": map[string]interface{}{"pk": map[string]interface{}{"$ne": "web"}}}, []string{"go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []QueryMode{Safe, Unsafe} {
				records, err := db.QueryRecords(tt.query, mode, nil)
				require.NoError(t, err)
				assert.Equal(t, tt.expected, pks(records), mode.String())
			}
		})
	}
}

func TestQueryBindings(t *testing.T) {
	db := mustOpenDB(t, blogFiles)
	jane, err := db.Get("Author", "jane")
	require.NoError(t, err)

	records, err := db.QueryRecords(map[string]interface{}{
		"from":  "Post",
		"where": map[string]interface{}{"author": "$.author.pk"},
	}, Safe, map[string]interface{}{"author": jane})
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, pks(records))
}

func TestSafeModeRejectsExpressions(t *testing.T) {
	db := mustOpenDB(t, blogFiles)

	_, err := db.Query(`[for p in Post : p if p.views > 5]`, Safe, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSafetyViolation))

	records, err := db.QueryRecords(map[string]interface{}{
		"from":  "Post",
		"where": map[string]interface{}{"views": map[string]interface{}{"$gt": 5}},
	}, Safe, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "hello"}, pks(records))
}

func TestUnsafeQuery(t *testing.T) {
	db := mustOpenDB(t, blogFiles)

	records, err := db.QueryRecords(`sort_by_desc([for p in Post : p if p.views > 5], "views")`, Unsafe, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "third"}, pks(records))
	assert.Equal(t, "Michael", records[0]["author"].(schema.Record)["name"])

	count, err := db.Query(`length(Tag)`, Unsafe, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = db.QueryRecords(`length(Tag)`, Unsafe, nil)
	assert.True(t, errors.Is(err, ErrQuery))

	_, err = db.Query(`Post +`, Unsafe, nil)
	assert.True(t, errors.Is(err, ErrQuery))
}

func TestUnsafeQueryNeedsPopulatedDatabase(t *testing.T) {
	dir := writeFiles(t, blogFiles)
	models, err := LoadModels(dir+"/"+ModelsDir, nil)
	require.NoError(t, err)
	db, err := Open(models, &Config{Logger: logger.Discard})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Query(`Post`, Unsafe, nil)
	assert.True(t, errors.Is(err, ErrInternal))
}

func TestQueryErrors(t *testing.T) {
	db := mustOpenDB(t, blogFiles)

	for _, q := range []interface{}{
		map[string]interface{}{"from": "Comment"},
		map[string]interface{}{"from": "Post", "where": map[string]interface{}{"rating": 3}},
		map[string]interface{}{"from": "Post", "order-by": "rating"},
		map[string]interface{}{"from": "Post", "drop": true},
		[]interface{}{"Post"},
	} {
		_, err := db.Query(q, Safe, nil)
		require.Error(t, err, "%v", q)
		assert.True(t, errors.Is(err, ErrQuery) || errors.Is(err, ErrSafetyViolation), err.Error())
	}
}
