package clause

import (
	"errors"
	"testing"
	"time"

	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postModel(t *testing.T) *schema.Model {
	t.Helper()
	decl, err := schema.DecodeDeclaration([]byte(`
title: String
score: Integer
published: Boolean
created: DateTime
author: Author
tags: Tag[]
`))
	require.NoError(t, err)
	model, err := schema.ParseModel("Post", decl, []string{"Author", "Tag"}, nil)
	require.NoError(t, err)
	return model
}

func post(pk, title string, score int64, published bool, day int, author string, tags ...string) schema.Record {
	r := schema.NewRecord("Post", pk)
	r["title"] = title
	r["score"] = score
	r["published"] = published
	r["created"] = time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
	r["author_id"] = author
	r["author"] = schema.NewRecord("Author", author)
	list := make([]schema.Record, 0, len(tags))
	for _, tag := range tags {
		list = append(list, schema.NewRecord("Tag", tag))
	}
	r["tags"] = list
	return r
}

func fixtures() []schema.Record {
	return []schema.Record{
		post("a", "Alpha", 5, true, 3, "jane", "go"),
		post("b", "Beta", 1, false, 1, "joe", "go", "web"),
		post("c", "Gamma", 9, true, 2, "jane"),
		post("d", "Delta", 5, true, 4, "joe", "web"),
	}
}

func pks(records []schema.Record) []string {
	result := make([]string, 0, len(records))
	for _, r := range records {
		result = append(result, r.PK())
	}
	return result
}

func run(t *testing.T, spec map[string]interface{}, bindings map[string]interface{}) []string {
	t.Helper()
	model := postModel(t)
	query, err := Parse(spec, bindings)
	require.NoError(t, err)
	require.NoError(t, query.Validate(model))
	result, err := query.Apply(fixtures(), model)
	require.NoError(t, err)
	return pks(result)
}

func TestQueries(t *testing.T) {
	tests := []struct {
		name     string
		spec     map[string]interface{}
		expected []string
	}{
		{"all", map[string]interface{}{"from": "Post"}, []string{"a", "b", "c", "d"}},
		{"eq", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"published": true}}, []string{"a", "c", "d"}},
		{"fk by pk", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"author": "jane"}}, []string{"a", "c"}},
		{"gt lte", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"score": map[string]interface{}{"$gt": 1, "$lte": 5}}}, []string{"a", "d"}},
		{"ne", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"score": map[string]interface{}{"$ne": 5}}}, []string{"b", "c"}},
		{"in", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"pk": map[string]interface{}{"$in": []interface{}{"a", "d", "x"}}}}, []string{"a", "d"}},
		{"nin", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"pk": map[string]interface{}{"$nin": []interface{}{"a", "d"}}}}, []string{"b", "c"}},
		{"like", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"title": map[string]interface{}{"$like": "%ta"}}}, []string{"b", "d"}},
		{"contains", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"tags": map[string]interface{}{"$contains": "web"}}}, []string{"b", "d"}},
		{"date string", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"created": map[string]interface{}{"$gte": "2024-01-03"}}}, []string{"a", "d"}},
		{"or", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"$or": []interface{}{
			map[string]interface{}{"pk": "b"},
			map[string]interface{}{"score": 9},
		}}}, []string{"b", "c"}},
		{"not", map[string]interface{}{"from": "Post", "where": map[string]interface{}{"$not": map[string]interface{}{"author": "joe"}}}, []string{"a", "c"}},
		{"order desc then asc", map[string]interface{}{"from": "Post", "order-by": []interface{}{"-score", "title"}}, []string{"c", "a", "d", "b"}},
		{"order by date", map[string]interface{}{"from": "Post", "order_by": "created"}, []string{"b", "c", "a", "d"}},
		{"limit offset", map[string]interface{}{"from": "Post", "order-by": "pk", "limit": 2, "offset": 1}, []string{"b", "c"}},
		{"skip past end", map[string]interface{}{"from": "Post", "skip": 10}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, run(t, tt.spec, nil))
		})
	}
}

func TestStableOrder(t *testing.T) {
	got := run(t, map[string]interface{}{"from": "Post", "order-by": "-score"}, nil)
	assert.Equal(t, []string{"c", "a", "d", "b"}, got, "ties keep load order")
}

func TestBindingReferences(t *testing.T) {
	jane := schema.NewRecord("Author", "jane")
	bindings := map[string]interface{}{
		"author":  jane,
		"current": map[string]interface{}{"tags": []interface{}{"go"}},
		"limits":  map[string]interface{}{"min": 5},
	}

	assert.Equal(t, []string{"a", "c"}, run(t, map[string]interface{}{
		"from":  "Post",
		"where": map[string]interface{}{"author": "$.author"},
	}, bindings))

	assert.Equal(t, []string{"a", "c", "d"}, run(t, map[string]interface{}{
		"from":  "Post",
		"where": map[string]interface{}{"score": map[string]interface{}{"$gte": "$.limits.min"}},
	}, bindings))

	assert.Equal(t, []string{"a", "b"}, run(t, map[string]interface{}{
		"from":  "Post",
		"where": map[string]interface{}{"tags": map[string]interface{}{"$contains": "$.current.tags[0]"}},
	}, bindings))

	_, err := Parse(map[string]interface{}{
		"from":  "Post",
		"where": map[string]interface{}{"author": "$.missing"},
	}, bindings)
	assert.True(t, errors.Is(err, errs.ErrQuery))
}

func TestSafetyViolations(t *testing.T) {
	for _, q := range []interface{}{
		"Post.select()",
		[]interface{}{"Post"},
		map[string]interface{}{"from": "Post", "exec": "rm"},
		map[string]interface{}{"from": "Post", "where": "published == true"},
		nil,
	} {
		_, err := Parse(q, nil)
		assert.True(t, errors.Is(err, errs.ErrSafetyViolation), "%v: %v", q, err)
	}
}

func TestQueryErrors(t *testing.T) {
	model := postModel(t)

	for _, q := range []map[string]interface{}{
		{"where": map[string]interface{}{}},
		{"from": "Post", "where": map[string]interface{}{"score": map[string]interface{}{"$between": 1}}},
		{"from": "Post", "where": map[string]interface{}{"$xor": []interface{}{}}},
		{"from": "Post", "limit": -1},
		{"from": "Post", "limit": "many"},
		{"from": "Post", "where": map[string]interface{}{"pk": map[string]interface{}{"$in": "a"}}},
		{"from": "Post", "order-by": 3},
	} {
		_, err := Parse(q, nil)
		assert.True(t, errors.Is(err, errs.ErrQuery), "%v: %v", q, err)
	}

	query, err := Parse(map[string]interface{}{"from": "Post", "where": map[string]interface{}{"subtitle": "x"}}, nil)
	require.NoError(t, err)
	err = query.Validate(model)
	assert.True(t, errors.Is(err, errs.ErrQuery))
	assert.Contains(t, err.Error(), "field=subtitle")

	query, err = Parse(map[string]interface{}{"from": "Author"}, nil)
	require.NoError(t, err)
	assert.True(t, errors.Is(query.Validate(model), errs.ErrQuery))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	model := postModel(t)
	records := fixtures()
	query, err := Parse(map[string]interface{}{"from": "Post", "order-by": "-pk"}, nil)
	require.NoError(t, err)

	_, err = query.Apply(records, model)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, pks(records))
}
