package script

import (
	"errors"
	"html/template"
	"testing"
	"time"

	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct{ number int }

func (p page) Map() map[string]interface{} {
	return map[string]interface{}{"number": p.number}
}

func tables() map[string][]schema.Record {
	jane := schema.NewRecord("Author", "jane")
	jane["name"] = "Jane"
	joe := schema.NewRecord("Author", "joe")
	joe["name"] = "Joe"

	post := func(pk string, published bool, day int, author schema.Record, score int64) schema.Record {
		r := schema.NewRecord("Post", pk)
		r["title"] = "Title " + pk
		r["published"] = published
		r["created"] = time.Date(2024, 2, day, 10, 0, 0, 0, time.UTC)
		r["author_id"] = author.PK()
		r["author"] = author
		r["score"] = score
		r["content"] = template.HTML("<p>" + pk + "</p>")
		return r
	}

	posts := []schema.Record{
		post("first", true, 1, jane, 3),
		post("second", false, 2, joe, 7),
		post("third", true, 3, jane, 5),
	}
	jane["posts"] = []schema.Record{posts[0], posts[2]}
	joe["posts"] = []schema.Record{posts[1]}

	return map[string][]schema.Record{
		"Author": {jane, joe},
		"Post":   posts,
	}
}

func pks(t *testing.T, v interface{}) []string {
	t.Helper()
	records, ok := v.([]schema.Record)
	require.True(t, ok, "expected records, got %T", v)
	result := make([]string, 0, len(records))
	for _, r := range records {
		result = append(result, r.PK())
	}
	return result
}

func TestEvalRecordQueries(t *testing.T) {
	e := New(tables())

	tests := []struct {
		src      string
		expected []string
	}{
		{`Post`, []string{"first", "second", "third"}},
		{`[for p in Post : p if p.published]`, []string{"first", "third"}},
		{`sort_by_desc([for p in Post : p if p.published], "created")`, []string{"third", "first"}},
		{`sort_by(Post, "score")`, []string{"first", "third", "second"}},
		{`limit(sort_by_desc(Post, "score"), 2)`, []string{"second", "third"}},
		{`offset(Post, 2)`, []string{"third"}},
		{`offset(Post, 9)`, []string{}},
		{`reverse(Post)`, []string{"third", "second", "first"}},
		{`where_eq(Post, "author", "jane")`, []string{"first", "third"}},
		{`[for p in Post : p if p.author == author.pk]`, []string{"first", "third"}},
	}

	bindings := map[string]interface{}{"author": tables()["Author"][0]}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := e.Eval(tt.src, bindings)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, pks(t, got))
		})
	}
}

func TestEvalReturnsStoredRecords(t *testing.T) {
	data := tables()
	e := New(data)

	got, err := e.Eval(`get(Post, "second")`, nil)
	require.NoError(t, err)
	record, ok := got.(schema.Record)
	require.True(t, ok)
	assert.Equal(t, "second", record.PK())
	assert.Equal(t, template.HTML("<p>second</p>"), record["content"])
	author, ok := record["author"].(schema.Record)
	require.True(t, ok)
	assert.Equal(t, "Joe", author["name"])
}

func TestEvalScalars(t *testing.T) {
	e := New(tables())

	got, err := e.Eval(`length(Post)`, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)

	got, err = e.Eval(`upper(get(Author, "jane").name)`, nil)
	require.NoError(t, err)
	assert.Equal(t, "JANE", got)

	got, err = e.Eval(`get(Post, "first").created`, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01T10:00:00Z", got)

	got, err = e.Eval(`page.number * 10`, map[string]interface{}{"page": page{number: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(20), got)

	got, err = e.Eval(`[for p in Post : p.title]`, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Title first", "Title second", "Title third"}, got)

	got, err = e.Eval(`get(Author, "jane").posts`, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"first", "third"}, got)

	got, err = e.Eval(`max(1.5, 2)`, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestEvalErrors(t *testing.T) {
	e := New(tables())

	for _, src := range []string{
		`Post[`,
		`Unknown`,
		`get(Post, "missing")`,
		`limit(Post, -1)`,
		`sort_by("Post", "title")`,
	} {
		_, err := e.Eval(src, nil)
		assert.True(t, errors.Is(err, errs.ErrQuery), "%s: %v", src, err)
	}
}

func TestEvalReusesParsedExpressions(t *testing.T) {
	e := New(tables())
	src := `[for p in Post : p if p.author == author.pk]`

	for _, author := range tables()["Author"] {
		_, err := e.Eval(src, map[string]interface{}{"author": author})
		require.NoError(t, err)
	}
	_, err := e.Eval(`Post[`, nil)
	require.Error(t, err)

	assert.Equal(t, []string{src}, e.exprs.Keys())
}
