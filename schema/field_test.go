package schema

import (
	"errors"
	"testing"

	"github.com/statikgen/statik/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	known := []string{"Author", "Tag", "Post"}

	tests := []struct {
		name, decl    string
		kind          Kind
		target        string
		backPopulates string
	}{
		{"title", "String", String, "", ""},
		{"body", "text", Text, "", ""},
		{"count", "Integer", Integer, "", ""},
		{"published", "Boolean", Boolean, "", ""},
		{"created", "DateTime", DateTime, "", ""},
		{"day", "Date", Date, "", ""},
		{"score", "Float", Float, "", ""},
		{"content", "Content", Content, "", ""},
		{"author", "Author", ForeignKey, "Author", ""},
		{"author", " Author -> posts ", ForeignKey, "Author", "posts"},
		{"tags", "Tag[]", ManyToMany, "Tag", ""},
		{"tags", "Tag[] -> tagged-posts", ManyToMany, "Tag", "tagged_posts"},
	}

	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			field, err := ParseField(tt.name, tt.decl, known)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, field.Kind)
			assert.Equal(t, tt.target, field.Target)
			assert.Equal(t, tt.backPopulates, field.BackPopulates)
			assert.Equal(t, tt.kind == ForeignKey || tt.kind == ManyToMany, field.IsRelation())
		})
	}
}

func TestParseFieldErrors(t *testing.T) {
	known := []string{"Author"}

	tests := []struct {
		decl string
		kind error
	}{
		{"Unknown", errs.ErrInvalidFieldType},
		{"Ghost[]", errs.ErrInvalidFieldType},
		{"", errs.ErrInvalidFieldType},
		{"String -> posts", errs.ErrModel},
		{"Author ->", errs.ErrModel},
	}

	for _, tt := range tests {
		_, err := ParseField("field", tt.decl, known)
		assert.True(t, errors.Is(err, tt.kind), "%q: %v", tt.decl, err)
	}
}

func TestFieldNames(t *testing.T) {
	field, err := ParseField("cover-image", "String", nil)
	require.NoError(t, err)
	assert.Equal(t, "cover_image", field.Name)

	fk, err := ParseField("author", "Author", []string{"Author"})
	require.NoError(t, err)
	assert.Equal(t, "author_id", fk.KeyName())

	m2m, err := ParseField("tags", "Tag[]", []string{"Tag"})
	require.NoError(t, err)
	assert.Equal(t, "tags", m2m.KeyName())
}
