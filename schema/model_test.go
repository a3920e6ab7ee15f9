package schema

import (
	"errors"
	"testing"

	"github.com/statikgen/statik/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecl(t *testing.T, src string) Declaration {
	t.Helper()
	decl, err := DecodeDeclaration([]byte(src))
	require.NoError(t, err)
	return decl
}

func TestDecodeDeclarationKeepsOrder(t *testing.T) {
	decl := mustDecl(t, "title: String\nauthor: Author\ncontent: Content\nalpha: Integer\n")
	names := make([]string, 0, len(decl))
	for _, fd := range decl {
		names = append(names, fd.Name)
	}
	assert.Equal(t, []string{"title", "author", "content", "alpha"}, names)
	assert.Equal(t, 2, decl[1].Line)

	assert.Empty(t, mustDecl(t, ""))
	assert.Empty(t, mustDecl(t, "~\n"))

	_, err := DecodeDeclaration([]byte("- a\n- b\n"))
	assert.True(t, errors.Is(err, errs.ErrModel))

	_, err = DecodeDeclaration([]byte("tags: [Tag]\n"))
	assert.True(t, errors.Is(err, errs.ErrModel))
}

func TestParseModel(t *testing.T) {
	known := []string{"Author", "Post", "Tag"}
	model, err := ParseModel("Post", mustDecl(t, `
title: String
author: Author -> posts
tags: Tag[]
parent: Post
content: Content
`), known, nil)
	require.NoError(t, err)

	assert.Equal(t, "Post", model.Name)
	assert.Equal(t, "posts", model.Table)
	assert.Len(t, model.Fields, 5)
	assert.Equal(t, "content", model.ContentField.Name)
	assert.Equal(t, []string{"Author", "Post", "Tag"}, model.ForeignModels)
	assert.Equal(t, []string{"Author", "Tag"}, model.Dependencies())
	assert.True(t, model.LookUpField("parent").IsSelfReference())
	assert.False(t, model.LookUpField("author").IsSelfReference())

	assert.True(t, model.HasKey("pk"))
	assert.True(t, model.HasKey("author_id"))
	assert.True(t, model.HasKey("tags"))
	assert.False(t, model.HasKey("tags_id"))
	assert.False(t, model.IsPkOnly())
}

func TestParseModelNameIsNotReserved(t *testing.T) {
	model, err := ParseModel("Author", mustDecl(t, "name: String\n"), nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, model.LookUpField("name"))
}

func TestParseModelErrors(t *testing.T) {
	known := []string{"Author"}

	tests := []struct {
		name string
		src  string
		kind error
	}{
		{"two content fields", "a: Content\nb: Content\n", errs.ErrModel},
		{"reserved pk", "pk: String\n", errs.ErrModel},
		{"reserved model key", "_model: String\n", errs.ErrModel},
		{"unknown type", "title: Strin\n", errs.ErrInvalidFieldType},
		{"fk key clash", "author: Author\nauthor_id: String\n", errs.ErrModel},
		{"duplicate after underscore", "cover-image: String\ncover_image: String\n", errs.ErrModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModel("Post", mustDecl(t, tt.src), known, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), err.Error())
			assert.Contains(t, err.Error(), "model=Post")
		})
	}
}

func TestPkOnlyModel(t *testing.T) {
	model, err := ParseModel("Tag", mustDecl(t, ""), nil, nil)
	require.NoError(t, err)
	assert.True(t, model.IsPkOnly())
	assert.Nil(t, model.ContentField)
	assert.Empty(t, model.Dependencies())
}
