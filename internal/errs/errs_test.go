package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKind(t *testing.T) {
	err := New(ErrDuplicateInstance, "pk already loaded").WithModel("Post").WithPK("hello")

	assert.True(t, errors.Is(err, ErrDuplicateInstance))
	assert.False(t, errors.Is(err, ErrModel))
	assert.Equal(t, "duplicate instance (model=Post, pk=hello): pk already loaded", err.Error())

	wrapped := fmt.Errorf("build: %w", err)
	assert.True(t, errors.Is(wrapped, ErrDuplicateInstance))
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("bad yaml")
	err := Wrap(ErrProjectConfiguration, cause, "parse config").WithFile("config.yml")

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "file=config.yml")
	assert.Contains(t, err.Error(), "bad yaml")
}

func TestInFile(t *testing.T) {
	assert.Nil(t, InFile(nil, ErrView, "a.yml"))

	err := InFile(New(ErrModel, "boom"), ErrView, "a.yml")
	assert.True(t, errors.Is(err, ErrModel))
	assert.Contains(t, err.Error(), "file=a.yml")

	err = InFile(errors.New("plain"), ErrView, "b.yml")
	assert.True(t, errors.Is(err, ErrView))
	assert.Contains(t, err.Error(), "file=b.yml")

	keep := New(ErrModel, "boom").WithFile("first.yml")
	err = InFile(keep, ErrView, "second.yml")
	assert.Contains(t, err.Error(), "file=first.yml")
}
