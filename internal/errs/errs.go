// Package errs holds the error taxonomy shared by every build phase.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingParameter a required declaration is missing
	ErrMissingParameter = errors.New("missing parameter")
	// ErrProjectConfiguration malformed project configuration
	ErrProjectConfiguration = errors.New("invalid project configuration")
	// ErrMissingProjectConfig no config.yml found for the project
	ErrMissingProjectConfig = errors.New("missing project configuration")
	// ErrMissingProjectFolder a required project folder does not exist
	ErrMissingProjectFolder = errors.New("missing project folder")
	// ErrNoViews project declares no views
	ErrNoViews = errors.New("no views in project")

	// ErrInvalidFieldType unknown field type
	ErrInvalidFieldType = errors.New("invalid field type")
	// ErrModel malformed model declaration
	ErrModel = errors.New("model error")
	// ErrCircularDependency models reference each other in a cycle
	ErrCircularDependency = errors.New("circular dependency")

	// ErrDuplicateInstance two records share a primary key
	ErrDuplicateInstance = errors.New("duplicate instance")
	// ErrInvalidCollection malformed collection file
	ErrInvalidCollection = errors.New("invalid model collection data")
	// ErrDataCoercion a value could not be converted to its field kind
	ErrDataCoercion = errors.New("data coercion failed")
	// ErrDanglingReference a relation points at a record that does not exist
	ErrDanglingReference = errors.New("dangling reference")
	// ErrUnsupportedSource unsupported content file
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrSafetyViolation free-form query issued in safe mode
	ErrSafetyViolation = errors.New("safety violation")
	// ErrQuery malformed query
	ErrQuery = errors.New("query error")

	// ErrView view declaration or rendering failure
	ErrView = errors.New("view error")
	// ErrTemplate template loading or rendering failure
	ErrTemplate = errors.New("template error")
	// ErrTreeConflict a file and a directory share an output path
	ErrTreeConflict = errors.New("output tree conflict")

	// ErrInternal invariant violation inside the compiler
	ErrInternal = errors.New("internal error")
	// ErrDatabaseClosed database used after its build pass ended
	ErrDatabaseClosed = errors.New("database closed")

	// ErrExternalDatabase external database import failure
	ErrExternalDatabase = errors.New("external database error")
)

// Error carries the kind of failure plus whatever source context is known.
type Error struct {
	Kind    error
	Model   string
	Field   string
	PK      string
	File    string
	Line    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())

	var where []string
	if e.Model != "" {
		where = append(where, "model="+e.Model)
	}
	if e.PK != "" {
		where = append(where, "pk="+e.PK)
	}
	if e.Field != "" {
		where = append(where, "field="+e.Field)
	}
	if e.File != "" {
		if e.Line > 0 {
			where = append(where, fmt.Sprintf("file=%s:%d", e.File, e.Line))
		} else {
			where = append(where, "file="+e.File)
		}
	}
	if len(where) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(where, ", "))
		b.WriteString(")")
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches the sentinel kind
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New build an error of the given kind
func New(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap build an error of the given kind around a cause
func Wrap(kind error, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithModel sets the model context
func (e *Error) WithModel(model string) *Error {
	e.Model = model
	return e
}

// WithField sets the field context
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithPK sets the record context
func (e *Error) WithPK(pk string) *Error {
	e.PK = pk
	return e
}

// WithFile sets the source file context
func (e *Error) WithFile(file string) *Error {
	e.File = file
	return e
}

// InFile attaches file context to err when it is an *Error without one,
// wrapping foreign errors as kind.
func InFile(err error, kind error, file string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.File == "" {
			e.File = file
		}
		return err
	}
	return &Error{Kind: kind, File: file, Err: err}
}
