package statik

import "github.com/statikgen/statik/internal/errs"

// Error the error type returned by every build phase. It matches its kind
// with errors.Is and names the offending model, record, field and file.
type Error = errs.Error

var (
	// ErrMissingParameter a required declaration is missing
	ErrMissingParameter = errs.ErrMissingParameter
	// ErrProjectConfiguration malformed project configuration
	ErrProjectConfiguration = errs.ErrProjectConfiguration
	// ErrMissingProjectConfig no config.yml found for the project
	ErrMissingProjectConfig = errs.ErrMissingProjectConfig
	// ErrMissingProjectFolder a required project folder does not exist
	ErrMissingProjectFolder = errs.ErrMissingProjectFolder
	// ErrNoViews project declares no views
	ErrNoViews = errs.ErrNoViews
	// ErrInvalidFieldType unknown field type
	ErrInvalidFieldType = errs.ErrInvalidFieldType
	// ErrModel malformed model declaration
	ErrModel = errs.ErrModel
	// ErrCircularDependency models reference each other in a cycle
	ErrCircularDependency = errs.ErrCircularDependency
	// ErrDuplicateInstance two records share a primary key
	ErrDuplicateInstance = errs.ErrDuplicateInstance
	// ErrInvalidCollection malformed collection file
	ErrInvalidCollection = errs.ErrInvalidCollection
	// ErrDataCoercion a value could not be converted to its field kind
	ErrDataCoercion = errs.ErrDataCoercion
	// ErrDanglingReference a relation points at a record that does not exist
	ErrDanglingReference = errs.ErrDanglingReference
	// ErrUnsupportedSource unsupported content file
	ErrUnsupportedSource = errs.ErrUnsupportedSource
	// ErrSafetyViolation free-form query issued in safe mode
	ErrSafetyViolation = errs.ErrSafetyViolation
	// ErrQuery malformed query
	ErrQuery = errs.ErrQuery
	// ErrView view declaration or rendering failure
	ErrView = errs.ErrView
	// ErrTemplate template loading or rendering failure
	ErrTemplate = errs.ErrTemplate
	// ErrTreeConflict a file and a directory share an output path
	ErrTreeConflict = errs.ErrTreeConflict
	// ErrInternal invariant violation inside the compiler
	ErrInternal = errs.ErrInternal
	// ErrDatabaseClosed database used after its build pass ended
	ErrDatabaseClosed = errs.ErrDatabaseClosed
	// ErrExternalDatabase external database import failure
	ErrExternalDatabase = errs.ErrExternalDatabase
)
