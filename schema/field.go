package schema

import (
	"strings"

	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/utils"
)

// Kind field kind
type Kind string

const (
	String     Kind = "String"
	Text       Kind = "Text"
	Integer    Kind = "Integer"
	Boolean    Kind = "Boolean"
	DateTime   Kind = "DateTime"
	Date       Kind = "Date"
	Float      Kind = "Float"
	Content    Kind = "Content"
	ForeignKey Kind = "ForeignKey"
	ManyToMany Kind = "ManyToMany"
)

// ScalarKinds kinds that can be named directly in a field declaration
var ScalarKinds = []Kind{String, Text, Integer, Boolean, DateTime, Date, Float, Content}

const (
	manyMarker     = "[]"
	backPopulateOp = "->"
)

// IsScalar reports whether the kind stores a plain value
func (k Kind) IsScalar() bool {
	return k != ForeignKey && k != ManyToMany
}

// Field one declared field of a model
type Field struct {
	Name          string
	Kind          Kind
	Target        string
	BackPopulates string
	Model         *Model
}

// IsRelation reports whether the field references another model
func (field *Field) IsRelation() bool {
	return !field.Kind.IsScalar()
}

// KeyName name of the record key storing the raw target pk of a foreign key
func (field *Field) KeyName() string {
	if field.Kind == ForeignKey {
		return field.Name + "_id"
	}
	return field.Name
}

// IsSelfReference reports whether the field points back at its own model
func (field *Field) IsSelfReference() bool {
	return field.IsRelation() && field.Model != nil && field.Target == field.Model.Name
}

func lookupScalar(name string) (Kind, bool) {
	for _, kind := range ScalarKinds {
		if strings.EqualFold(string(kind), name) {
			return kind, true
		}
	}
	return "", false
}

// ParseField parses a field declaration such as `String`, `Author`,
// `Author -> posts`, `Tag[]` or `Tag[] -> posts`. Relation targets must be
// one of known.
func ParseField(name, decl string, known []string) (*Field, error) {
	field := &Field{Name: strings.ReplaceAll(strings.TrimSpace(name), "-", "_")}
	if field.Name == "" {
		return nil, errs.New(errs.ErrModel, "empty field name")
	}

	typeName := strings.TrimSpace(decl)
	if idx := strings.Index(typeName, backPopulateOp); idx >= 0 {
		field.BackPopulates = strings.ReplaceAll(strings.TrimSpace(typeName[idx+len(backPopulateOp):]), "-", "_")
		typeName = strings.TrimSpace(typeName[:idx])
		if field.BackPopulates == "" {
			return nil, errs.New(errs.ErrModel, "malformed back-populate in %q", decl).WithField(field.Name)
		}
	}

	if typeName == "" {
		return nil, errs.New(errs.ErrInvalidFieldType, "missing type").WithField(field.Name)
	}

	if strings.HasSuffix(typeName, manyMarker) {
		field.Kind = ManyToMany
		field.Target = strings.TrimSpace(strings.TrimSuffix(typeName, manyMarker))
	} else if kind, ok := lookupScalar(typeName); ok {
		field.Kind = kind
	} else {
		field.Kind = ForeignKey
		field.Target = typeName
	}

	if field.IsRelation() {
		if !utils.Contains(known, field.Target) {
			return nil, errs.New(errs.ErrInvalidFieldType, "unknown type %q", typeName).WithField(field.Name)
		}
	} else if field.BackPopulates != "" {
		return nil, errs.New(errs.ErrModel, "%s fields cannot back-populate", field.Kind).WithField(field.Name)
	}

	return field, nil
}
