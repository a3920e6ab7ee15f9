package schema

import (
	"sort"

	"github.com/statikgen/statik/internal/errs"
	"gopkg.in/yaml.v3"
)

// Reserved record keys
const (
	PrimaryKey = "pk"
	ModelKey   = "_model"
)

// FieldDecl one `name: Type` line of a model declaration
type FieldDecl struct {
	Name string
	Type string
	Line int
}

// Declaration field declarations of a model in source order
type Declaration []FieldDecl

// DecodeDeclaration decodes a YAML mapping of field name to type, keeping
// the order the fields were written in. An empty document declares no fields.
func DecodeDeclaration(data []byte) (Declaration, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrModel, err, "invalid model declaration")
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Declaration{}, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return Declaration{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &errs.Error{Kind: errs.ErrModel, Line: root.Line, Message: "model declaration must be a mapping"}
	}

	decl := make(Declaration, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.ScalarNode || value.Tag == "!!null" {
			return nil, &errs.Error{Kind: errs.ErrModel, Field: key.Value, Line: value.Line, Message: "field type must be a string"}
		}
		decl = append(decl, FieldDecl{Name: key.Value, Type: value.Value, Line: key.Line})
	}
	return decl, nil
}

// Model a declared content type
type Model struct {
	Name                    string
	Table                   string
	Fields                  []*Field
	FieldsByName            map[string]*Field
	ContentField            *Field
	ForeignModels           []string
	AdditionalRelationships []*Relationship
	relationshipsByName     map[string]*Relationship
}

// ParseModel builds a model from its declaration. Relation targets must be
// in known, which normally lists every model of the project.
func ParseModel(name string, decl Declaration, known []string, namer Namer) (*Model, error) {
	if name == "" {
		return nil, errs.New(errs.ErrModel, "model name is empty")
	}
	if namer == nil {
		namer = NamingStrategy{}
	}

	model := &Model{
		Name:                name,
		Table:               namer.TableName(name),
		FieldsByName:        map[string]*Field{},
		relationshipsByName: map[string]*Relationship{},
	}

	foreign := map[string]bool{}
	for _, fd := range decl {
		field, err := ParseField(fd.Name, fd.Type, known)
		if err != nil {
			if e, ok := err.(*errs.Error); ok {
				e.Line = fd.Line
				return nil, e.WithModel(name)
			}
			return nil, err
		}
		field.Model = model

		if field.Name == PrimaryKey || field.Name == ModelKey {
			return nil, &errs.Error{Kind: errs.ErrModel, Model: name, Field: field.Name, Line: fd.Line, Message: "reserved field name"}
		}
		if _, ok := model.FieldsByName[field.Name]; ok {
			return nil, &errs.Error{Kind: errs.ErrModel, Model: name, Field: field.Name, Line: fd.Line, Message: "field declared twice"}
		}

		if field.Kind == Content {
			if model.ContentField != nil {
				return nil, &errs.Error{
					Kind: errs.ErrModel, Model: name, Field: field.Name, Line: fd.Line,
					Message: "only one Content field allowed, already have " + model.ContentField.Name,
				}
			}
			model.ContentField = field
		}

		if field.IsRelation() && !foreign[field.Target] {
			foreign[field.Target] = true
			model.ForeignModels = append(model.ForeignModels, field.Target)
		}

		model.Fields = append(model.Fields, field)
		model.FieldsByName[field.Name] = field
	}

	// derived foreign keys may not shadow declared fields
	for _, field := range model.Fields {
		if field.Kind != ForeignKey {
			continue
		}
		if _, ok := model.FieldsByName[field.KeyName()]; ok {
			return nil, errs.New(errs.ErrModel, "%s clashes with the key of foreign key %s", field.KeyName(), field.Name).
				WithModel(name).WithField(field.KeyName())
		}
	}

	sort.Strings(model.ForeignModels)
	return model, nil
}

// LookUpField returns the declared field with the given name
func (model *Model) LookUpField(name string) *Field {
	return model.FieldsByName[name]
}

// LookUpRelationship returns the back-populated relationship with the given name
func (model *Model) LookUpRelationship(name string) *Relationship {
	return model.relationshipsByName[name]
}

// HasKey reports whether records of the model can carry key
func (model *Model) HasKey(key string) bool {
	if key == PrimaryKey || key == ModelKey {
		return true
	}
	if _, ok := model.FieldsByName[key]; ok {
		return true
	}
	if _, ok := model.relationshipsByName[key]; ok {
		return true
	}
	for _, field := range model.Fields {
		if field.Kind == ForeignKey && field.KeyName() == key {
			return true
		}
	}
	return false
}

// IsPkOnly reports whether the model declares no fields, so instances
// can be created from a primary key alone
func (model *Model) IsPkOnly() bool {
	return len(model.Fields) == 0
}

// Dependencies models that must exist before this one, without self references
func (model *Model) Dependencies() []string {
	deps := make([]string, 0, len(model.ForeignModels))
	for _, name := range model.ForeignModels {
		if name != model.Name {
			deps = append(deps, name)
		}
	}
	return deps
}
