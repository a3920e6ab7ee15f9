package schema

import (
	"sort"

	"github.com/statikgen/statik/internal/errs"
)

// RelationshipType relationship type
type RelationshipType string

const (
	HasMany   RelationshipType = "has_many"     // inverse of a foreign key
	Many2Many RelationshipType = "many_to_many" // inverse of a many to many field
)

// Relationship an inverse collection added to a model by another model's
// back-populating field
type Relationship struct {
	Name        string
	Type        RelationshipType
	Model       *Model
	SourceModel *Model
	SourceField *Field
	JoinTable   JoinTableKey
}

// JoinTableKey identity of the join table linking two models, the model
// names in sorted order
type JoinTableKey [2]string

// JoinTableID key of the join table of a and b, the same whichever side it
// is computed from
func JoinTableID(a, b string) JoinTableKey {
	if b < a {
		a, b = b, a
	}
	return JoinTableKey{a, b}
}

// String readable form of the key. Model names may contain "_", so two keys
// can share it.
func (k JoinTableKey) String() string {
	return k[0] + "_" + k[1]
}

// InferBackReferences records, on every relation target, the inverse
// collections declared with `->` by other models. Fields without an
// explicit back-populate name add nothing.
func InferBackReferences(models map[string]*Model) error {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		model := models[name]
		for _, field := range model.Fields {
			if !field.IsRelation() || field.BackPopulates == "" {
				continue
			}

			target, ok := models[field.Target]
			if !ok {
				return errs.New(errs.ErrInternal, "relation target %s was never parsed", field.Target).
					WithModel(name).WithField(field.Name)
			}

			if _, ok := target.FieldsByName[field.BackPopulates]; ok || field.BackPopulates == PrimaryKey || field.BackPopulates == ModelKey {
				return errs.New(errs.ErrModel, "malformed back-populate: %s.%s already exists", target.Name, field.BackPopulates).
					WithModel(name).WithField(field.Name)
			}
			if existing, ok := target.relationshipsByName[field.BackPopulates]; ok {
				return errs.New(errs.ErrModel, "malformed back-populate: %s.%s is already populated by %s.%s",
					target.Name, field.BackPopulates, existing.SourceModel.Name, existing.SourceField.Name).
					WithModel(name).WithField(field.Name)
			}

			rel := &Relationship{
				Name:        field.BackPopulates,
				Type:        HasMany,
				Model:       target,
				SourceModel: model,
				SourceField: field,
			}
			if field.Kind == ManyToMany {
				rel.Type = Many2Many
				rel.JoinTable = JoinTableID(model.Name, target.Name)
			}

			target.AdditionalRelationships = append(target.AdditionalRelationships, rel)
			target.relationshipsByName[rel.Name] = rel
		}
	}
	return nil
}
