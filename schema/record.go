package schema

import "fmt"

// Record one instance of a model. Besides the declared fields it carries
// `pk`, `_model`, `<fk>_id` for every foreign key and the back-populated
// collections of its model.
type Record map[string]any

// NewRecord creates an empty record of model
func NewRecord(model, pk string) Record {
	return Record{PrimaryKey: pk, ModelKey: model}
}

// PK primary key of the record
func (r Record) PK() string {
	if pk, ok := r[PrimaryKey].(string); ok {
		return pk
	}
	return fmt.Sprint(r[PrimaryKey])
}

// Model name of the model the record belongs to
func (r Record) Model() string {
	model, _ := r[ModelKey].(string)
	return model
}

// Get value stored under key, nil when missing
func (r Record) Get(key string) any {
	return r[key]
}

// Identity (model, pk) pair identifying the record in its database
func (r Record) Identity() [2]string {
	return [2]string{r.Model(), r.PK()}
}

func (r Record) String() string {
	return r.Model() + "(" + r.PK() + ")"
}
