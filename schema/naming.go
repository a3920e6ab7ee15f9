package schema

import (
	"fmt"
	"sync"

	"github.com/jinzhu/inflection"
	"github.com/statikgen/statik/utils"
)

// Namer namer interface
type Namer interface {
	TableName(model string) string
	JoinTableName(a, b string) string
	ForeignKeyName(model, field string) string
}

// NamingStrategy tables and keys naming strategy
type NamingStrategy struct {
	TablePrefix   string
	SingularTable bool
}

var smap sync.Map

func toDBName(name string) string {
	if v, ok := smap.Load(name); ok {
		return fmt.Sprint(v)
	}
	value := utils.ToDBName(name)
	smap.Store(name, value)
	return value
}

// TableName convert model name to table name
func (ns NamingStrategy) TableName(model string) string {
	if ns.SingularTable {
		return ns.TablePrefix + toDBName(model)
	}
	return ns.TablePrefix + inflection.Plural(toDBName(model))
}

// JoinTableName name of the join table between two models, independent of
// argument order
func (ns NamingStrategy) JoinTableName(a, b string) string {
	return ns.TablePrefix + toDBName(JoinTableID(a, b).String())
}

// ForeignKeyName generate fk name for a relation field
func (ns NamingStrategy) ForeignKeyName(model, field string) string {
	return fmt.Sprintf("fk_%s_%s", ns.TableName(model), toDBName(field))
}
