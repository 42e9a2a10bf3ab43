// Package store is the persistence adapter of the console. A single Persistence
// contract is implemented by a remote table store (GORM) and by a local key-value
// namespace holding one JSON array per collection. The variant is chosen once when
// the process is composed and injected into the services.
package store

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"strings"
)

type Collection string

const (
	Patients         Collection = "patients"
	Appointments     Collection = "appointments"
	FinancialRecords Collection = "financial_records"
	Notifications    Collection = "notifications"
)

// StorageKey is the fixed key the local variant keeps the collection under.
func (collection Collection) StorageKey() string {
	return "dentclinic-" + strings.ReplaceAll(string(collection), "_", "-")
}

func (collection Collection) known() bool {
	switch collection {
	case Patients, Appointments, FinancialRecords, Notifications:
		return true
	default:
		return false
	}
}

var columnNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Query narrows a List call to rows whose columns equal the given values,
// optionally ordered by one column.
type Query struct {
	Equals     map[string]any
	OrderBy    string
	Descending bool
}

func (query Query) Eq(column string, value any) Query {
	equals := make(map[string]any, len(query.Equals)+1)
	maps.Copy(equals, query.Equals)
	equals[column] = value
	query.Equals = equals
	return query
}

func (query Query) Asc(column string) Query {
	query.OrderBy = column
	query.Descending = false
	return query
}

func (query Query) Desc(column string) Query {
	query.OrderBy = column
	query.Descending = true
	return query
}

func (query Query) validate() error {
	for column := range query.Equals {
		if !columnNamePattern.MatchString(column) {
			return fmt.Errorf("invalid filter column %q", column)
		}
	}
	if query.OrderBy != "" && !columnNamePattern.MatchString(query.OrderBy) {
		return fmt.Errorf("invalid order column %q", query.OrderBy)
	}
	return nil
}

// Persistence is the contract every view goes through to read or mutate entities.
//
// dest passed to List must be a pointer to a slice of the collection's record type;
// records passed to Insert must carry their id.
type Persistence interface {
	List(ctx context.Context, collection Collection, query Query, dest any) error
	Insert(ctx context.Context, collection Collection, record any) error
	Update(ctx context.Context, collection Collection, id string, patch map[string]any) error
	Remove(ctx context.Context, collection Collection, id string) error
}

func checkCollection(collection Collection) error {
	if !collection.known() {
		return fmt.Errorf("unknown collection %q", collection)
	}
	return nil
}
