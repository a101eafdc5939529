// Package store is the document-store gateway the repositories write through.
//
// Drivers live in the memory, mongodb and postgres subpackages. They all speak
// the same small vocabulary: documents addressed by (collection, id), filters
// built from Eq/Ne/AnyOf conditions on top-level document keys, and named
// indexes that may be unique.
package store

import (
	"context"
	"errors"
)

// IDField addresses a document's identifier in filters and sorts.
const IDField = "id"

var (
	// ErrNoDocument is returned when a lookup matches nothing.
	ErrNoDocument = errors.New("store: no document")
	// ErrDuplicateKey is returned when a write breaks a unique index.
	ErrDuplicateKey = errors.New("store: duplicate key")
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("store: unavailable")
)

// Document is anything that can be stored: it must know its own id.
type Document interface {
	DocumentID() string
}

type Gateway interface {
	// FindOne decodes the first match into out.
	FindOne(ctx context.Context, collection string, filter Filter, out any) error
	FindByID(ctx context.Context, collection, id string, out any) error
	// Find decodes all matches into out, which must point to a slice.
	Find(ctx context.Context, collection string, filter Filter, opts FindOptions, out any) error
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	Insert(ctx context.Context, collection string, doc Document) error
	Replace(ctx context.Context, collection string, doc Document) error
	EnsureIndexes(ctx context.Context, collection string, indexes []Index) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type Op int

const (
	OpEq Op = iota
	OpNe
	// OpAnyOf matches when an array field shares at least one element with Value ([]string).
	OpAnyOf
)

type Condition struct {
	Field string
	Op    Op
	Value any
}

// Filter is a conjunction of conditions. A nil Filter matches everything.
type Filter []Condition

func Where(conds ...Condition) Filter { return Filter(conds) }

func Eq(field string, v any) Condition { return Condition{Field: field, Op: OpEq, Value: v} }

func Ne(field string, v any) Condition { return Condition{Field: field, Op: OpNe, Value: v} }

func AnyOf(field string, values []string) Condition {
	return Condition{Field: field, Op: OpAnyOf, Value: values}
}

type FindOptions struct {
	SortBy string
	Desc   bool
	Limit  int
}

type Index struct {
	Name   string
	Fields []string
	Unique bool
}

// Schema lists the indexes each collection needs.
type Schema map[string][]Index

// Apply creates every index in s on gw.
func (s Schema) Apply(ctx context.Context, gw Gateway) error {
	for collection, indexes := range s {
		if err := gw.EnsureIndexes(ctx, collection, indexes); err != nil {
			return err
		}
	}
	return nil
}
