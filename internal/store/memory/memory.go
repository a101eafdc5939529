package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/devevents/internal/store"
)

type record struct {
	raw    []byte
	fields map[string]any
	seq    int
}

type collection struct {
	items   map[string]record // {"id": record}
	indexes []store.Index
}

// Store keeps JSON-encoded documents in process memory.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	seq         int
}

func New(schema store.Schema) *Store {
	s := &Store{collections: make(map[string]*collection)}

	for name, indexes := range schema {
		s.coll(name).indexes = append([]store.Index(nil), indexes...)
	}

	return s
}

// coll must be called with mu held for writing, or during construction.
func (s *Store) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{items: make(map[string]record)}
		s.collections[name] = c
	}
	return c
}

func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := s.match(collection, filter, store.FindOptions{Limit: 1})
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return store.ErrNoDocument
	}

	return json.Unmarshal(matches[0].raw, out)
}

func (s *Store) FindByID(ctx context.Context, collection, id string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return store.ErrNoDocument
	}

	r, ok := c.items[id]
	if !ok {
		return store.ErrNoDocument
	}

	return json.Unmarshal(r.raw, out)
}

func (s *Store) Find(ctx context.Context, collection string, filter store.Filter, opts store.FindOptions, out any) error {
	s.mu.RLock()
	matches, err := s.match(collection, filter, opts)
	s.mu.RUnlock()

	if err != nil {
		return err
	}

	raws := make([]json.RawMessage, len(matches))
	for i, r := range matches {
		raws[i] = r.raw
	}

	b, err := json.Marshal(raws)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, out)
}

func (s *Store) Count(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := s.match(collection, filter, store.FindOptions{})
	if err != nil {
		return 0, err
	}

	return int64(len(matches)), nil
}

func (s *Store) Insert(ctx context.Context, collection string, doc store.Document) error {
	r, err := encode(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	id := doc.DocumentID()

	if _, exists := c.items[id]; exists {
		return fmt.Errorf("%w: _id %q", store.ErrDuplicateKey, id)
	}

	if err := c.checkUnique(id, r.fields); err != nil {
		return err
	}

	s.seq++
	r.seq = s.seq
	c.items[id] = r

	return nil
}

func (s *Store) Replace(ctx context.Context, collection string, doc store.Document) error {
	r, err := encode(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	id := doc.DocumentID()

	prev, ok := c.items[id]
	if !ok {
		return store.ErrNoDocument
	}

	if err := c.checkUnique(id, r.fields); err != nil {
		return err
	}

	r.seq = prev.seq
	c.items[id] = r

	return nil
}

func (s *Store) EnsureIndexes(ctx context.Context, collection string, indexes []store.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)

	for _, idx := range indexes {
		replaced := false
		for i := range c.indexes {
			if c.indexes[i].Name == idx.Name {
				c.indexes[i] = idx
				replaced = true
			}
		}
		if !replaced {
			c.indexes = append(c.indexes, idx)
		}
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close(ctx context.Context) error { return nil }

func (c *collection) checkUnique(id string, fields map[string]any) error {
	for _, idx := range c.indexes {
		if !idx.Unique {
			continue
		}

		for otherID, other := range c.items {
			if otherID == id {
				continue
			}
			if sameKey(idx.Fields, fields, other.fields) {
				return fmt.Errorf("%w: index %s", store.ErrDuplicateKey, idx.Name)
			}
		}
	}
	return nil
}

func sameKey(keys []string, a, b map[string]any) bool {
	for _, k := range keys {
		if !reflect.DeepEqual(a[k], b[k]) {
			return false
		}
	}
	return true
}

func (s *Store) match(collection string, filter store.Filter, opts store.FindOptions) ([]record, error) {
	c, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}

	conds, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	out := make([]record, 0)
	for id, r := range c.items {
		if matches(id, r.fields, conds) {
			out = append(out, r)
		}
	}

	sortRecords(out, opts)

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func sortRecords(rs []record, opts store.FindOptions) {
	if opts.SortBy == "" {
		sort.Slice(rs, func(i, j int) bool { return rs[i].seq < rs[j].seq })
		return
	}

	sort.SliceStable(rs, func(i, j int) bool {
		c := compare(rs[i].fields[opts.SortBy], rs[j].fields[opts.SortBy])
		if c == 0 {
			c = rs[i].seq - rs[j].seq
		}
		if opts.Desc {
			return c > 0
		}
		return c < 0
	})
}

// compare orders timestamps chronologically, numbers numerically and
// everything else by its string form.
func compare(a, b any) int {
	as, aok := a.(string)
	bs, bok := b.(string)

	if aok && bok {
		at, aerr := time.Parse(time.RFC3339Nano, as)
		bt, berr := time.Parse(time.RFC3339Nano, bs)
		if aerr == nil && berr == nil {
			return at.Compare(bt)
		}
		return strings.Compare(as, bs)
	}

	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

type condition struct {
	field string
	op    store.Op
	value any
}

// normalizeFilter round-trips condition values through JSON so they compare
// equal to decoded document fields.
func normalizeFilter(filter store.Filter) ([]condition, error) {
	out := make([]condition, 0, len(filter))

	for _, c := range filter {
		b, err := json.Marshal(c.Value)
		if err != nil {
			return nil, fmt.Errorf("encode filter %s: %w", c.Field, err)
		}

		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, err
		}

		out = append(out, condition{field: c.Field, op: c.Op, value: v})
	}

	return out, nil
}

func matches(id string, fields map[string]any, conds []condition) bool {
	for _, c := range conds {
		var got any = fields[c.field]
		if c.field == store.IDField {
			got = id
		}

		switch c.op {
		case store.OpEq:
			if !reflect.DeepEqual(got, c.value) {
				return false
			}
		case store.OpNe:
			if reflect.DeepEqual(got, c.value) {
				return false
			}
		case store.OpAnyOf:
			if !overlaps(got, c.value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func overlaps(field, values any) bool {
	have, ok := field.([]any)
	if !ok {
		return false
	}
	want, ok := values.([]any)
	if !ok {
		return false
	}

	for _, h := range have {
		for _, w := range want {
			if reflect.DeepEqual(h, w) {
				return true
			}
		}
	}
	return false
}

func encode(doc store.Document) (record, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return record{}, fmt.Errorf("encode document: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return record{}, fmt.Errorf("encode document: %w", err)
	}

	return record{raw: raw, fields: fields}, nil
}
