package memory

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/devevents/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d doc) DocumentID() string { return d.ID }

func newStore() *Store {
	return New(store.Schema{
		"docs": {{Name: "docs_slug_unique", Fields: []string{"slug"}, Unique: true}},
	})
}

func TestInsertAndFind(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	require.NoError(t, s.Insert(ctx, "docs", doc{ID: "1", Slug: "a", Tags: []string{"go"}}))

	var got doc
	require.NoError(t, s.FindByID(ctx, "docs", "1", &got))
	assert.Equal(t, "a", got.Slug)

	got = doc{}
	require.NoError(t, s.FindOne(ctx, "docs", store.Where(store.Eq("slug", "a")), &got))
	assert.Equal(t, "1", got.ID)

	err := s.FindOne(ctx, "docs", store.Where(store.Eq("slug", "missing")), &got)
	assert.ErrorIs(t, err, store.ErrNoDocument)

	err = s.FindByID(ctx, "other", "1", &got)
	assert.ErrorIs(t, err, store.ErrNoDocument)
}

func TestUniqueIndex(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	require.NoError(t, s.Insert(ctx, "docs", doc{ID: "1", Slug: "a"}))
	require.NoError(t, s.Insert(ctx, "docs", doc{ID: "2", Slug: "b"}))

	assert.ErrorIs(t, s.Insert(ctx, "docs", doc{ID: "3", Slug: "a"}), store.ErrDuplicateKey)
	assert.ErrorIs(t, s.Insert(ctx, "docs", doc{ID: "1", Slug: "c"}), store.ErrDuplicateKey)

	// replacing a document with its own key is fine, taking another's is not
	assert.NoError(t, s.Replace(ctx, "docs", doc{ID: "1", Slug: "a", Tags: []string{"x"}}))
	assert.ErrorIs(t, s.Replace(ctx, "docs", doc{ID: "2", Slug: "a"}), store.ErrDuplicateKey)
	assert.ErrorIs(t, s.Replace(ctx, "docs", doc{ID: "9", Slug: "z"}), store.ErrNoDocument)

	n, err := s.Count(ctx, "docs", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestFind_FilterSortLimit(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Insert(ctx, "docs", doc{ID: "1", Slug: "a", Tags: []string{"go", "cloud"}, CreatedAt: base}))
	require.NoError(t, s.Insert(ctx, "docs", doc{ID: "2", Slug: "b", Tags: []string{"rust"}, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.Insert(ctx, "docs", doc{ID: "3", Slug: "c", Tags: []string{"cloud"}, CreatedAt: base.Add(2 * time.Hour)}))

	var all []doc
	require.NoError(t, s.Find(ctx, "docs", nil, store.FindOptions{SortBy: "createdAt", Desc: true}, &all))
	require.Len(t, all, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	var similar []doc
	filter := store.Where(store.AnyOf("tags", []string{"cloud", "ai"}), store.Ne(store.IDField, "1"))
	require.NoError(t, s.Find(ctx, "docs", filter, store.FindOptions{}, &similar))
	require.Len(t, similar, 1)
	assert.Equal(t, "3", similar[0].ID)

	var limited []doc
	require.NoError(t, s.Find(ctx, "docs", nil, store.FindOptions{SortBy: "createdAt", Limit: 2}, &limited))
	assert.Len(t, limited, 2)
	assert.Equal(t, "1", limited[0].ID)

	var none []doc
	require.NoError(t, s.Find(ctx, "docs", store.Where(store.Eq("slug", "zzz")), store.FindOptions{}, &none))
	assert.Empty(t, none)
}
