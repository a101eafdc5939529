// Package storetest holds the behaviour every store.Gateway driver must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/devevents/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Doc is the document shape used by the suite. Field names are the same in
// JSON and BSON so filters work against every driver.
type Doc struct {
	ID        string    `json:"id" bson:"_id"`
	Slug      string    `json:"slug" bson:"slug"`
	Owner     string    `json:"owner" bson:"owner"`
	Tags      []string  `json:"tags" bson:"tags"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

func (d Doc) DocumentID() string { return d.ID }

// Schema is the index set drivers under test must be created with.
func Schema(collection string) store.Schema {
	return store.Schema{
		collection: {
			{Name: collection + "_slug_unique", Fields: []string{"slug"}, Unique: true},
			{Name: collection + "_owner", Fields: []string{"owner"}},
		},
	}
}

// Run exercises gw against collection, which must start empty.
func Run(t *testing.T, gw store.Gateway, collection string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	newDoc := func(slug, owner string, offset time.Duration, tags ...string) Doc {
		return Doc{ID: uuid.NewString(), Slug: slug, Owner: owner, Tags: tags, CreatedAt: base.Add(offset)}
	}

	a := newDoc("alpha", "ann", 0, "go", "cloud")
	b := newDoc("beta", "ann", time.Minute, "rust")
	c := newDoc("gamma", "bob", 2*time.Minute, "cloud", "ai")

	t.Run("insert", func(t *testing.T) {
		require.NoError(t, gw.Ping(ctx))
		for _, d := range []Doc{a, b, c} {
			require.NoError(t, gw.Insert(ctx, collection, d))
		}
	})

	t.Run("unique_index", func(t *testing.T) {
		dup := newDoc("alpha", "zed", time.Hour)
		assert.ErrorIs(t, gw.Insert(ctx, collection, dup), store.ErrDuplicateKey)

		n, err := gw.Count(ctx, collection, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("find_one_and_by_id", func(t *testing.T) {
		var got Doc
		require.NoError(t, gw.FindOne(ctx, collection, store.Where(store.Eq("slug", "beta")), &got))
		assert.Equal(t, b.ID, got.ID)

		got = Doc{}
		require.NoError(t, gw.FindByID(ctx, collection, c.ID, &got))
		assert.Equal(t, "gamma", got.Slug)

		assert.ErrorIs(t, gw.FindByID(ctx, collection, uuid.NewString(), &got), store.ErrNoDocument)
		assert.ErrorIs(t, gw.FindOne(ctx, collection, store.Where(store.Eq("slug", "nope")), &got), store.ErrNoDocument)
	})

	t.Run("find_sorted_filtered", func(t *testing.T) {
		var newest []Doc
		require.NoError(t, gw.Find(ctx, collection, nil, store.FindOptions{SortBy: "createdAt", Desc: true, Limit: 2}, &newest))
		require.Len(t, newest, 2)
		assert.Equal(t, c.ID, newest[0].ID)
		assert.Equal(t, b.ID, newest[1].ID)

		var related []Doc
		filter := store.Where(store.AnyOf("tags", []string{"cloud"}), store.Ne(store.IDField, a.ID))
		require.NoError(t, gw.Find(ctx, collection, filter, store.FindOptions{}, &related))
		require.Len(t, related, 1)
		assert.Equal(t, c.ID, related[0].ID)

		n, err := gw.Count(ctx, collection, store.Where(store.Eq("owner", "ann")))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("replace", func(t *testing.T) {
		updated := b
		updated.Tags = []string{"rust", "wasm"}
		require.NoError(t, gw.Replace(ctx, collection, updated))

		var got Doc
		require.NoError(t, gw.FindByID(ctx, collection, b.ID, &got))
		assert.Equal(t, []string{"rust", "wasm"}, got.Tags)

		clash := b
		clash.Slug = "gamma"
		assert.ErrorIs(t, gw.Replace(ctx, collection, clash), store.ErrDuplicateKey)

		assert.ErrorIs(t, gw.Replace(ctx, collection, newDoc("delta", "x", 0)), store.ErrNoDocument)
	})
}
