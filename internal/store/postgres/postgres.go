package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/devevents/internal/db"
	"github.com/geocoder89/devevents/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	doc        JSONB NOT NULL,
	PRIMARY KEY (collection, id)
)`

type Config struct {
	DBURL       string
	DialTimeout time.Duration
}

// Store keeps every collection as rows of one JSONB documents table.
type Store struct {
	conn *db.Lazy[*pgxpool.Pool]
}

func New(cfg Config, schema store.Schema) *Store {
	s := &Store{}

	s.conn = db.NewLazy(func(ctx context.Context) (*pgxpool.Pool, error) {
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, err
		}

		if _, err := pool.Exec(ctx, createDocumentsTable); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create documents table: %w", err)
		}

		for name, indexes := range schema {
			if err := createIndexes(ctx, pool, name, indexes); err != nil {
				pool.Close()
				return nil, fmt.Errorf("%s indexes: %w", name, err)
			}
		}
		return pool, nil
	}, cfg.DialTimeout)

	return s
}

func (s *Store) pool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := s.conn.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return pool, nil
}

func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter, out any) error {
	pool, err := s.pool(ctx)
	if err != nil {
		return err
	}

	where, args, err := buildWhere(collection, filter)
	if err != nil {
		return err
	}

	var raw []byte
	err = pool.QueryRow(ctx, `SELECT doc FROM documents WHERE `+where+` LIMIT 1`, args...).Scan(&raw)
	if err != nil {
		return mapErr(err)
	}

	return json.Unmarshal(raw, out)
}

func (s *Store) FindByID(ctx context.Context, collection, id string, out any) error {
	pool, err := s.pool(ctx)
	if err != nil {
		return err
	}

	var raw []byte
	err = pool.QueryRow(ctx, `SELECT doc FROM documents WHERE collection = $1 AND id = $2`, collection, id).Scan(&raw)
	if err != nil {
		return mapErr(err)
	}

	return json.Unmarshal(raw, out)
}

func (s *Store) Find(ctx context.Context, collection string, filter store.Filter, opts store.FindOptions, out any) error {
	pool, err := s.pool(ctx)
	if err != nil {
		return err
	}

	where, args, err := buildWhere(collection, filter)
	if err != nil {
		return err
	}

	query := `SELECT doc FROM documents WHERE ` + where

	if opts.SortBy != "" {
		dir := "ASC"
		if opts.Desc {
			dir = "DESC"
		}
		query += " ORDER BY " + orderBy(opts.SortBy, dir)
	}

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}

	raws, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return mapErr(err)
	}

	docs := make([]json.RawMessage, len(raws))
	for i, raw := range raws {
		docs[i] = raw
	}

	b, err := json.Marshal(docs)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, out)
}

func (s *Store) Count(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	pool, err := s.pool(ctx)
	if err != nil {
		return 0, err
	}

	where, args, err := buildWhere(collection, filter)
	if err != nil {
		return 0, err
	}

	var n int64
	err = pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE `+where, args...).Scan(&n)

	return n, mapErr(err)
}

func (s *Store) Insert(ctx context.Context, collection string, doc store.Document) error {
	pool, err := s.pool(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)`,
		collection, doc.DocumentID(), raw,
	)

	return mapErr(err)
}

func (s *Store) Replace(ctx context.Context, collection string, doc store.Document) error {
	pool, err := s.pool(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tag, err := pool.Exec(ctx,
		`UPDATE documents SET doc = $3 WHERE collection = $1 AND id = $2`,
		collection, doc.DocumentID(), raw,
	)
	if err != nil {
		return mapErr(err)
	}

	// if no rows were updated the document does not exist
	if tag.RowsAffected() == 0 {
		return store.ErrNoDocument
	}

	return nil
}

func (s *Store) EnsureIndexes(ctx context.Context, collection string, indexes []store.Index) error {
	pool, err := s.pool(ctx)
	if err != nil {
		return err
	}

	return mapErr(createIndexes(ctx, pool, collection, indexes))
}

func (s *Store) Ping(ctx context.Context) error {
	pool, err := s.pool(ctx)
	if err != nil {
		return err
	}

	return mapErr(pool.Ping(ctx))
}

func (s *Store) Close(ctx context.Context) error {
	return s.conn.Close(func(p *pgxpool.Pool) error {
		p.Close()
		return nil
	})
}

func createIndexes(ctx context.Context, pool *pgxpool.Pool, collection string, indexes []store.Index) error {
	for _, idx := range indexes {
		_, err := pool.Exec(ctx, indexDDL(collection, idx))
		if err != nil {
			return err
		}
	}
	return nil
}

func indexDDL(collection string, idx store.Index) string {
	exprs := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		exprs = append(exprs, "("+textExpr(f)+")")
	}

	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}

	return fmt.Sprintf(
		"CREATE %sINDEX IF NOT EXISTS %s ON documents (%s) WHERE collection = %s",
		unique,
		pgx.Identifier{idx.Name}.Sanitize(),
		strings.Join(exprs, ", "),
		quoteLiteral(collection),
	)
}

func buildWhere(collection string, filter store.Filter) (string, []any, error) {
	conds := []string{"collection = $1"}
	args := []any{collection}

	for _, c := range filter {
		switch c.Op {
		case store.OpEq, store.OpNe:
			op := "="
			if c.Op == store.OpNe {
				op = "<>"
			}

			if c.Field == store.IDField {
				args = append(args, c.Value)
				conds = append(conds, fmt.Sprintf("id %s $%d", op, len(args)))
				continue
			}

			raw, err := json.Marshal(c.Value)
			if err != nil {
				return "", nil, fmt.Errorf("encode filter %s: %w", c.Field, err)
			}
			args = append(args, string(raw))
			conds = append(conds, fmt.Sprintf("%s %s $%d::jsonb", jsonExpr(c.Field), op, len(args)))

		case store.OpAnyOf:
			values, ok := c.Value.([]string)
			if !ok {
				return "", nil, fmt.Errorf("filter %s: AnyOf wants []string, got %T", c.Field, c.Value)
			}
			args = append(args, values)
			conds = append(conds, fmt.Sprintf("%s ?| $%d::text[]", jsonExpr(c.Field), len(args)))

		default:
			return "", nil, fmt.Errorf("filter %s: unknown op %d", c.Field, c.Op)
		}
	}

	return strings.Join(conds, " AND "), args, nil
}

func jsonExpr(field string) string { return "doc->" + quoteLiteral(field) }

func textExpr(field string) string { return "doc->>" + quoteLiteral(field) }

// orderBy sorts timestamp-shaped values chronologically, then by text.
func orderBy(field, dir string) string {
	if field == store.IDField {
		return "id " + dir
	}

	text := textExpr(field)
	ts := fmt.Sprintf(`CASE WHEN %s ~ '^\d{4}-\d{2}-\d{2}T' THEN (%s)::timestamptz END`, text, text)

	return fmt.Sprintf("%s %s, %s %s, id %s", ts, dir, text, dir, dir)
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNoDocument
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %w", store.ErrDuplicateKey, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}

	return err
}
