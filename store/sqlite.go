package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore backs the collection interface with an embedded SQLite database.
// Each collection is a table of (id, doc) rows where doc is the JSON-encoded
// document; filters are evaluated with json_extract so the documents keep the
// same shape they have in MongoDB.
type SQLiteStore struct {
	db *sql.DB

	mu     sync.Mutex
	tables map[string]bool
}

// OpenSQLite opens (or creates) the database file at path. Pass ":memory:"
// for an ephemeral database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// The modernc driver opens lazily; force the file to materialize now.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}
	return &SQLiteStore{db: db, tables: map[string]bool{}}, nil
}

func (s *SQLiteStore) Collection(name string) Collection {
	return &sqliteCollection{store: s, name: name}
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureTable(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables[name] {
		return nil
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (id TEXT PRIMARY KEY, doc TEXT NOT NULL)`, name)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("creating table %s: %w", name, err)
	}
	s.tables[name] = true
	return nil
}

type sqliteCollection struct {
	store *SQLiteStore
	name  string
}

// whereClause builds an AND-joined predicate from the filter. The "_id" key
// maps to the id column; every other key is matched against the JSON document.
// Keys are iterated in sorted order so generated SQL is deterministic.
func whereClause(filter Filter) (string, []interface{}) {
	if len(filter) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		if k == "_id" {
			clauses = append(clauses, "id = ?")
		} else {
			clauses = append(clauses, fmt.Sprintf("json_extract(doc, '$.%s') = ?", k))
		}
		args = append(args, filter[k])
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (c *sqliteCollection) InsertOne(ctx context.Context, doc interface{}) error {
	if err := c.store.ensureTable(ctx, c.name); err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	var fields struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil || fields.ID == "" {
		return fmt.Errorf("document for %s is missing an _id", c.name)
	}
	stmt := fmt.Sprintf(`INSERT INTO %q (id, doc) VALUES (?, ?)`, c.name)
	_, err = c.store.db.ExecContext(ctx, stmt, fields.ID, string(raw))
	return err
}

func (c *sqliteCollection) FindOne(ctx context.Context, filter Filter, out interface{}) error {
	if err := c.store.ensureTable(ctx, c.name); err != nil {
		return err
	}
	where, args := whereClause(filter)
	stmt := fmt.Sprintf(`SELECT doc FROM %q%s LIMIT 1`, c.name, where)
	var raw string
	err := c.store.db.QueryRowContext(ctx, stmt, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoDocuments
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), out)
}

func (c *sqliteCollection) Find(ctx context.Context, filter Filter, out interface{}) error {
	if err := c.store.ensureTable(ctx, c.name); err != nil {
		return err
	}
	where, args := whereClause(filter)
	stmt := fmt.Sprintf(`SELECT doc FROM %q%s ORDER BY rowid`, c.name, where)
	rows, err := c.store.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return err
		}
		docs = append(docs, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return decodeList(docs, out)
}

func (c *sqliteCollection) UpdateOne(ctx context.Context, filter Filter, set map[string]interface{}) (int64, error) {
	if err := c.store.ensureTable(ctx, c.name); err != nil {
		return 0, err
	}
	where, args := whereClause(filter)
	stmt := fmt.Sprintf(`SELECT id, doc FROM %q%s LIMIT 1`, c.name, where)
	var id, raw string
	err := c.store.db.QueryRowContext(ctx, stmt, args...).Scan(&id, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	merged := map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &merged); err != nil {
		return 0, fmt.Errorf("decoding stored document: %w", err)
	}
	for k, v := range set {
		merged[k] = v
	}
	updated, err := json.Marshal(merged)
	if err != nil {
		return 0, fmt.Errorf("encoding updated document: %w", err)
	}
	if _, err := c.store.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %q SET doc = ? WHERE id = ?`, c.name), string(updated), id); err != nil {
		return 0, err
	}
	return 1, nil
}

func (c *sqliteCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	if err := c.store.ensureTable(ctx, c.name); err != nil {
		return 0, err
	}
	where, args := whereClause(filter)
	stmt := fmt.Sprintf(`DELETE FROM %q WHERE id IN (SELECT id FROM %q%s LIMIT 1)`, c.name, c.name, where)
	res, err := c.store.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *sqliteCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	if err := c.store.ensureTable(ctx, c.name); err != nil {
		return 0, err
	}
	where, args := whereClause(filter)
	stmt := fmt.Sprintf(`SELECT COUNT(*) FROM %q%s`, c.name, where)
	var n int64
	if err := c.store.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// decodeList joins raw documents into a JSON array and decodes it into out so
// adapters don't need reflection over the element type.
func decodeList(docs []json.RawMessage, out interface{}) error {
	var buf strings.Builder
	buf.WriteByte('[')
	for i, d := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(d)
	}
	buf.WriteByte(']')
	return json.Unmarshal([]byte(buf.String()), out)
}
