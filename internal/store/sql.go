package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const mysqlDupEntry = 1062

// DDL returns the CREATE TABLE statement for the collection: an
// auto-increment key, the JSON document, and one column per declared index.
func (d Definition) DDL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS `%s` (\n", d.Name)
	b.WriteString("\tid BIGINT AUTO_INCREMENT PRIMARY KEY,\n")
	b.WriteString("\tdoc JSON NOT NULL")
	for _, idx := range d.Indexes {
		fmt.Fprintf(&b, ",\n\t`%s` %s", idx.Name, idx.sqlType())
	}
	for _, idx := range d.Indexes {
		kind := "KEY"
		if idx.Unique {
			kind = "UNIQUE KEY"
		}
		fmt.Fprintf(&b, ",\n\t%s `idx_%s_%s` (`%s`)", kind, d.Name, idx.Name, idx.Name)
	}
	b.WriteString("\n)")
	return b.String()
}

func (i Index) sqlType() string {
	if i.SQLType != "" {
		return i.SQLType
	}
	return "VARCHAR(255)"
}

type sqlStore[T Record] struct {
	db   *sql.DB
	coll Collection[T]
}

// NewSQL returns a MySQL-backed store for the collection. The table is
// expected to exist already (see storage.Open).
func NewSQL[T Record](db *sql.DB, coll Collection[T]) Store[T] {
	return &sqlStore[T]{db: db, coll: coll}
}

func (s *sqlStore[T]) Add(ctx context.Context, rec T) (int64, error) {
	doc, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("%w: encoding %s record: %v", ErrOpFailed, s.coll.Name, err)
	}

	cols := []string{"doc"}
	args := []any{doc}
	fields := s.coll.Fields(rec)
	for _, idx := range s.coll.Indexes {
		cols = append(cols, fmt.Sprintf("`%s`", idx.Name))
		args = append(args, fields[idx.Name])
	}

	query := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)",
		s.coll.Name, strings.Join(cols, ", "), placeholders(len(cols)))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, s.wrap(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, s.wrap(err)
	}
	rec.SetKey(id)
	return id, nil
}

func (s *sqlStore[T]) Get(ctx context.Context, key int64) (T, error) {
	var zero T
	query := fmt.Sprintf("SELECT doc FROM `%s` WHERE id = ?", s.coll.Name)

	var doc []byte
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&doc); err != nil {
		return zero, s.wrap(err)
	}
	return s.decode(doc, key)
}

func (s *sqlStore[T]) GetAll(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf("SELECT id, doc FROM `%s`", s.coll.Name)
	return s.queryRecords(ctx, query)
}

func (s *sqlStore[T]) Update(ctx context.Context, rec T) error {
	if rec.Key() == 0 {
		return fmt.Errorf("%w: update of %s record without key", ErrOpFailed, s.coll.Name)
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encoding %s record: %v", ErrOpFailed, s.coll.Name, err)
	}

	cols := []string{"id", "doc"}
	args := []any{rec.Key(), doc}
	assigns := []string{"doc = VALUES(doc)"}
	fields := s.coll.Fields(rec)
	for _, idx := range s.coll.Indexes {
		cols = append(cols, fmt.Sprintf("`%s`", idx.Name))
		args = append(args, fields[idx.Name])
		assigns = append(assigns, fmt.Sprintf("`%s` = VALUES(`%s`)", idx.Name, idx.Name))
	}

	query := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		s.coll.Name, strings.Join(cols, ", "), placeholders(len(cols)), strings.Join(assigns, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return s.wrap(err)
	}
	return nil
}

func (s *sqlStore[T]) Delete(ctx context.Context, key int64) error {
	query := fmt.Sprintf("DELETE FROM `%s` WHERE id = ?", s.coll.Name)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return s.wrap(err)
	}
	return nil
}

func (s *sqlStore[T]) GetByIndex(ctx context.Context, index string, value any) ([]T, error) {
	if _, ok := s.coll.index(index); !ok {
		return nil, fmt.Errorf("%w: collection %s has no index %s", ErrOpFailed, s.coll.Name, index)
	}
	query := fmt.Sprintf("SELECT id, doc FROM `%s` WHERE `%s` = ?", s.coll.Name, index)
	return s.queryRecords(ctx, query, value)
}

func (s *sqlStore[T]) GetSingleByIndex(ctx context.Context, index string, value any) (T, error) {
	var zero T
	if _, ok := s.coll.index(index); !ok {
		return zero, fmt.Errorf("%w: collection %s has no index %s", ErrOpFailed, s.coll.Name, index)
	}
	query := fmt.Sprintf("SELECT id, doc FROM `%s` WHERE `%s` = ? ORDER BY id LIMIT 1",
		s.coll.Name, index)

	var id int64
	var doc []byte
	if err := s.db.QueryRowContext(ctx, query, value).Scan(&id, &doc); err != nil {
		return zero, s.wrap(err)
	}
	return s.decode(doc, id)
}

func (s *sqlStore[T]) Clear(ctx context.Context) error {
	query := fmt.Sprintf("DELETE FROM `%s`", s.coll.Name)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return s.wrap(err)
	}
	return nil
}

func (s *sqlStore[T]) queryRecords(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrap(err)
	}
	defer rows.Close()

	var recs []T
	for rows.Next() {
		var id int64
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, s.wrap(err)
		}
		rec, err := s.decode(doc, id)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err)
	}
	return recs, nil
}

func (s *sqlStore[T]) decode(doc []byte, key int64) (T, error) {
	rec := s.coll.New()
	if err := json.Unmarshal(doc, rec); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: decoding %s record %d: %v", ErrOpFailed, s.coll.Name, key, err)
	}
	rec.SetKey(key)
	return rec, nil
}

func (s *sqlStore[T]) wrap(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDupEntry {
		return fmt.Errorf("%w: %s", ErrConstraint, me.Message)
	}
	return fmt.Errorf("%w: %s: %v", ErrOpFailed, s.coll.Name, err)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
