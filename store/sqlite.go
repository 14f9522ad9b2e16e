package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nao1215/tabimport/domain/model"

	// register the "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

// schemaTable records the registered definition of every schema
const schemaTable = "_tabimport_schema"

// SQLite stores every schema as a table of the same name in a SQLite file.
type SQLite struct {
	db *sql.DB
}

var _ model.Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the SQLite database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases shared and writes serialized
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database %s: %w", path, err)
	}

	query := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, definition TEXT NOT NULL)`,
		quoteIdentifier(schemaTable),
	)
	if _, err := db.ExecContext(ctx, query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// RegisterSchema creates the table of schema if absent, adds the columns it
// lacks and records schema as the registered definition. Existing columns
// are never dropped.
func (s *SQLite) RegisterSchema(ctx context.Context, schema *model.SchemaDescriptor) error {
	definition, err := encodeSchema(schema)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.registerSchema(ctx, tx, schema, definition); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback: %w", rbErr))
		}
		return err
	}
	return tx.Commit()
}

// registerSchema runs the statements of RegisterSchema inside tx.
func (s *SQLite) registerSchema(ctx context.Context, tx *sql.Tx, schema *model.SchemaDescriptor, definition []byte) error {
	table := quoteIdentifier(schema.Name())

	columns := make([]string, 0, schema.Len()+1)
	columns = append(columns, quoteIdentifier(IDField)+" TEXT PRIMARY KEY")
	for _, c := range schema.Columns() {
		columns = append(columns, fmt.Sprintf("%s %s", quoteIdentifier(c.Name), c.DeclaredType.SQLType()))
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s)`, table, strings.Join(columns, ", "))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", schema.Name(), err)
	}

	existing, err := tableColumns(ctx, tx, schema.Name())
	if err != nil {
		return err
	}
	for _, c := range schema.Columns() {
		if existing[strings.ToLower(c.Name)] {
			continue
		}
		query := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, quoteIdentifier(c.Name), c.DeclaredType.SQLType())
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to add column %s to %s: %w", c.Name, schema.Name(), err)
		}
	}

	query = fmt.Sprintf(
		`INSERT INTO %s (name, definition) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET definition = excluded.definition`,
		quoteIdentifier(schemaTable),
	)
	if _, err := tx.ExecContext(ctx, query, schema.Name(), string(definition)); err != nil {
		return fmt.Errorf("failed to record schema %s: %w", schema.Name(), err)
	}
	return nil
}

// tableColumns returns the lower-cased column names of a table. SQLite
// column names are case-insensitive.
func tableColumns(ctx context.Context, tx *sql.Tx, table string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
		}
		columns[strings.ToLower(name)] = true
	}
	return columns, rows.Err()
}

// Schema returns the registered definition of name, or model.ErrSchemaNotFound.
func (s *SQLite) Schema(ctx context.Context, name string) (*model.SchemaDescriptor, error) {
	query := fmt.Sprintf(`SELECT definition FROM %s WHERE name = ?`, quoteIdentifier(schemaTable))

	var definition string
	err := s.db.QueryRowContext(ctx, query, name).Scan(&definition)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrSchemaNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	return decodeSchema([]byte(definition))
}

// Count returns the number of objects stored under a schema name.
func (s *SQLite) Count(ctx context.Context, name string) (int, error) {
	if _, err := s.Schema(ctx, name); err != nil {
		return 0, err
	}

	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdentifier(name))
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count objects of %s: %w", name, err)
	}
	return n, nil
}

// Objects returns every object stored under a schema name, keyed by column
// name. NULL columns are omitted.
func (s *SQLite) Objects(ctx context.Context, name string) ([]map[string]any, error) {
	if _, err := s.Schema(ctx, name); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY rowid`, quoteIdentifier(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to read objects of %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var objects []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to read objects of %s: %w", name, err)
		}

		object := make(map[string]any, len(columns))
		for i, column := range columns {
			if values[i] != nil {
				object[column] = values[i]
			}
		}
		objects = append(objects, object)
	}
	return objects, rows.Err()
}

// BeginWrite starts a write transaction.
func (s *SQLite) BeginWrite(ctx context.Context) (model.WriteTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &sqliteTx{tx: tx}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// sqliteTx is a write transaction of SQLite.
type sqliteTx struct {
	tx *sql.Tx
}

// CreateObject inserts rec as one row of the schema's table. Columns are
// named explicitly so that rows written under an earlier definition of the
// same schema stay valid.
func (t *sqliteTx) CreateObject(ctx context.Context, schema *model.SchemaDescriptor, rec model.CandidateRecord) error {
	columns := []string{quoteIdentifier(IDField)}
	values := []any{uuid.NewString()}
	for _, f := range rec.Fields() {
		col, ok := schema.Column(f.Name)
		if !ok {
			continue
		}
		columns = append(columns, quoteIdentifier(col.Name))
		values = append(values, fieldValue(f.Value, col.DeclaredType))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s)`,
		quoteIdentifier(schema.Name()),
		strings.Join(columns, ", "),
		placeholders,
	)
	if _, err := t.tx.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", schema.Name(), err)
	}
	return nil
}

// Commit commits the transaction.
func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction.
func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}
