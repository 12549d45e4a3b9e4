// Package sqlitevec provides a SQLite-backed vector driver using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/kotori/pkg/vector"
)

var collectionPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Driver implements vector.Driver using SQLite with sqlite-vec. Each
// collection gets its own document table and vec0 table in the same file.
type Driver struct {
	db        *sql.DB
	docsTable string
	vecTable  string
	logger    *slog.Logger
}

// Config holds configuration for the SQLite vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Collection names the table pair. Must be a valid SQL identifier.
	Collection string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewDriver creates a new SQLite vector driver backed by sqlite-vec.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if !collectionPattern.MatchString(c.Collection) {
		return nil, fmt.Errorf("invalid collection name %q", c.Collection)
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", vector.ErrConnection, err)
	}

	// In-memory databases are per-connection.
	db.SetMaxOpenConns(1)

	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	d := &Driver{
		db:        db,
		docsTable: c.Collection + "_documents",
		vecTable:  c.Collection + "_vec",
		logger:    logger,
	}

	// vec0 virtual tables use integer rowids, so string document IDs are
	// mapped through the documents table.
	_, err = db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}'
		)
	`, d.docsTable))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(embedding float[%d] distance_metric=cosine)`,
		d.vecTable, c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Debug("sqlite-vec vector driver initialized",
		"db_path", c.DBPath,
		"collection", c.Collection,
		"dimensions", c.Dimensions,
		"vec_version", vecVersion,
	)

	return d, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// deserializeFloat32 converts a little-endian byte slice back to a float32 slice.
func deserializeFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: must be divisible by 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

func encodeMetadata(m map[string]string) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMetadata(s string) map[string]string {
	m := map[string]string{}
	_ = json.Unmarshal([]byte(s), &m)
	return m
}

// filterClause renders filter as a json_extract conjunction over the
// documents table alias "d". Keys are sorted for stable SQL.
func filterClause(filter vector.Filter) (string, []any) {
	if len(filter) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		clauses = append(clauses, "json_extract(d.metadata, ?) = ?")
		args = append(args, `$."`+strings.ReplaceAll(k, `"`, `\"`)+`"`, filter[k])
	}
	return strings.Join(clauses, " AND "), args
}

// Add stores documents with their embeddings.
// If a document with the same ID already exists, it is updated.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		embBlob := serializeFloat32(doc.Embedding)
		meta, err := encodeMetadata(doc.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for doc %s: %w", doc.ID, err)
		}

		var existingRowID int64
		err = tx.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT rowid FROM %s WHERE doc_id = ?`, d.docsTable), doc.ID,
		).Scan(&existingRowID)

		switch err {
		case nil:
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`UPDATE %s SET content = ?, metadata = ? WHERE rowid = ?`, d.docsTable),
				doc.Content, meta, existingRowID,
			); err != nil {
				return fmt.Errorf("updating document %s: %w", doc.ID, err)
			}

			// vec0 does not support UPDATE
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`DELETE FROM %s WHERE rowid = ?`, d.vecTable), existingRowID,
			); err != nil {
				return fmt.Errorf("deleting old embedding for doc %s: %w", doc.ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT INTO %s(rowid, embedding) VALUES (?, ?)`, d.vecTable),
				existingRowID, embBlob,
			); err != nil {
				return fmt.Errorf("re-inserting embedding for doc %s: %w", doc.ID, err)
			}
		case sql.ErrNoRows:
			result, err := tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT INTO %s(doc_id, content, metadata) VALUES (?, ?, ?)`, d.docsTable),
				doc.ID, doc.Content, meta,
			)
			if err != nil {
				return fmt.Errorf("inserting document %s: %w", doc.ID, err)
			}

			rowID, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("getting rowid for doc %s: %w", doc.ID, err)
			}

			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT INTO %s(rowid, embedding) VALUES (?, ?)`, d.vecTable),
				rowID, embBlob,
			); err != nil {
				return fmt.Errorf("inserting embedding for doc %s: %w", doc.ID, err)
			}
		default:
			return fmt.Errorf("checking for existing document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("added documents to sqlite-vec", "table", d.docsTable, "count", len(docs))
	return nil
}

// Query finds the topK most similar documents to the given embedding.
// Unfiltered queries use the vec0 KNN index; filtered queries scan the
// matching rows with vec_distance_cosine so the filter cannot starve the
// result set.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int, filter vector.Filter) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	queryBlob := serializeFloat32(embedding)

	var (
		rows *sql.Rows
		err  error
	)
	where, args := filterClause(filter)
	if where == "" {
		rows, err = d.db.QueryContext(ctx, fmt.Sprintf(`
			SELECT d.doc_id, d.content, d.metadata, ve.distance
			FROM %s ve
			INNER JOIN %s d ON d.rowid = ve.rowid
			WHERE ve.embedding MATCH ?
				AND ve.k = ?
			ORDER BY ve.distance
		`, d.vecTable, d.docsTable), queryBlob, topK)
	} else {
		args = append([]any{queryBlob}, args...)
		args = append(args, topK)
		rows, err = d.db.QueryContext(ctx, fmt.Sprintf(`
			SELECT d.doc_id, d.content, d.metadata, vec_distance_cosine(ve.embedding, ?) AS distance
			FROM %s ve
			INNER JOIN %s d ON d.rowid = ve.rowid
			WHERE %s
			ORDER BY distance
			LIMIT ?
		`, d.vecTable, d.docsTable, where), args...)
	}
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.QueryResult
	for rows.Next() {
		var docID, content, meta string
		var distance float64
		if err := rows.Scan(&docID, &content, &meta, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		results = append(results, vector.QueryResult{
			Document: vector.Document{
				ID:       docID,
				Content:  content,
				Metadata: decodeMetadata(meta),
			},
			Distance: float32(distance),
			Score:    float32(1 - distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried sqlite-vec", "table", d.docsTable, "results", len(results))
	return results, nil
}

// List returns all documents matching filter, without embeddings.
func (d *Driver) List(ctx context.Context, filter vector.Filter) ([]vector.Document, error) {
	query := fmt.Sprintf(`SELECT d.doc_id, d.content, d.metadata FROM %s d`, d.docsTable)
	where, args := filterClause(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY d.rowid"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []vector.Document
	for rows.Next() {
		var doc vector.Document
		var meta string
		if err := rows.Scan(&doc.ID, &doc.Content, &meta); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Metadata = decodeMetadata(meta)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders, args := inArgs(ids)
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT d.doc_id, d.content, d.metadata, d.rowid
		FROM %s d
		WHERE d.doc_id IN (%s)
	`, d.docsTable, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}

	// Collect results first so we can close the rows cursor before
	// issuing additional queries (SQLite uses a single connection).
	type docRow struct {
		doc   vector.Document
		rowID int64
	}
	var docRows []docRow
	for rows.Next() {
		var dr docRow
		var meta string
		if err := rows.Scan(&dr.doc.ID, &dr.doc.Content, &meta, &dr.rowID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		dr.doc.Metadata = decodeMetadata(meta)
		docRows = append(docRows, dr)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	rows.Close()

	docs := make([]vector.Document, 0, len(docRows))
	for _, dr := range docRows {
		var embBlob []byte
		err := d.db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT embedding FROM %s WHERE rowid = ?`, d.vecTable), dr.rowID,
		).Scan(&embBlob)
		if err == nil && len(embBlob) > 0 {
			dr.doc.Embedding, _ = deserializeFloat32(embBlob)
		}
		docs = append(docs, dr.doc)
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	inClause, args := inArgs(ids)

	rows, err := tx.QueryContext(ctx,
		fmt.Sprintf(`SELECT rowid FROM %s WHERE doc_id IN (%s)`, d.docsTable, inClause), args...,
	)
	if err != nil {
		return fmt.Errorf("querying rowids for deletion: %w", err)
	}

	var rowIDs []int64
	for rows.Next() {
		var rowID int64
		if err := rows.Scan(&rowID); err != nil {
			rows.Close()
			return fmt.Errorf("scanning rowid: %w", err)
		}
		rowIDs = append(rowIDs, rowID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rowids: %w", err)
	}

	for _, rowID := range rowIDs {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE rowid = ?`, d.vecTable), rowID,
		); err != nil {
			return fmt.Errorf("deleting embedding rowid %d: %w", rowID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE doc_id IN (%s)`, d.docsTable, inClause), args...,
	); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("deleted documents from sqlite-vec", "table", d.docsTable, "count", len(ids))
	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return d.db.Close()
}

func inArgs(ids []string) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}
