package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jgoulah/energyviz/pkg/models"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// Fetch describes the batch that last replaced a collection
type Fetch struct {
	ID          string
	Collection  models.Collection
	FetchedAt   time.Time
	RecordCount int
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS energy_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		record_id TEXT,
		timestamp TEXT NOT NULL,
		energy_kwh REAL NOT NULL,
		location TEXT,
		sector TEXT,
		source TEXT,
		consumer_id TEXT,
		system_id TEXT,
		price REAL,
		total REAL,
		fetch_id TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_records_collection ON energy_records(collection);
	CREATE INDEX IF NOT EXISTS idx_records_timestamp ON energy_records(timestamp);

	CREATE TABLE IF NOT EXISTS fetches (
		fetch_id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		record_count INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fetches_collection ON fetches(collection);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// ReplaceCollection swaps a collection's snapshot for records in one
// transaction and returns the new fetch
func (db *DB) ReplaceCollection(c models.Collection, records []models.EnergyRecord) (*Fetch, error) {
	fetch := &Fetch{
		ID:          uuid.NewString(),
		Collection:  c,
		FetchedAt:   time.Now().UTC().Truncate(time.Second),
		RecordCount: len(records),
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM energy_records WHERE collection = ?`, string(c)); err != nil {
		return nil, fmt.Errorf("deleting %s records: %w", c, err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO energy_records (collection, record_id, timestamp, energy_kwh, location, sector, source, consumer_id, system_id, price, total, fetch_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(string(c), r.ID, r.Timestamp, r.EnergyKWh, r.Location, r.Sector, r.Source,
			r.ConsumerID, r.SystemID, r.Price, r.Total, fetch.ID); err != nil {
			return nil, fmt.Errorf("inserting %s record: %w", c, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO fetches (fetch_id, collection, fetched_at, record_count) VALUES (?, ?, ?, ?)`,
		fetch.ID, string(c), fetch.FetchedAt.Format(time.RFC3339), fetch.RecordCount); err != nil {
		return nil, fmt.Errorf("recording fetch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing %s snapshot: %w", c, err)
	}
	return fetch, nil
}

// ListRecords returns a collection's snapshot ordered by timestamp
func (db *DB) ListRecords(c models.Collection) ([]models.EnergyRecord, error) {
	query := `
	SELECT record_id, timestamp, energy_kwh, location, sector, source, consumer_id, system_id, price, total
	FROM energy_records
	WHERE collection = ?
	ORDER BY timestamp ASC, id ASC
	`

	rows, err := db.conn.Query(query, string(c))
	if err != nil {
		return nil, fmt.Errorf("querying %s records: %w", c, err)
	}
	defer rows.Close()

	results := []models.EnergyRecord{}
	for rows.Next() {
		var r models.EnergyRecord
		var recordID, location, sector, source, consumerID, systemID sql.NullString
		var price, total sql.NullFloat64

		if err := rows.Scan(&recordID, &r.Timestamp, &r.EnergyKWh, &location, &sector, &source,
			&consumerID, &systemID, &price, &total); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		r.ID = recordID.String
		r.Location = location.String
		r.Sector = sector.String
		r.Source = source.String
		r.ConsumerID = consumerID.String
		r.SystemID = systemID.String
		r.Price = price.Float64
		r.Total = total.Float64

		results = append(results, r)
	}

	return results, rows.Err()
}

// LastFetch returns the fetch that produced the current snapshot, or nil
// when the collection was never fetched
func (db *DB) LastFetch(c models.Collection) (*Fetch, error) {
	query := `
	SELECT fetch_id, fetched_at, record_count
	FROM fetches
	WHERE collection = ?
	ORDER BY fetched_at DESC, rowid DESC
	LIMIT 1
	`

	var f Fetch
	var fetchedAt string
	err := db.conn.QueryRow(query, string(c)).Scan(&f.ID, &fetchedAt, &f.RecordCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last fetch: %w", err)
	}

	f.Collection = c
	f.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing fetched_at: %w", err)
	}
	return &f, nil
}

// HasData checks if a snapshot exists for the collection
func (db *DB) HasData(c models.Collection) (bool, error) {
	f, err := db.LastFetch(c)
	if err != nil {
		return false, err
	}
	return f != nil, nil
}

// Apply stores a fetched collection, satisfying fetcher.Sink. Errors are
// logged and reported as a rejected apply.
func (db *DB) Apply(c models.Collection, records []models.EnergyRecord) bool {
	if _, err := db.ReplaceCollection(c, records); err != nil {
		slog.Warn("storing snapshot failed", "component", "database", "collection", c, "error", err)
		return false
	}
	return true
}

// Records serves the snapshot as a fetcher.Source for offline use
func (db *DB) Records(ctx context.Context, c models.Collection) ([]models.EnergyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return db.ListRecords(c)
}
