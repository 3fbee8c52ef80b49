package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store persists a station catalog to SQLite so the last imported feed can be
// reloaded without refetching it.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if necessary creates) the catalog database at dbPath.
// Use ":memory:" for an ephemeral store.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening catalog database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS stations (
			station_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			north_order INTEGER NOT NULL,
			south_order INTEGER NOT NULL,
			is_terminal INTEGER NOT NULL,
			landmark TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_stations_north_order ON stations(north_order);
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error creating stations table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored catalog with the given one.
func (s *Store) Save(ctx context.Context, c *Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM stations;`); err != nil {
		return fmt.Errorf("error clearing stations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO stations (
			station_id, name, lat, lon, north_order, south_order, is_terminal, landmark
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for _, st := range c.Stations() {
		_, err := stmt.ExecContext(ctx,
			st.ID, st.Name, st.Lat, st.Lon,
			st.NorthOrder, st.SouthOrder, boolToInt(st.IsTerminal), st.Landmark,
		)
		if err != nil {
			return fmt.Errorf("error inserting station: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// Load reads the stored catalog. It returns sql.ErrNoRows if the store is
// empty.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT station_id, name, lat, lon, north_order, south_order, is_terminal, landmark
		FROM stations ORDER BY north_order;
	`)
	if err != nil {
		return nil, fmt.Errorf("error querying stations: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	var stations []Station
	for rows.Next() {
		var st Station
		var isTerminal int64
		var landmark sql.NullString
		err := rows.Scan(&st.ID, &st.Name, &st.Lat, &st.Lon,
			&st.NorthOrder, &st.SouthOrder, &isTerminal, &landmark)
		if err != nil {
			return nil, fmt.Errorf("error scanning station: %w", err)
		}
		st.IsTerminal = isTerminal != 0
		st.Landmark = landmark.String
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading stations: %w", err)
	}

	if len(stations) == 0 {
		return nil, sql.ErrNoRows
	}
	return NewCatalog(stations)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
