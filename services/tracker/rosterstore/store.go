// Package rosterstore persists team rosters between runs. Rosters
// change rarely and fetching one costs a three-level include walk,
// so they are kept in sqlite with their fetch time and only
// re-fetched for the club's own teams when stale.
package rosterstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "embed"

	"waterpolo-tracker/lib/leverade"
	"waterpolo-tracker/lib/sqliteutil"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) Store {
	return Store{db: db}
}

// Open opens (creating if necessary) a roster store at the given
// sqlite path or libsql url.
func Open(target string) (Store, error) {
	db, err := sqliteutil.OpenDB(schema, target)
	if err != nil {
		return Store{}, err
	}
	return Store{db: db}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// Get returns the stored roster for a team and when it was fetched.
// ok is false when the team has never been stored.
func (s Store) Get(ctx context.Context, teamID string) (roster []leverade.RosterEntry, fetchedAt time.Time, ok bool, err error) {
	row := s.db.QueryRowContext(
		ctx,
		"SELECT fetched_at, payload FROM rosters WHERE team_id = ?",
		teamID,
	)

	var unix int64
	var payload string
	err = row.Scan(&unix, &payload)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, err
	}

	err = json.Unmarshal([]byte(payload), &roster)
	if err != nil {
		return nil, time.Time{}, false, err
	}
	return roster, time.Unix(unix, 0), true, nil
}

func (s Store) Put(ctx context.Context, teamID string, roster []leverade.RosterEntry) error {
	payload, err := json.Marshal(roster)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO rosters (team_id, fetched_at, payload) VALUES (?, ?, ?)
		ON CONFLICT (team_id) DO UPDATE SET fetched_at = excluded.fetched_at, payload = excluded.payload`,
		teamID,
		time.Now().Unix(),
		string(payload),
	)
	return err
}

// Stale reports whether a team's roster is missing or older than
// maxAge and should be re-fetched.
func (s Store) Stale(ctx context.Context, teamID string, maxAge time.Duration) (bool, error) {
	_, fetchedAt, ok, err := s.Get(ctx, teamID)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return time.Since(fetchedAt) > maxAge, nil
}
