// Package history persists a lifecycle audit trail for games.
package history

import (
	"context"
	"time"

	"github.com/vigarblock/texas-holdem-poker-server/pkg/db"
)

// Event is the kind of lifecycle event being recorded
type Event string

// lifecycle events
const (
	EventCreated Event = "created"
	EventStarted Event = "started"
	EventEnded   Event = "ended"
)

// Record is a row in the `game_history` table
type Record struct {
	ID      int64     `json:"id"`
	GameID  string    `json:"gameId"`
	Event   Event     `json:"event"`
	Detail  string    `json:"detail"`
	Created time.Time `json:"created"`
}

// Recorder persists game lifecycle events
type Recorder interface {
	Record(ctx context.Context, gameID string, event Event, detail string) error
}

// PostgresRecorder writes lifecycle events to Postgres
type PostgresRecorder struct{}

// Record inserts a lifecycle event
func (PostgresRecorder) Record(ctx context.Context, gameID string, event Event, detail string) error {
	const query = `
INSERT INTO game_history (game_id, event, detail)
VALUES ($1, $2, $3)`

	_, err := db.Instance().ExecContext(ctx, query, gameID, string(event), detail)
	return err
}

// NopRecorder discards lifecycle events. Used when the server runs without a
// database.
type NopRecorder struct{}

// Record does nothing
func (NopRecorder) Record(context.Context, string, Event, string) error {
	return nil
}

const recordColumns = `
game_history.id,
game_history.game_id,
game_history.event,
game_history.detail,
game_history.created`

func getRecordByRow(row db.Scanner) (*Record, error) {
	var record Record
	if err := row.Scan(&record.ID, &record.GameID, &record.Event, &record.Detail, &record.Created); err != nil {
		return nil, err
	}

	return &record, nil
}

// GetRecordsByGameID returns a game's lifecycle events, oldest first
func GetRecordsByGameID(ctx context.Context, gameID string) ([]*Record, error) {
	const query = `
SELECT ` + recordColumns + `
FROM game_history
WHERE game_id = $1
ORDER BY id`

	rows, err := db.Instance().QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*Record, 0)
	for rows.Next() {
		record, err := getRecordByRow(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, rows.Err()
}
