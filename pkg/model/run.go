package model

import (
	"context"
	"errors"
	"registration-verifier/pkg/db"
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit is the number of runs ListRuns returns when no limit is given
const DefaultListLimit = 20

const runColumns = `
verification_runs.id,
verification_runs.email,
verification_runs.outcome,
verification_runs.step,
verification_runs.detail,
verification_runs.message_text,
verification_runs.screenshot_path,
verification_runs.started,
verification_runs.finished`

// ErrInvalidLimit is returned when a negative limit is requested
var ErrInvalidLimit = errors.New("limit cannot be less than zero")

// Run is a record in the `verification_runs` table
type Run struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Outcome        string    `json:"outcome"`
	Step           string    `json:"step,omitempty"`
	Detail         string    `json:"detail,omitempty"`
	MessageText    string    `json:"messageText,omitempty"`
	ScreenshotPath string    `json:"screenshotPath,omitempty"`
	Started        time.Time `json:"started"`
	Finished       time.Time `json:"finished"`
}

// Duration is how long the run took
func (r *Run) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

func getRunByRow(row db.Scanner) (*Run, error) {
	var run Run
	if err := row.Scan(&run.ID, &run.Email, &run.Outcome, &run.Step, &run.Detail, &run.MessageText, &run.ScreenshotPath, &run.Started, &run.Finished); err != nil {
		return nil, err
	}

	return &run, nil
}

// Save inserts the run. A run without an ID is given one.
func (r *Run) Save(ctx context.Context) error {
	const query = `
INSERT INTO verification_runs (id, email, outcome, step, detail, message_text, screenshot_path, started, finished)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	_, err := db.Instance().ExecContext(ctx, query, r.ID, r.Email, r.Outcome, r.Step, r.Detail, r.MessageText, r.ScreenshotPath, r.Started.UTC(), r.Finished.UTC())
	return err
}

// GetRunByID returns a run by its ID
func GetRunByID(ctx context.Context, id uuid.UUID) (*Run, error) {
	const query = `
SELECT ` + runColumns + `
FROM verification_runs
WHERE id = $1`

	row := db.Instance().QueryRowContext(ctx, query, id)
	return getRunByRow(row)
}

// ListRuns returns the most recent runs, newest first
func ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	if limit == 0 {
		limit = DefaultListLimit
	}

	const query = `
SELECT ` + runColumns + `
FROM verification_runs
ORDER BY started DESC
LIMIT $1`

	rows, err := db.Instance().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*Run, 0, limit)
	for rows.Next() {
		run, err := getRunByRow(rows)
		if err != nil {
			return nil, err
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}
