package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/darsapp/backend/internal/schedule/domain"
)

var ErrScheduleNotFound = errors.New("schedule not found")

// querier is the slice of pgxpool.Pool this repository issues statements
// through.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

type Repository interface {
	// Replace inserts the new schedule first and then deletes every other
	// schedule row for the tutor. A crash between the two steps leaves at
	// most one stale extra row, never zero. Concurrent replacements for the
	// same tutor race; whichever prune runs last wins.
	Replace(ctx context.Context, tutorID string, scheduleID string, days domain.WeekDays) (domain.Schedule, error)
	FindByTutorID(ctx context.Context, tutorID string) (domain.Schedule, error)
	ListByTutorID(ctx context.Context, tutorID string) ([]domain.Schedule, error)
}

type PgRepository struct {
	db querier
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: pool}
}

func (r *PgRepository) Replace(ctx context.Context, tutorID string, scheduleID string, days domain.WeekDays) (domain.Schedule, error) {
	daysJSON, err := json.Marshal(days)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("failed to marshal schedule days: %w", err)
	}

	row := r.db.QueryRow(
		ctx,
		`INSERT INTO schedules (id, tutor_id, days) VALUES ($1, $2, $3) RETURNING created_at`,
		scheduleID,
		tutorID,
		daysJSON,
	)

	sched := domain.Schedule{
		ID:      scheduleID,
		TutorID: tutorID,
		Days:    days,
	}
	if err := row.Scan(&sched.CreatedAt); err != nil {
		return domain.Schedule{}, fmt.Errorf("failed to insert schedule: %w", err)
	}

	_, err = r.db.Exec(
		ctx,
		`DELETE FROM schedules WHERE tutor_id = $1 AND id <> $2`,
		tutorID,
		scheduleID,
	)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("failed to prune old schedules: %w", err)
	}

	return sched, nil
}

func (r *PgRepository) FindByTutorID(ctx context.Context, tutorID string) (domain.Schedule, error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT id, tutor_id, days, created_at FROM schedules WHERE tutor_id = $1 ORDER BY created_at DESC LIMIT 1`,
		tutorID,
	)

	sched, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Schedule{}, ErrScheduleNotFound
		}
		return domain.Schedule{}, err
	}
	return sched, nil
}

func (r *PgRepository) ListByTutorID(ctx context.Context, tutorID string) ([]domain.Schedule, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT id, tutor_id, days, created_at FROM schedules WHERE tutor_id = $1 ORDER BY created_at DESC`,
		tutorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []domain.Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, sched)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return schedules, nil
}

func scanSchedule(row pgx.Row) (domain.Schedule, error) {
	var (
		sched    domain.Schedule
		daysJSON []byte
	)
	if err := row.Scan(&sched.ID, &sched.TutorID, &daysJSON, &sched.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Schedule{}, err
		}
		return domain.Schedule{}, fmt.Errorf("failed to scan schedule: %w", err)
	}
	if err := json.Unmarshal(daysJSON, &sched.Days); err != nil {
		return domain.Schedule{}, fmt.Errorf("failed to unmarshal schedule days: %w", err)
	}
	return sched, nil
}
