package persist

import (
	"context"
	"encoding/json"

	"github.com/habitflow/project/internal/habit"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createHabitsTableSQL = `
CREATE TABLE IF NOT EXISTS habits (
  habit_id text PRIMARY KEY,
  owner_id text NOT NULL,
  name text NOT NULL,
  emoji text NOT NULL DEFAULT '',
  color text NOT NULL DEFAULT '',
  duration_minutes integer NOT NULL,
  frequency text NOT NULL DEFAULT 'daily',
  completed_dates jsonb NOT NULL DEFAULT '[]',
  created_at timestamptz NOT NULL
)`

const createHabitsOwnerIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_habits_owner ON habits (owner_id)`

const upsertHabitSQL = `
INSERT INTO habits (
  habit_id, owner_id, name, emoji, color,
  duration_minutes, frequency, completed_dates, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (habit_id) DO UPDATE
SET name = EXCLUDED.name,
    emoji = EXCLUDED.emoji,
    color = EXCLUDED.color,
    duration_minutes = EXCLUDED.duration_minutes,
    frequency = EXCLUDED.frequency,
    completed_dates = EXCLUDED.completed_dates
`

const deleteHabitSQL = `
DELETE FROM habits WHERE habit_id = $1 AND owner_id = $2`

const listHabitsByOwnerSQL = `
SELECT habit_id, owner_id, name, emoji, color,
       duration_minutes, frequency, completed_dates, created_at
FROM habits
WHERE owner_id = $1
ORDER BY created_at, habit_id`

// HabitRepository stores one document row per habit, scoped by owner.
type HabitRepository struct {
	Pool *pgxpool.Pool
}

func NewHabitRepository(pool *pgxpool.Pool) *HabitRepository {
	return &HabitRepository{Pool: pool}
}

func (r *HabitRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.Pool.Exec(ctx, createHabitsTableSQL); err != nil {
		return err
	}
	if _, err := r.Pool.Exec(ctx, createHabitsOwnerIndexSQL); err != nil {
		return err
	}
	return nil
}

func (r *HabitRepository) Upsert(ctx context.Context, h habit.Habit) error {
	dates, err := json.Marshal(h.CompletedDates)
	if err != nil {
		return err
	}
	_, err = r.Pool.Exec(ctx, upsertHabitSQL,
		h.ID,
		h.OwnerID,
		h.Name,
		h.Emoji,
		h.Color,
		h.DurationMinutes,
		h.Frequency,
		dates,
		h.CreatedAt,
	)
	return err
}

func (r *HabitRepository) Delete(ctx context.Context, habitID, ownerID string) error {
	_, err := r.Pool.Exec(ctx, deleteHabitSQL, habitID, ownerID)
	return err
}

func (r *HabitRepository) ListByOwner(ctx context.Context, ownerID string) ([]habit.Habit, error) {
	rows, err := r.Pool.Query(ctx, listHabitsByOwnerSQL, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := make([]habit.Habit, 0)
	for rows.Next() {
		var h habit.Habit
		var dates []byte
		if err := rows.Scan(
			&h.ID,
			&h.OwnerID,
			&h.Name,
			&h.Emoji,
			&h.Color,
			&h.DurationMinutes,
			&h.Frequency,
			&dates,
			&h.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(dates, &h.CompletedDates); err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return habits, nil
}
