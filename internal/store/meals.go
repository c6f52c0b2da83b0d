package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/repledger/internal/model"
)

// MealFilter narrows ListMeals. From is inclusive, To exclusive; zero values
// are ignored.
type MealFilter struct {
	From   time.Time
	To     time.Time
	Choice model.MealChoice
	Limit  int
}

// InsertMeal stores a meal decision. The ObligationID field is derived on
// read and is not stored here.
func (s *Store) InsertMeal(ctx context.Context, m model.MealRecord) error {
	return insertMeal(ctx, s.db, m)
}

// InsertMealWithObligation stores an eaten meal and the obligation it opens
// in one transaction, so neither exists without the other.
func (s *Store) InsertMealWithObligation(ctx context.Context, m model.MealRecord, o model.Obligation) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertMeal(ctx, tx, m); err != nil {
			return err
		}
		return insertObligation(ctx, tx, o)
	})
}

func insertMeal(ctx context.Context, q queryer, m model.MealRecord) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO meal_records
		(id, timestamp, food_name, estimated_calories, confidence, choice)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		m.ID,
		toMillis(m.Timestamp),
		m.FoodName,
		m.EstimatedCalories,
		m.Confidence,
		string(m.Choice),
	)
	if err != nil {
		return fmt.Errorf("insert meal record: %w", err)
	}
	return nil
}

// ListMeals returns matching meal records, newest first, each joined with
// the obligation it spawned (if any).
func (s *Store) ListMeals(ctx context.Context, f MealFilter) ([]model.MealRecord, error) {
	where, args := mealWhere(f)
	query := `
		SELECT m.id, m.timestamp, m.food_name, m.estimated_calories, m.confidence, m.choice,
			IFNULL((SELECT o.id FROM obligations o WHERE o.meal_record_id = m.id ORDER BY o.seq LIMIT 1), '')
		FROM meal_records m`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY m.timestamp DESC, m.seq DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query meal records: %w", err)
	}
	defer rows.Close()

	meals := []model.MealRecord{}
	for rows.Next() {
		var m model.MealRecord
		var ts int64
		var choice string
		if err := rows.Scan(&m.ID, &ts, &m.FoodName, &m.EstimatedCalories, &m.Confidence, &choice, &m.ObligationID); err != nil {
			return nil, fmt.Errorf("scan meal record: %w", err)
		}
		m.Timestamp = fromMillis(ts)
		m.Choice = model.MealChoice(choice)
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal records: %w", err)
	}
	return meals, nil
}

// SumMealCalories totals estimated calories over matching meal records.
func (s *Store) SumMealCalories(ctx context.Context, f MealFilter) (int, error) {
	where, args := mealWhere(f)
	query := `SELECT IFNULL(SUM(m.estimated_calories), 0) FROM meal_records m`
	if where != "" {
		query += ` WHERE ` + where
	}
	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum meal calories: %w", err)
	}
	return total, nil
}

func mealWhere(f MealFilter) (string, []any) {
	var where []string
	var args []any
	if !f.From.IsZero() {
		where = append(where, "m.timestamp >= ?")
		args = append(args, toMillis(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "m.timestamp < ?")
		args = append(args, toMillis(f.To))
	}
	if f.Choice != "" {
		where = append(where, "m.choice = ?")
		args = append(args, string(f.Choice))
	}
	return strings.Join(where, " AND "), args
}
