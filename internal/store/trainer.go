package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"gym-management-api/internal/model"
)

func (s *Store) ListTrainers(ctx context.Context, activeOnly bool) ([]model.Trainer, error) {
	q := `SELECT id, first_name, last_name, email, phone, specialization,
	             hourly_rate, active, created_at, updated_at
	      FROM trainers`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY last_name, first_name`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		if missingSchema(err) {
			return nil, nil
		}
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.Trainer
	for rows.Next() {
		var t model.Trainer
		if err := rows.Scan(
			&t.ID, &t.FirstName, &t.LastName, &t.Email, &t.Phone,
			&t.Specialization, &t.HourlyRate, &t.Active, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTrainer(ctx context.Context, id string) (*model.Trainer, error) {
	t := &model.Trainer{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, phone, specialization,
		        hourly_rate, active, created_at, updated_at
		 FROM trainers WHERE id = $1`, id,
	).Scan(&t.ID, &t.FirstName, &t.LastName, &t.Email, &t.Phone,
		&t.Specialization, &t.HourlyRate, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (s *Store) CreateTrainer(ctx context.Context, t *model.Trainer) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO trainers (id, first_name, last_name, email, phone, specialization, hourly_rate, active)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING created_at, updated_at`,
		t.ID, t.FirstName, t.LastName, t.Email, t.Phone, t.Specialization, t.HourlyRate, t.Active,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	return translate(err)
}

func (s *Store) UpdateTrainer(ctx context.Context, t *model.Trainer) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE trainers
		 SET first_name=$1, last_name=$2, email=$3, phone=$4,
		     specialization=$5, hourly_rate=$6, active=$7, updated_at=NOW()
		 WHERE id=$8`,
		t.FirstName, t.LastName, t.Email, t.Phone,
		t.Specialization, t.HourlyRate, t.Active, t.ID,
	)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTrainer(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trainers WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type TrainerStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

func (s *Store) TrainerStats(ctx context.Context) (*TrainerStats, error) {
	st := &TrainerStats{}
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE active) FROM trainers`,
	).Scan(&st.Total, &st.Active)
	if err != nil {
		if missingSchema(err) {
			return &TrainerStats{}, nil
		}
		return nil, translate(err)
	}
	return st, nil
}

// AvailabilityWindows returns a trainer's enabled windows for one weekday.
// Effective-date coverage is checked by the schedule package.
func (s *Store) AvailabilityWindows(ctx context.Context, trainerID string, dayOfWeek int) ([]model.TrainerAvailability, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, trainer_id, day_of_week, start_time::text, end_time::text,
		        effective_from, effective_to, is_available, created_at
		 FROM trainer_availability
		 WHERE trainer_id = $1 AND day_of_week = $2 AND is_available
		 ORDER BY start_time`, trainerID, dayOfWeek,
	)
	if err != nil {
		if missingSchema(err) {
			return nil, nil
		}
		return nil, translate(err)
	}
	defer rows.Close()

	return scanAvailability(rows)
}

func (s *Store) ListAvailability(ctx context.Context, trainerID string) ([]model.TrainerAvailability, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, trainer_id, day_of_week, start_time::text, end_time::text,
		        effective_from, effective_to, is_available, created_at
		 FROM trainer_availability
		 WHERE trainer_id = $1
		 ORDER BY day_of_week, start_time`, trainerID,
	)
	if err != nil {
		if missingSchema(err) {
			return nil, nil
		}
		return nil, translate(err)
	}
	defer rows.Close()

	return scanAvailability(rows)
}

func (s *Store) CreateAvailability(ctx context.Context, a *model.TrainerAvailability) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO trainer_availability
		   (id, trainer_id, day_of_week, start_time, end_time, effective_from, effective_to, is_available)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING created_at`,
		a.ID, a.TrainerID, a.DayOfWeek, a.StartTime, a.EndTime,
		a.EffectiveFrom, a.EffectiveTo, a.IsAvailable,
	).Scan(&a.CreatedAt)
	return translate(err)
}

func (s *Store) DeleteAvailability(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trainer_availability WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAvailability(rows pgx.Rows) ([]model.TrainerAvailability, error) {
	var out []model.TrainerAvailability
	for rows.Next() {
		var a model.TrainerAvailability
		if err := rows.Scan(
			&a.ID, &a.TrainerID, &a.DayOfWeek, &a.StartTime, &a.EndTime,
			&a.EffectiveFrom, &a.EffectiveTo, &a.IsAvailable, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
