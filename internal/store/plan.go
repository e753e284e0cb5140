package store

import (
	"context"

	"gym-management-api/internal/model"
)

func (s *Store) ListPlans(ctx context.Context, activeOnly bool) ([]model.MembershipPlan, error) {
	q := `SELECT id, name, description, price, duration_days, features, active, created_at, updated_at
	      FROM membership_plans`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY price`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		if missingSchema(err) {
			return nil, nil
		}
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.MembershipPlan
	for rows.Next() {
		var p model.MembershipPlan
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationDays,
			&p.Features, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetPlan(ctx context.Context, id string) (*model.MembershipPlan, error) {
	p := &model.MembershipPlan{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, price, duration_days, features, active, created_at, updated_at
		 FROM membership_plans WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationDays,
		&p.Features, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (s *Store) CreatePlan(ctx context.Context, p *model.MembershipPlan) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO membership_plans (id, name, description, price, duration_days, features, active)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.Price, p.DurationDays, p.Features, p.Active,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (s *Store) UpdatePlan(ctx context.Context, p *model.MembershipPlan) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE membership_plans
		 SET name=$1, description=$2, price=$3, duration_days=$4, features=$5, active=$6, updated_at=NOW()
		 WHERE id=$7`,
		p.Name, p.Description, p.Price, p.DurationDays, p.Features, p.Active, p.ID,
	)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeletePlan(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM membership_plans WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedPlans inserts the default plan set, skipping names that already exist.
// Safe to call repeatedly.
func (s *Store) SeedPlans(ctx context.Context, plans []model.MembershipPlan) (int, error) {
	inserted := 0
	for _, p := range plans {
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO membership_plans (id, name, description, price, duration_days, features, active)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 ON CONFLICT (name) DO NOTHING`,
			p.ID, p.Name, p.Description, p.Price, p.DurationDays, p.Features, p.Active,
		)
		if err != nil {
			return inserted, translate(err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
