package store

import (
	"context"

	"gym-management-api/internal/model"
)

func (s *Store) ListSubscriptions(ctx context.Context, memberID, status string) ([]model.Subscription, error) {
	q := `SELECT s.id, s.member_id, s.plan_id, s.start_date, s.end_date, s.status, s.price,
	             s.created_at, s.updated_at,
	             m.first_name || ' ' || m.last_name AS member_name,
	             p.name AS plan_name
	      FROM subscriptions s
	      JOIN members m ON m.id = s.member_id
	      JOIN membership_plans p ON p.id = s.plan_id
	      WHERE 1=1`
	args := []any{}
	if memberID != "" {
		args = append(args, memberID)
		q += ` AND s.member_id = $1`
	}
	if status != "" {
		args = append(args, status)
		if len(args) == 1 {
			q += ` AND s.status = $1`
		} else {
			q += ` AND s.status = $2`
		}
	}
	q += ` ORDER BY s.start_date DESC`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		if missingSchema(err) {
			return nil, nil
		}
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.Subscription
	for rows.Next() {
		var sub model.Subscription
		if err := rows.Scan(
			&sub.ID, &sub.MemberID, &sub.PlanID, &sub.StartDate, &sub.EndDate,
			&sub.Status, &sub.Price, &sub.CreatedAt, &sub.UpdatedAt,
			&sub.MemberName, &sub.PlanName,
		); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *Store) GetSubscription(ctx context.Context, id string) (*model.Subscription, error) {
	sub := &model.Subscription{}
	err := s.pool.QueryRow(ctx,
		`SELECT s.id, s.member_id, s.plan_id, s.start_date, s.end_date, s.status, s.price,
		        s.created_at, s.updated_at,
		        m.first_name || ' ' || m.last_name, p.name
		 FROM subscriptions s
		 JOIN members m ON m.id = s.member_id
		 JOIN membership_plans p ON p.id = s.plan_id
		 WHERE s.id = $1`, id,
	).Scan(&sub.ID, &sub.MemberID, &sub.PlanID, &sub.StartDate, &sub.EndDate,
		&sub.Status, &sub.Price, &sub.CreatedAt, &sub.UpdatedAt,
		&sub.MemberName, &sub.PlanName)
	if err != nil {
		return nil, translate(err)
	}
	return sub, nil
}

func (s *Store) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO subscriptions (id, member_id, plan_id, start_date, end_date, status, price)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING created_at, updated_at`,
		sub.ID, sub.MemberID, sub.PlanID, sub.StartDate, sub.EndDate, sub.Status, sub.Price,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)
	return translate(err)
}

func (s *Store) UpdateSubscription(ctx context.Context, sub *model.Subscription) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE subscriptions
		 SET plan_id=$1, start_date=$2, end_date=$3, status=$4, price=$5, updated_at=NOW()
		 WHERE id=$6`,
		sub.PlanID, sub.StartDate, sub.EndDate, sub.Status, sub.Price, sub.ID,
	)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM subscriptions WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type SubscriptionStats struct {
	Active       int     `json:"active"`
	ExpiringSoon int     `json:"expiringSoon"`
	Revenue      float64 `json:"revenue"`
}

func (s *Store) SubscriptionStats(ctx context.Context) (*SubscriptionStats, error) {
	st := &SubscriptionStats{}
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE status = 'active'),
		        COUNT(*) FILTER (WHERE status = 'active' AND end_date <= CURRENT_DATE + 30),
		        COALESCE(SUM(price) FILTER (WHERE status = 'active'), 0)
		 FROM subscriptions`,
	).Scan(&st.Active, &st.ExpiringSoon, &st.Revenue)
	if err != nil {
		if missingSchema(err) {
			return &SubscriptionStats{}, nil
		}
		return nil, translate(err)
	}
	return st, nil
}
