package store

import (
	"context"
	"strconv"
	"time"

	"gym-management-api/internal/model"
)

type MemberFilter struct {
	Status string
	Search string // matches first name, last name or email
}

func (s *Store) ListMembers(ctx context.Context, f MemberFilter) ([]model.Member, error) {
	q := `SELECT id, first_name, last_name, email, phone, status, join_date,
	             emergency_contact, notes, created_at, updated_at
	      FROM members WHERE 1=1`
	args := []any{}

	if f.Status != "" {
		args = append(args, f.Status)
		q += ` AND status = $1`
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		ph := "$" + strconv.Itoa(len(args))
		q += ` AND (first_name ILIKE ` + ph + ` OR last_name ILIKE ` + ph + ` OR email ILIKE ` + ph + `)`
	}
	q += ` ORDER BY last_name, first_name`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		if missingSchema(err) {
			return nil, nil
		}
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(
			&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.Status,
			&m.JoinDate, &m.EmergencyContact, &m.Notes, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) GetMember(ctx context.Context, id string) (*model.Member, error) {
	m := &model.Member{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, phone, status, join_date,
		        emergency_contact, notes, created_at, updated_at
		 FROM members WHERE id = $1`, id,
	).Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.Status,
		&m.JoinDate, &m.EmergencyContact, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

func (s *Store) CreateMember(ctx context.Context, m *model.Member) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO members (id, first_name, last_name, email, phone, status,
		                      join_date, emergency_contact, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING created_at, updated_at`,
		m.ID, m.FirstName, m.LastName, m.Email, m.Phone, m.Status,
		m.JoinDate, m.EmergencyContact, m.Notes,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return translate(err)
}

func (s *Store) UpdateMember(ctx context.Context, m *model.Member) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE members
		 SET first_name=$1, last_name=$2, email=$3, phone=$4,
		     emergency_contact=$5, notes=$6, updated_at=NOW()
		 WHERE id=$7`,
		m.FirstName, m.LastName, m.Email, m.Phone,
		m.EmergencyContact, m.Notes, m.ID,
	)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM members WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMemberStatus flips a member between active and frozen, cascading the
// new state to the member's active subscriptions in the same transaction.
func (s *Store) SetMemberStatus(ctx context.Context, id, status string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE members SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	from, to := "active", "frozen"
	if status == "active" {
		from, to = "frozen", "active"
	}
	_, err = tx.Exec(ctx,
		`UPDATE subscriptions SET status=$1, updated_at=NOW()
		 WHERE member_id=$2 AND status=$3`, to, id, from)
	if err != nil {
		return translate(err)
	}

	return tx.Commit(ctx)
}

type MemberStats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Frozen       int `json:"frozen"`
	NewThisMonth int `json:"newThisMonth"`
}

func (s *Store) MemberStats(ctx context.Context) (*MemberStats, error) {
	monthStart := time.Now().UTC().Truncate(24 * time.Hour)
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)

	st := &MemberStats{}
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'active'),
		        COUNT(*) FILTER (WHERE status = 'frozen'),
		        COUNT(*) FILTER (WHERE join_date >= $1)
		 FROM members`, monthStart,
	).Scan(&st.Total, &st.Active, &st.Frozen, &st.NewThisMonth)
	if err != nil {
		if missingSchema(err) {
			return &MemberStats{}, nil
		}
		return nil, translate(err)
	}
	return st, nil
}
