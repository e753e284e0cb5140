package store

import (
	"context"

	"gym-management-api/internal/model"
)

func (s *Store) CreateComment(ctx context.Context, c *model.SessionComment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO session_comments (id, session_id, author_id, type, visible_to_member, body)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING created_at`,
		c.ID, c.SessionID, c.AuthorID, c.Type, c.VisibleToMember, c.Body,
	).Scan(&c.CreatedAt)
	return translate(err)
}

// ListComments returns a session's comments oldest first, enriched with the
// author's name and role.
func (s *Store) ListComments(ctx context.Context, sessionID string) ([]model.SessionComment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.session_id, c.author_id, c.type, c.visible_to_member, c.body, c.created_at,
		        u.first_name || ' ' || u.last_name, u.role
		 FROM session_comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.session_id = $1
		 ORDER BY c.created_at`, sessionID,
	)
	if err != nil {
		if missingSchema(err) {
			return nil, nil
		}
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.SessionComment
	for rows.Next() {
		var c model.SessionComment
		if err := rows.Scan(
			&c.ID, &c.SessionID, &c.AuthorID, &c.Type, &c.VisibleToMember,
			&c.Body, &c.CreatedAt, &c.AuthorName, &c.AuthorRole,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
