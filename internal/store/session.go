package store

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gym-management-api/internal/model"
	"gym-management-api/internal/schedule"
)

type SessionFilter struct {
	From      time.Time
	To        time.Time
	MemberID  string
	TrainerID string
	Status    string
	Type      string
	Room      string
}

const sessionColumns = `
	ts.id, ts.member_id, ts.trainer_id, ts.type, ts.title, ts.scheduled_at,
	ts.duration_minutes, ts.status, ts.room, ts.equipment, ts.goals, ts.cost,
	ts.member_rating, ts.trainer_rating, ts.actual_start, ts.actual_end,
	ts.notes, ts.recurrence, ts.created_at, ts.updated_at,
	m.first_name, m.last_name, m.email,
	t.first_name, t.last_name, t.email`

const sessionJoins = `
	FROM training_sessions ts
	JOIN members m ON m.id = ts.member_id
	JOIN trainers t ON t.id = ts.trainer_id`

// ListSessions returns sessions whose scheduled instant falls inside the
// closed interval [From, To], ascending, enriched with member and trainer
// identity fields. A partially provisioned schema yields an empty list.
func (s *Store) ListSessions(ctx context.Context, f SessionFilter) ([]model.TrainingSession, error) {
	q := `SELECT` + sessionColumns + sessionJoins +
		` WHERE ts.scheduled_at >= $1 AND ts.scheduled_at <= $2`
	args := []any{f.From, f.To}

	add := func(clause, val string) {
		args = append(args, val)
		q += ` AND ts.` + clause + ` = $` + strconv.Itoa(len(args))
	}
	if f.MemberID != "" {
		add("member_id", f.MemberID)
	}
	if f.TrainerID != "" {
		add("trainer_id", f.TrainerID)
	}
	if f.Status != "" {
		add("status", f.Status)
	}
	if f.Type != "" {
		add("type", f.Type)
	}
	if f.Room != "" {
		add("room", f.Room)
	}
	q += ` ORDER BY ts.scheduled_at`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		if missingSchema(err) {
			return nil, nil
		}
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.TrainingSession
	for rows.Next() {
		ses, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ses)
	}
	return out, rows.Err()
}

func (s *Store) GetSession(ctx context.Context, id string) (*model.TrainingSession, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT`+sessionColumns+sessionJoins+` WHERE ts.id = $1`, id)
	ses, err := scanSession(row)
	if err != nil {
		return nil, translate(err)
	}
	return ses, nil
}

func (s *Store) CreateSession(ctx context.Context, ses *model.TrainingSession) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO training_sessions
		   (id, member_id, trainer_id, type, title, scheduled_at, duration_minutes,
		    status, room, equipment, goals, cost, notes, recurrence)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		 RETURNING created_at, updated_at`,
		ses.ID, ses.MemberID, ses.TrainerID, ses.Type, ses.Title, ses.ScheduledAt,
		ses.DurationMinutes, ses.Status, ses.Room, ses.Equipment, ses.Goals,
		ses.Cost, ses.Notes, ses.Recurrence,
	).Scan(&ses.CreatedAt, &ses.UpdatedAt)
	return translate(err)
}

// UpdateSessionDetails edits non-lifecycle fields. Status changes go through
// TransitionSession only.
func (s *Store) UpdateSessionDetails(ctx context.Context, ses *model.TrainingSession) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE training_sessions
		 SET type=$1, title=$2, room=$3, equipment=$4, goals=$5, cost=$6,
		     notes=$7, recurrence=$8, updated_at=NOW()
		 WHERE id=$9`,
		ses.Type, ses.Title, ses.Room, ses.Equipment, ses.Goals, ses.Cost,
		ses.Notes, ses.Recurrence, ses.ID,
	)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM training_sessions WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Transition captures one lifecycle move plus the fields it stamps.
type Transition struct {
	To            string
	ActualStart   *time.Time // start
	ActualEnd     *time.Time // complete
	Summary       string     // complete, appended to notes
	MemberRating  *int
	TrainerRating *int
	CancelReason  string     // cancel, prefixed into notes
	NewScheduled  *time.Time // reschedule
}

// TransitionSession applies a lifecycle transition after validating it
// against the explicit transition table, under a row lock so two racing
// transitions serialize.
func (s *Store) TransitionSession(ctx context.Context, id string, tr Transition) (*model.TrainingSession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx,
		`SELECT status FROM training_sessions WHERE id = $1 FOR UPDATE`, id,
	).Scan(&current)
	if err != nil {
		return nil, translate(err)
	}

	if !schedule.CanTransition(current, tr.To) {
		return nil, &IllegalTransitionError{From: current, To: tr.To}
	}

	q := `UPDATE training_sessions SET status=$1, updated_at=NOW()`
	args := []any{tr.To}
	add := func(clause string, val any) {
		args = append(args, val)
		q += `, ` + clause + `=$` + strconv.Itoa(len(args))
	}
	if tr.ActualStart != nil {
		add("actual_start", *tr.ActualStart)
	}
	if tr.ActualEnd != nil {
		add("actual_end", *tr.ActualEnd)
	}
	if tr.MemberRating != nil {
		add("member_rating", *tr.MemberRating)
	}
	if tr.TrainerRating != nil {
		add("trainer_rating", *tr.TrainerRating)
	}
	if tr.NewScheduled != nil {
		add("scheduled_at", *tr.NewScheduled)
	}
	if tr.Summary != "" {
		args = append(args, "\nSummary: "+tr.Summary)
		q += `, notes=notes || $` + strconv.Itoa(len(args))
	}
	if tr.CancelReason != "" {
		args = append(args, "Cancelled: "+tr.CancelReason+"\n")
		q += `, notes=$` + strconv.Itoa(len(args)) + ` || notes`
	}
	args = append(args, id)
	q += ` WHERE id=$` + strconv.Itoa(len(args))

	if _, err := tx.Exec(ctx, q, args...); err != nil {
		return nil, translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, translate(err)
	}

	return s.GetSession(ctx, id)
}

// IllegalTransitionError rejects a lifecycle move the table does not allow.
type IllegalTransitionError struct {
	From, To string
}

func (e *IllegalTransitionError) Error() string {
	return "illegal status transition from " + e.From + " to " + e.To
}

// CountOverlapping counts non-cancelled sessions for a trainer whose span
// intersects [start, end). Same semantics as the exclusion constraint, so
// the advisory check and the backstop agree.
func (s *Store) CountOverlapping(ctx context.Context, trainerID string, start, end time.Time, excludeID string) (int, error) {
	q := `SELECT COUNT(*) FROM training_sessions
	      WHERE trainer_id = $1
	        AND status <> 'cancelled'
	        AND span && tstzrange($2, $3, '[)')`
	args := []any{trainerID, start, end}
	if excludeID != "" {
		args = append(args, excludeID)
		q += ` AND id <> $4`
	}

	var n int
	if err := s.pool.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		if missingSchema(err) {
			return 0, nil
		}
		return 0, translate(err)
	}
	return n, nil
}

type SessionStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

func (s *Store) SessionStats(ctx context.Context, from, to time.Time) (*SessionStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM training_sessions
		 WHERE scheduled_at >= $1 AND scheduled_at <= $2
		 GROUP BY status`, from, to,
	)
	if err != nil {
		if missingSchema(err) {
			return &SessionStats{ByStatus: map[string]int{}}, nil
		}
		return nil, translate(err)
	}
	defer rows.Close()

	st := &SessionStats{ByStatus: map[string]int{}}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		st.ByStatus[status] = n
		st.Total += n
	}
	return st, rows.Err()
}

// RecordConflicts logs rejected booking attempts. Best effort: failures here
// must not fail the caller.
func (s *Store) RecordConflicts(ctx context.Context, trainerID string, scheduledAt time.Time, durationMinutes int, conflicts []schedule.Conflict) error {
	for _, c := range conflicts {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO session_conflicts (id, trainer_id, scheduled_at, duration_minutes, kind, details)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			uuid.New().String(), trainerID, scheduledAt, durationMinutes, c.Kind, c.Details,
		)
		if err != nil {
			return translate(err)
		}
	}
	return nil
}

// ListConflicts returns recorded rejected-booking attempts, newest first,
// optionally scoped to one trainer.
func (s *Store) ListConflicts(ctx context.Context, trainerID string) ([]model.SessionConflict, error) {
	q := `SELECT id, trainer_id, scheduled_at, duration_minutes, kind, details,
	             resolved, resolved_by, resolved_at, created_at
	      FROM session_conflicts`
	args := []any{}
	if trainerID != "" {
		args = append(args, trainerID)
		q += ` WHERE trainer_id = $1`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		if missingSchema(err) {
			return nil, nil
		}
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.SessionConflict
	for rows.Next() {
		var sc model.SessionConflict
		if err := rows.Scan(
			&sc.ID, &sc.TrainerID, &sc.ScheduledAt, &sc.DurationMinutes, &sc.Kind,
			&sc.Details, &sc.Resolved, &sc.ResolvedBy, &sc.ResolvedAt, &sc.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (*model.TrainingSession, error) {
	ses := &model.TrainingSession{}
	err := row.Scan(
		&ses.ID, &ses.MemberID, &ses.TrainerID, &ses.Type, &ses.Title, &ses.ScheduledAt,
		&ses.DurationMinutes, &ses.Status, &ses.Room, &ses.Equipment, &ses.Goals, &ses.Cost,
		&ses.MemberRating, &ses.TrainerRating, &ses.ActualStart, &ses.ActualEnd,
		&ses.Notes, &ses.Recurrence, &ses.CreatedAt, &ses.UpdatedAt,
		&ses.MemberFirstName, &ses.MemberLastName, &ses.MemberEmail,
		&ses.TrainerFirstName, &ses.TrainerLastName, &ses.TrainerEmail,
	)
	if err != nil {
		return nil, err
	}
	return ses, nil
}
