package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gym-management-api/internal/datefmt"
	"gym-management-api/internal/export"
	"gym-management-api/internal/middleware"
	"gym-management-api/internal/model"
	"gym-management-api/internal/schedule"
	"gym-management-api/internal/store"
)

type sessionRequest struct {
	MemberID        string   `json:"memberId"`
	TrainerID       string   `json:"trainerId"`
	Type            string   `json:"type"`
	Title           string   `json:"title"`
	ScheduledAt     string   `json:"scheduledAt"` // RFC 3339
	DurationMinutes int      `json:"durationMinutes"`
	Room            string   `json:"room"`
	Equipment       []string `json:"equipment"`
	Goals           string   `json:"goals"`
	Cost            float64  `json:"cost"`
	Notes           string   `json:"notes"`
	Recurrence      string   `json:"recurrence"`
}

func (r sessionRequest) validate() (time.Time, string) {
	if r.MemberID == "" {
		return time.Time{}, "Member is required"
	}
	if r.TrainerID == "" {
		return time.Time{}, "Trainer is required"
	}
	if !model.SessionTypes[r.Type] {
		return time.Time{}, "Unknown session type"
	}
	if r.Title == "" {
		return time.Time{}, "Title is required"
	}
	if r.DurationMinutes <= 0 {
		return time.Time{}, "Duration must be positive"
	}
	start, err := time.Parse(time.RFC3339, r.ScheduledAt)
	if err != nil {
		return time.Time{}, "scheduledAt must be an RFC 3339 timestamp"
	}
	return start, ""
}

// checkConflicts runs the advisory checks. Lookups that fail are reported as
// unavailable, never as a clean pass; the exclusion constraint remains the
// backstop for overlaps.
func (h *Handler) checkConflicts(c *fiber.Ctx, trainerID string, start time.Time, durationMinutes int, excludeID string) schedule.CheckResult {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	windows, werr := h.store.AvailabilityWindows(c.Context(), trainerID, int(start.Weekday()))
	overlapping, oerr := h.store.CountOverlapping(c.Context(), trainerID, start, end, excludeID)

	res := schedule.Detect(start, windows, werr, overlapping, oerr)
	for _, check := range res.Unavailable {
		h.log.Warn("conflict check unavailable",
			zap.String("check", check),
			zap.String("trainerId", trainerID))
	}
	return res
}

func (h *Handler) ListSessions(c *fiber.Ctx) error {
	f := store.SessionFilter{
		MemberID:  c.Query("memberId"),
		TrainerID: c.Query("trainerId"),
		Status:    c.Query("status"),
		Type:      c.Query("type"),
		Room:      c.Query("room"),
	}

	// member/trainer-scoped listings default to an effectively unbounded
	// ten-year span; the general listing uses a month back, two ahead
	now := time.Now().UTC()
	if f.MemberID != "" || f.TrainerID != "" {
		f.From = now.AddDate(-5, 0, 0)
		f.To = now.AddDate(5, 0, 0)
	} else {
		f.From = now.AddDate(0, 0, -30)
		f.To = now.AddDate(0, 2, 0)
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "from must be an RFC 3339 timestamp")
		}
		f.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "to must be an RFC 3339 timestamp")
		}
		f.To = t
	}

	sessions, err := h.store.ListSessions(c.Context(), f)
	if err != nil {
		// callers still get a list; a non-null error means failure
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"sessions": []model.TrainingSession{},
			"error":    err.Error(),
		})
	}
	if sessions == nil {
		sessions = []model.TrainingSession{}
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *Handler) GetSession(c *fiber.Ctx) error {
	ses, err := h.store.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(ses)
}

func (h *Handler) CreateSession(c *fiber.Ctx) error {
	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	start, msg := req.validate()
	if msg != "" {
		return badRequest(c, msg)
	}

	res := h.checkConflicts(c, req.TrainerID, start, req.DurationMinutes, "")
	if !res.Clear() {
		// best effort; the rejection itself must not depend on this write
		if err := h.store.RecordConflicts(c.Context(), req.TrainerID, start, req.DurationMinutes, res.Conflicts); err != nil {
			h.log.Warn("recording conflicts failed", zap.Error(err))
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     "scheduling conflicts detected: " + res.Kinds(),
			"conflicts": res.Conflicts,
		})
	}

	ses := &model.TrainingSession{
		ID:              uuid.New().String(),
		MemberID:        req.MemberID,
		TrainerID:       req.TrainerID,
		Type:            req.Type,
		Title:           req.Title,
		ScheduledAt:     start,
		DurationMinutes: req.DurationMinutes,
		Status:          schedule.StatusScheduled,
		Room:            req.Room,
		Equipment:       req.Equipment,
		Goals:           req.Goals,
		Cost:            req.Cost,
		Notes:           req.Notes,
		Recurrence:      req.Recurrence,
	}
	if ses.Equipment == nil {
		ses.Equipment = []string{}
	}
	if err := h.store.CreateSession(c.Context(), ses); err != nil {
		// the exclusion constraint catches check-then-insert races
		return h.storeErr(c, err)
	}

	resp := fiber.Map{"session": ses}
	if len(res.Unavailable) > 0 {
		resp["warning"] = "some conflict checks could not run: " + strings.Join(res.Unavailable, ", ")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

type checkConflictsRequest struct {
	TrainerID       string `json:"trainerId"`
	ScheduledAt     string `json:"scheduledAt"`
	DurationMinutes int    `json:"durationMinutes"`
	ExcludeID       string `json:"excludeId"`
}

// CheckConflicts previews the advisory checks without writing anything.
func (h *Handler) CheckConflicts(c *fiber.Ctx) error {
	var req checkConflictsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.TrainerID == "" {
		return badRequest(c, "Trainer is required")
	}
	if req.DurationMinutes <= 0 {
		return badRequest(c, "Duration must be positive")
	}
	start, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return badRequest(c, "scheduledAt must be an RFC 3339 timestamp")
	}

	res := h.checkConflicts(c, req.TrainerID, start, req.DurationMinutes, req.ExcludeID)
	return c.JSON(res)
}

// sessionUpdateRequest uses pointers so absent fields stay untouched while
// present-but-empty values clear.
type sessionUpdateRequest struct {
	Type       *string  `json:"type"`
	Title      *string  `json:"title"`
	Room       *string  `json:"room"`
	Equipment  []string `json:"equipment"`
	Goals      *string  `json:"goals"`
	Cost       *float64 `json:"cost"`
	Notes      *string  `json:"notes"`
	Recurrence *string  `json:"recurrence"`
}

func (h *Handler) UpdateSession(c *fiber.Ctx) error {
	var req sessionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	current, err := h.store.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return h.storeErr(c, err)
	}

	if req.Type != nil {
		if !model.SessionTypes[*req.Type] {
			return badRequest(c, "Unknown session type")
		}
		current.Type = *req.Type
	}
	if req.Title != nil {
		if *req.Title == "" {
			return badRequest(c, "Title is required")
		}
		current.Title = *req.Title
	}
	if req.Room != nil {
		current.Room = *req.Room
	}
	if req.Equipment != nil {
		current.Equipment = req.Equipment
	}
	if req.Goals != nil {
		current.Goals = *req.Goals
	}
	if req.Cost != nil {
		if *req.Cost < 0 {
			return badRequest(c, "Cost must not be negative")
		}
		current.Cost = *req.Cost
	}
	if req.Notes != nil {
		current.Notes = *req.Notes
	}
	if req.Recurrence != nil {
		current.Recurrence = *req.Recurrence
	}

	if err := h.store.UpdateSessionDetails(c.Context(), current); err != nil {
		return h.storeErr(c, err)
	}
	updated, err := h.store.GetSession(c.Context(), current.ID)
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	if err := h.store.DeleteSession(c.Context(), c.Params("id")); err != nil {
		return h.storeErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ----- lifecycle transitions -----

func (h *Handler) ConfirmSession(c *fiber.Ctx) error {
	return h.transition(c, store.Transition{To: schedule.StatusConfirmed})
}

func (h *Handler) StartSession(c *fiber.Ctx) error {
	now := time.Now().UTC()
	return h.transition(c, store.Transition{To: schedule.StatusInProgress, ActualStart: &now})
}

type completeRequest struct {
	Summary       string `json:"summary"`
	MemberRating  *int   `json:"memberRating"`
	TrainerRating *int   `json:"trainerRating"`
}

func (h *Handler) CompleteSession(c *fiber.Ctx) error {
	var req completeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}
	if bad(req.MemberRating) || bad(req.TrainerRating) {
		return badRequest(c, "ratings must be between 1 and 5")
	}
	now := time.Now().UTC()
	return h.transition(c, store.Transition{
		To:            schedule.StatusCompleted,
		ActualEnd:     &now,
		Summary:       req.Summary,
		MemberRating:  req.MemberRating,
		TrainerRating: req.TrainerRating,
	})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) CancelSession(c *fiber.Ctx) error {
	var req cancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}
	return h.transition(c, store.Transition{To: schedule.StatusCancelled, CancelReason: req.Reason})
}

func (h *Handler) MarkNoShow(c *fiber.Ctx) error {
	return h.transition(c, store.Transition{To: schedule.StatusNoShow})
}

type rescheduleRequest struct {
	ScheduledAt string `json:"scheduledAt"`
}

// RescheduleSession moves a session to a new instant, re-running the
// advisory conflict checks against the new slot.
func (h *Handler) RescheduleSession(c *fiber.Ctx) error {
	var req rescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	start, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return badRequest(c, "scheduledAt must be an RFC 3339 timestamp")
	}

	current, err := h.store.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return h.storeErr(c, err)
	}

	res := h.checkConflicts(c, current.TrainerID, start, current.DurationMinutes, current.ID)
	if !res.Clear() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     "scheduling conflicts detected: " + res.Kinds(),
			"conflicts": res.Conflicts,
		})
	}

	return h.transition(c, store.Transition{To: schedule.StatusRescheduled, NewScheduled: &start})
}

func (h *Handler) transition(c *fiber.Ctx, tr store.Transition) error {
	ses, err := h.store.TransitionSession(c.Context(), c.Params("id"), tr)
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(ses)
}

func bad(rating *int) bool {
	return rating != nil && (*rating < 1 || *rating > 5)
}

// ----- comments -----

type commentRequest struct {
	Type            string `json:"type"`
	VisibleToMember bool   `json:"visibleToMember"`
	Body            string `json:"body"`
}

func (h *Handler) ListComments(c *fiber.Ctx) error {
	comments, err := h.store.ListComments(c.Context(), c.Params("id"))
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

func (h *Handler) CreateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Type == "" {
		req.Type = "note"
	}
	if !model.CommentTypes[req.Type] {
		return badRequest(c, "Unknown comment type")
	}
	if req.Body == "" {
		return badRequest(c, "Comment body is required")
	}

	authorID, _ := c.Locals(middleware.UserIDKey).(string)
	cm := &model.SessionComment{
		ID:              uuid.New().String(),
		SessionID:       c.Params("id"),
		AuthorID:        authorID,
		Type:            req.Type,
		VisibleToMember: req.VisibleToMember,
		Body:            req.Body,
	}
	if err := h.store.CreateComment(c.Context(), cm); err != nil {
		return h.storeErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cm)
}

// ListConflictLog exposes the recorded rejected-booking attempts for review.
func (h *Handler) ListConflictLog(c *fiber.Ctx) error {
	conflicts, err := h.store.ListConflicts(c.Context(), c.Query("trainerId"))
	if err != nil {
		return h.storeErr(c, err)
	}
	if conflicts == nil {
		conflicts = []model.SessionConflict{}
	}
	return c.JSON(fiber.Map{"conflicts": conflicts})
}

// ----- stats and export -----

func (h *Handler) SessionStats(c *fiber.Ctx) error {
	now := time.Now().UTC()
	from, to := now.AddDate(0, -1, 0), now.AddDate(0, 1, 0)
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "from must be an RFC 3339 timestamp")
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "to must be an RFC 3339 timestamp")
		}
		to = t
	}

	st, err := h.store.SessionStats(c.Context(), from, to)
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(st)
}

func (h *Handler) ExportSessions(c *fiber.Ctx) error {
	now := time.Now().UTC()
	sessions, err := h.store.ListSessions(c.Context(), store.SessionFilter{
		From: now.AddDate(-5, 0, 0),
		To:   now.AddDate(5, 0, 0),
	})
	if err != nil {
		return h.storeErr(c, err)
	}

	t := export.Table{
		Header: []string{"Title", "Type", "Member", "Trainer", "Scheduled", "Duration (min)", "Status", "Room"},
	}
	for _, s := range sessions {
		t.Rows = append(t.Rows, []string{
			s.Title, s.Type,
			s.MemberFirstName + " " + s.MemberLastName,
			s.TrainerFirstName + " " + s.TrainerLastName,
			datefmt.DateTime(s.ScheduledAt),
			strconv.Itoa(s.DurationMinutes),
			s.Status, s.Room,
		})
	}

	data, err := export.CSV(t)
	if err != nil {
		return h.storeErr(c, err)
	}
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", `attachment; filename="sessions.csv"`)
	return c.Send(data)
}
