package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gym-management-api/internal/handler"
	"gym-management-api/internal/middleware"
	"gym-management-api/internal/store"
)

func setup(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	secret := os.Getenv("JWT_SECRET")
	if dbURL == "" || secret == "" {
		t.Skip("DATABASE_URL or JWT_SECRET not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)

	st := store.New(pool)
	h := handler.New(st, zap.NewNop(), secret)

	app := fiber.New()
	h.Mount(app, middleware.NewRateLimiter(100, 200))
	return app, st
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var parsed map[string]any
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}

func registerAdmin(t *testing.T, app *fiber.App) string {
	t.Helper()
	email := fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
	resp, body := do(t, app, "POST", "/api/auth/register", "", map[string]any{
		"email": email, "password": "testpass123",
		"firstName": "Test", "lastName": "Admin", "role": "admin",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: %d %v", resp.StatusCode, body)
	}
	tok, _ := body["token"].(string)
	if tok == "" {
		t.Fatal("empty token")
	}
	return tok
}

func createMember(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	email := fmt.Sprintf("member-%s@test.com", uuid.New().String()[:8])
	resp, body := do(t, app, "POST", "/api/members", token, map[string]any{
		"firstName": "Mia", "lastName": "Member", "email": email,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create member: %d %v", resp.StatusCode, body)
	}
	return body["id"].(string)
}

func createTrainer(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	email := fmt.Sprintf("trainer-%s@test.com", uuid.New().String()[:8])
	resp, body := do(t, app, "POST", "/api/trainers", token, map[string]any{
		"firstName": "Theo", "lastName": "Trainer", "email": email, "hourlyRate": 45,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create trainer: %d %v", resp.StatusCode, body)
	}
	return body["id"].(string)
}

// openAllDay makes the trainer bookable on the start's weekday.
func openAllDay(t *testing.T, app *fiber.App, token, trainerID string, start time.Time) {
	t.Helper()
	resp, body := do(t, app, "POST", "/api/trainers/"+trainerID+"/availability", token, map[string]any{
		"dayOfWeek": int(start.Weekday()), "startTime": "00:00", "endTime": "23:59",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("availability: %d %v", resp.StatusCode, body)
	}
}

func createSession(t *testing.T, app *fiber.App, token, memberID, trainerID string, start time.Time) map[string]any {
	t.Helper()
	resp, body := do(t, app, "POST", "/api/sessions", token, map[string]any{
		"memberId": memberID, "trainerId": trainerID,
		"type": "personal", "title": "Strength block",
		"scheduledAt": start.Format(time.RFC3339), "durationMinutes": 60,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: %d %v", resp.StatusCode, body)
	}
	ses, _ := body["session"].(map[string]any)
	if ses == nil || ses["id"] == "" {
		t.Fatalf("bad create response: %v", body)
	}
	return ses
}

// futureSlot returns a unique far-future hour so tests never collide.
func futureSlot(hoursFromNow int) time.Time {
	return time.Now().UTC().Add(time.Duration(hoursFromNow) * time.Hour).Truncate(time.Hour)
}

// ----- auth -----

func TestRegisterAndLogin(t *testing.T) {
	app, _ := setup(t)

	email := fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
	resp, body := do(t, app, "POST", "/api/auth/register", "", map[string]any{
		"email": email, "password": "testpass123",
		"firstName": "Log", "lastName": "In",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, app, "POST", "/api/auth/login", "", map[string]any{
		"email": email, "password": "testpass123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %d %v", resp.StatusCode, body)
	}
	if body["token"] == "" {
		t.Error("empty token")
	}
	if body["name"] != "Log In" {
		t.Errorf("name: got %v", body["name"])
	}

	resp, _ = do(t, app, "POST", "/api/auth/login", "", map[string]any{
		"email": email, "password": "wrongpassword",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", resp.StatusCode)
	}
}

func TestRoutesRequireToken(t *testing.T) {
	app, _ := setup(t)

	resp, _ := do(t, app, "GET", "/api/members", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}

// ----- members -----

func TestMemberValidation(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)

	resp, body := do(t, app, "POST", "/api/members", token, map[string]any{
		"lastName": "NoFirst", "email": "x@test.com",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["error"] != "First name is required" {
		t.Errorf("error message: got %v", body["error"])
	}

	resp, body = do(t, app, "POST", "/api/members", token, map[string]any{
		"firstName": "Bad", "lastName": "Email", "email": "not-an-email",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["error"] != "Email is not valid" {
		t.Errorf("error message: got %v", body["error"])
	}
}

func TestMemberDuplicateEmail(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)

	email := fmt.Sprintf("dup-%s@test.com", uuid.New().String()[:8])
	payload := map[string]any{"firstName": "Dup", "lastName": "Licate", "email": email}

	resp, _ := do(t, app, "POST", "/api/members", token, payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create: %d", resp.StatusCode)
	}

	resp, body := do(t, app, "POST", "/api/members", token, payload)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if body["error"] != "This record already exists" {
		t.Errorf("error message: got %v", body["error"])
	}
}

func TestMemberNotFound(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)

	resp, body := do(t, app, "GET", "/api/members/"+uuid.New().String(), token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if body["error"] != "The requested resource does not exist" {
		t.Errorf("error message: got %v", body["error"])
	}
}

func TestMemberFreeze(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)

	resp, body := do(t, app, "POST", "/api/members/"+memberID+"/freeze", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("freeze: %d %v", resp.StatusCode, body)
	}

	_, m := do(t, app, "GET", "/api/members/"+memberID, token, nil)
	if m["status"] != "frozen" {
		t.Errorf("status after freeze: got %v", m["status"])
	}

	resp, _ = do(t, app, "DELETE", "/api/members/"+memberID+"/freeze", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unfreeze: %d", resp.StatusCode)
	}
	_, m = do(t, app, "GET", "/api/members/"+memberID, token, nil)
	if m["status"] != "active" {
		t.Errorf("status after unfreeze: got %v", m["status"])
	}
}

func TestMemberExportCSV(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	createMember(t, app, token)

	req := httptest.NewRequest("GET", "/api/members/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type: got %q", ct)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(raw, []byte("First Name,Last Name,Email")) {
		t.Errorf("csv header: got %q", string(raw[:min(len(raw), 60)]))
	}
}

// ----- sessions -----

func TestCreateSessionAndFetch(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)
	trainerID := createTrainer(t, app, token)

	start := futureSlot(2000)
	openAllDay(t, app, token, trainerID, start)
	ses := createSession(t, app, token, memberID, trainerID, start)

	if ses["status"] != "scheduled" {
		t.Errorf("initial status: got %v", ses["status"])
	}

	// reads are idempotent
	for i := 0; i < 2; i++ {
		resp, got := do(t, app, "GET", "/api/sessions/"+ses["id"].(string), token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get: %d", resp.StatusCode)
		}
		if got["title"] != "Strength block" {
			t.Errorf("title: got %v", got["title"])
		}
		if got["memberFirstName"] != "Mia" || got["trainerFirstName"] != "Theo" {
			t.Errorf("joined names missing: %v / %v", got["memberFirstName"], got["trainerFirstName"])
		}
	}

	// range listing over [D, D] returns exactly the created session
	d := url.QueryEscape(start.Format(time.RFC3339))
	resp, body := do(t, app, "GET", "/api/sessions?trainerId="+trainerID+"&from="+d+"&to="+d, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("range list: %d", resp.StatusCode)
	}
	sessions, _ := body["sessions"].([]any)
	if len(sessions) != 1 {
		t.Fatalf("range [D,D]: expected exactly 1 session, got %d", len(sessions))
	}
	listed, _ := sessions[0].(map[string]any)
	if listed["id"] != ses["id"] {
		t.Errorf("range [D,D]: got id %v, want %v", listed["id"], ses["id"])
	}
}

func TestUpdateSessionClearsFields(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)
	trainerID := createTrainer(t, app, token)

	start := futureSlot(3100)
	openAllDay(t, app, token, trainerID, start)

	resp, body := do(t, app, "POST", "/api/sessions", token, map[string]any{
		"memberId": memberID, "trainerId": trainerID,
		"type": "personal", "title": "Mobility",
		"scheduledAt": start.Format(time.RFC3339), "durationMinutes": 60,
		"room": "Studio 2", "goals": "hips", "notes": "bring bands", "cost": 40,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %v", resp.StatusCode, body)
	}
	ses, _ := body["session"].(map[string]any)
	id := ses["id"].(string)

	// present-but-empty clears; absent fields stay
	resp, got := do(t, app, "PUT", "/api/sessions/"+id, token, map[string]any{
		"room": "", "notes": "", "cost": 0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: %d %v", resp.StatusCode, got)
	}
	if got["room"] != "" || got["notes"] != "" {
		t.Errorf("cleared fields persisted: room=%v notes=%v", got["room"], got["notes"])
	}
	if got["cost"] != float64(0) {
		t.Errorf("cost not reset: %v", got["cost"])
	}
	if got["goals"] != "hips" {
		t.Errorf("absent field changed: goals=%v", got["goals"])
	}
	if got["title"] != "Mobility" {
		t.Errorf("absent field changed: title=%v", got["title"])
	}

	resp, _ = do(t, app, "PUT", "/api/sessions/"+id, token, map[string]any{"title": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty title: expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateSessionOutsideAvailability(t *testing.T) {
	app, st := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)
	trainerID := createTrainer(t, app, token)

	// no availability windows at all
	start := futureSlot(2100)
	resp, body := do(t, app, "POST", "/api/sessions", token, map[string]any{
		"memberId": memberID, "trainerId": trainerID,
		"type": "personal", "title": "Nope",
		"scheduledAt": start.Format(time.RFC3339), "durationMinutes": 60,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %v", resp.StatusCode, body)
	}
	conflicts, _ := body["conflicts"].([]any)
	if len(conflicts) == 0 {
		t.Fatal("expected conflicts in body")
	}
	first, _ := conflicts[0].(map[string]any)
	if first["kind"] != "trainer_unavailable" {
		t.Errorf("kind: got %v", first["kind"])
	}

	// nothing was written
	sessions, err := st.ListSessions(context.Background(), store.SessionFilter{
		TrainerID: trainerID,
		From:      start.Add(-time.Hour),
		To:        start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("rejected create must not persist a session, found %d", len(sessions))
	}

	// but the rejection was logged for review
	resp, body = do(t, app, "GET", "/api/sessions/conflicts?trainerId="+trainerID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("conflict log: %d", resp.StatusCode)
	}
	logged, _ := body["conflicts"].([]any)
	if len(logged) != 1 {
		t.Fatalf("expected 1 logged conflict, got %d", len(logged))
	}
	entry, _ := logged[0].(map[string]any)
	if entry["kind"] != "trainer_unavailable" {
		t.Errorf("logged kind: got %v", entry["kind"])
	}
	if entry["resolved"] != false {
		t.Errorf("new entries start unresolved, got %v", entry["resolved"])
	}
}

func TestCreateSessionOverlap(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)
	trainerID := createTrainer(t, app, token)

	start := futureSlot(2200)
	openAllDay(t, app, token, trainerID, start)
	createSession(t, app, token, memberID, trainerID, start)

	// same slot with the same trainer conflicts
	resp, body := do(t, app, "POST", "/api/sessions", token, map[string]any{
		"memberId": memberID, "trainerId": trainerID,
		"type": "personal", "title": "Overlap",
		"scheduledAt": start.Add(30 * time.Minute).Format(time.RFC3339), "durationMinutes": 60,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %v", resp.StatusCode, body)
	}
	conflicts, _ := body["conflicts"].([]any)
	if len(conflicts) == 0 {
		t.Fatal("expected conflicts in body")
	}
	first, _ := conflicts[0].(map[string]any)
	if first["kind"] != "trainer_booked" {
		t.Errorf("kind: got %v", first["kind"])
	}
}

func TestCancelledSessionFreesSlot(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)
	trainerID := createTrainer(t, app, token)

	start := futureSlot(2300)
	openAllDay(t, app, token, trainerID, start)
	ses := createSession(t, app, token, memberID, trainerID, start)

	resp, _ := do(t, app, "POST", "/api/sessions/"+ses["id"].(string)+"/cancel", token,
		map[string]any{"reason": "member sick"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: %d", resp.StatusCode)
	}

	// the slot is bookable again
	createSession(t, app, token, memberID, trainerID, start)
}

func TestCheckConflictsEndpoint(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	trainerID := createTrainer(t, app, token)

	start := futureSlot(2400)
	resp, body := do(t, app, "POST", "/api/sessions/check-conflicts", token, map[string]any{
		"trainerId": trainerID, "scheduledAt": start.Format(time.RFC3339), "durationMinutes": 60,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("check: %d %v", resp.StatusCode, body)
	}
	conflicts, _ := body["conflicts"].([]any)
	if len(conflicts) != 1 {
		t.Fatalf("expected one conflict, got %v", body)
	}

	openAllDay(t, app, token, trainerID, start)
	_, body = do(t, app, "POST", "/api/sessions/check-conflicts", token, map[string]any{
		"trainerId": trainerID, "scheduledAt": start.Format(time.RFC3339), "durationMinutes": 60,
	})
	conflicts, _ = body["conflicts"].([]any)
	if len(conflicts) != 0 {
		t.Errorf("expected no conflicts after opening the day, got %v", conflicts)
	}
}

// ----- lifecycle -----

func TestSessionLifecycle(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)
	trainerID := createTrainer(t, app, token)

	start := futureSlot(2500)
	openAllDay(t, app, token, trainerID, start)
	ses := createSession(t, app, token, memberID, trainerID, start)
	id := ses["id"].(string)

	resp, body := do(t, app, "POST", "/api/sessions/"+id+"/confirm", token, nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "confirmed" {
		t.Fatalf("confirm: %d %v", resp.StatusCode, body["status"])
	}

	resp, body = do(t, app, "POST", "/api/sessions/"+id+"/start", token, nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "in_progress" {
		t.Fatalf("start: %d %v", resp.StatusCode, body["status"])
	}
	if body["actualStart"] == nil {
		t.Error("actualStart not stamped")
	}

	resp, body = do(t, app, "POST", "/api/sessions/"+id+"/complete", token, map[string]any{
		"summary": "good session", "memberRating": 5,
	})
	if resp.StatusCode != http.StatusOK || body["status"] != "completed" {
		t.Fatalf("complete: %d %v", resp.StatusCode, body["status"])
	}
	if body["actualEnd"] == nil {
		t.Error("actualEnd not stamped")
	}
	if body["memberRating"] != float64(5) {
		t.Errorf("memberRating: got %v", body["memberRating"])
	}

	// a completed session is terminal
	resp, body = do(t, app, "POST", "/api/sessions/"+id+"/cancel", token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("cancel after complete: expected 409, got %d %v", resp.StatusCode, body)
	}

	// and the completion record is untouched
	_, got := do(t, app, "GET", "/api/sessions/"+id, token, nil)
	if got["status"] != "completed" {
		t.Errorf("status after rejected cancel: got %v", got["status"])
	}
	if got["actualEnd"] == nil {
		t.Error("actualEnd lost after rejected cancel")
	}
}

func TestConfirmOnlyFromScheduled(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)
	trainerID := createTrainer(t, app, token)

	start := futureSlot(2600)
	openAllDay(t, app, token, trainerID, start)
	ses := createSession(t, app, token, memberID, trainerID, start)
	id := ses["id"].(string)

	do(t, app, "POST", "/api/sessions/"+id+"/confirm", token, nil)

	resp, _ := do(t, app, "POST", "/api/sessions/"+id+"/confirm", token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("double confirm: expected 409, got %d", resp.StatusCode)
	}
}

func TestReschedule(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)
	trainerID := createTrainer(t, app, token)

	start := futureSlot(2700)
	openAllDay(t, app, token, trainerID, start)
	ses := createSession(t, app, token, memberID, trainerID, start)
	id := ses["id"].(string)

	// same weekday a week later stays inside the availability window
	newStart := start.Add(7 * 24 * time.Hour)
	resp, body := do(t, app, "POST", "/api/sessions/"+id+"/reschedule", token, map[string]any{
		"scheduledAt": newStart.Format(time.RFC3339),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reschedule: %d %v", resp.StatusCode, body)
	}
	if body["status"] != "rescheduled" {
		t.Errorf("status: got %v", body["status"])
	}
	got, _ := time.Parse(time.RFC3339, body["scheduledAt"].(string))
	if !got.Equal(newStart) {
		t.Errorf("scheduledAt: got %v, want %v", got, newStart)
	}

	// a rescheduled session behaves like a fresh one
	resp, _ = do(t, app, "POST", "/api/sessions/"+id+"/confirm", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("confirm after reschedule: %d", resp.StatusCode)
	}
}

func TestRescheduleTwice(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)
	trainerID := createTrainer(t, app, token)

	start := futureSlot(3200)
	openAllDay(t, app, token, trainerID, start)
	ses := createSession(t, app, token, memberID, trainerID, start)
	id := ses["id"].(string)

	// same weekday keeps the slot inside the availability window
	for week := 1; week <= 2; week++ {
		newStart := start.Add(time.Duration(week) * 7 * 24 * time.Hour)
		resp, body := do(t, app, "POST", "/api/sessions/"+id+"/reschedule", token, map[string]any{
			"scheduledAt": newStart.Format(time.RFC3339),
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("reschedule %d: %d %v", week, resp.StatusCode, body)
		}
		if body["status"] != "rescheduled" {
			t.Errorf("reschedule %d: status %v", week, body["status"])
		}
	}
}

func TestRescheduleIntoConflict(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)
	trainerID := createTrainer(t, app, token)

	start := futureSlot(2800)
	openAllDay(t, app, token, trainerID, start)
	createSession(t, app, token, memberID, trainerID, start)
	second := createSession(t, app, token, memberID, trainerID, start.Add(2*time.Hour))

	resp, _ := do(t, app, "POST", "/api/sessions/"+second["id"].(string)+"/reschedule", token, map[string]any{
		"scheduledAt": start.Add(30 * time.Minute).Format(time.RFC3339),
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

// ----- concurrent booking -----

func TestConcurrentBooking(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)
	trainerID := createTrainer(t, app, token)

	start := futureSlot(2900)
	openAllDay(t, app, token, trainerID, start)

	const n = 10
	var wg sync.WaitGroup
	results := make(chan int, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, _ := json.Marshal(map[string]any{
				"memberId": memberID, "trainerId": trainerID,
				"type": "personal", "title": fmt.Sprintf("concurrent-%d", i),
				"scheduledAt": start.Format(time.RFC3339), "durationMinutes": 60,
			})
			req := httptest.NewRequest("POST", "/api/sessions", bytes.NewReader(b))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := app.Test(req, -1)
			if err != nil {
				results <- 0
				return
			}
			resp.Body.Close()
			results <- resp.StatusCode
		}(i)
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for code := range results {
		switch code {
		case http.StatusCreated:
			successes++
		case http.StatusConflict:
			conflicts++
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if conflicts != n-1 {
		t.Errorf("expected %d conflicts, got %d", n-1, conflicts)
	}
	t.Logf("concurrent: %d success, %d conflicts (out of %d)", successes, conflicts, n)
}

// ----- comments -----

func TestSessionComments(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)
	memberID := createMember(t, app, token)
	trainerID := createTrainer(t, app, token)

	start := futureSlot(3000)
	openAllDay(t, app, token, trainerID, start)
	ses := createSession(t, app, token, memberID, trainerID, start)
	id := ses["id"].(string)

	resp, body := do(t, app, "POST", "/api/sessions/"+id+"/comments", token, map[string]any{
		"type": "progress", "body": "bench up 5kg", "visibleToMember": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("comment: %d %v", resp.StatusCode, body)
	}
	if body["authorId"] == "" {
		t.Error("authorId not set from token")
	}

	resp, _ = do(t, app, "POST", "/api/sessions/"+id+"/comments", token, map[string]any{
		"type": "party", "body": "nope",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad type: expected 400, got %d", resp.StatusCode)
	}

	resp, body = do(t, app, "GET", "/api/sessions/"+id+"/comments", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list comments: %d", resp.StatusCode)
	}
	comments, _ := body["comments"].([]any)
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}
	first, _ := comments[0].(map[string]any)
	if first["authorName"] == "" {
		t.Error("authorName missing from listing")
	}
}

// ----- plans and subscriptions -----

func TestPlanSeedAndSubscribe(t *testing.T) {
	app, _ := setup(t)
	token := registerAdmin(t, app)

	resp, body := do(t, app, "POST", "/api/setup/membership-plans", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seed: %d %v", resp.StatusCode, body)
	}

	// seeding again inserts nothing new
	_, body = do(t, app, "POST", "/api/setup/membership-plans", token, nil)
	if body["inserted"] != float64(0) {
		t.Errorf("second seed should insert 0, got %v", body["inserted"])
	}

	_, body = do(t, app, "GET", "/api/plans", token, nil)
	plans, _ := body["plans"].([]any)
	if len(plans) < 4 {
		t.Fatalf("expected seeded plans, got %d", len(plans))
	}
	plan, _ := plans[0].(map[string]any)

	memberID := createMember(t, app, token)
	resp, body = do(t, app, "POST", "/api/subscriptions", token, map[string]any{
		"memberId": memberID, "planId": plan["id"], "startDate": "2026-09-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("subscribe: %d %v", resp.StatusCode, body)
	}
	if body["endDate"] == nil {
		t.Error("endDate not derived from plan duration")
	}
	if body["status"] != "active" {
		t.Errorf("status: got %v", body["status"])
	}
}

func TestSetupRequiresAdmin(t *testing.T) {
	app, _ := setup(t)

	email := fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
	_, body := do(t, app, "POST", "/api/auth/register", "", map[string]any{
		"email": email, "password": "testpass123",
		"firstName": "Plain", "lastName": "Trainer",
	})
	token, _ := body["token"].(string)

	resp, _ := do(t, app, "POST", "/api/setup/membership-plans", token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", resp.StatusCode)
	}
}
