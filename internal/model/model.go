package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Member struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Status           string    `json:"status"`
	JoinDate         time.Time `json:"joinDate"`
	EmergencyContact string    `json:"emergencyContact"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type Trainer struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Specialization string    `json:"specialization"`
	HourlyRate     float64   `json:"hourlyRate"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TrainerAvailability is one recurring weekly window during which a trainer
// may be booked. Start/End are clock times in "15:04:05" form.
type TrainerAvailability struct {
	ID            string     `json:"id"`
	TrainerID     string     `json:"trainerId"`
	DayOfWeek     int        `json:"dayOfWeek"`
	StartTime     string     `json:"startTime"`
	EndTime       string     `json:"endTime"`
	EffectiveFrom *time.Time `json:"effectiveFrom,omitempty"`
	EffectiveTo   *time.Time `json:"effectiveTo,omitempty"`
	IsAvailable   bool       `json:"isAvailable"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type MembershipPlan struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	DurationDays int       `json:"durationDays"`
	Features     []string  `json:"features"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Subscription struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"memberId"`
	PlanID    string    `json:"planId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// filled by JOINs on list/get
	MemberName string `json:"memberName,omitempty"`
	PlanName   string `json:"planName,omitempty"`
}

type TrainingSession struct {
	ID              string     `json:"id"`
	MemberID        string     `json:"memberId"`
	TrainerID       string     `json:"trainerId"`
	Type            string     `json:"type"`
	Title           string     `json:"title"`
	ScheduledAt     time.Time  `json:"scheduledAt"`
	DurationMinutes int        `json:"durationMinutes"`
	Status          string     `json:"status"`
	Room            string     `json:"room"`
	Equipment       []string   `json:"equipment"`
	Goals           string     `json:"goals"`
	Cost            float64    `json:"cost"`
	MemberRating    *int       `json:"memberRating,omitempty"`
	TrainerRating   *int       `json:"trainerRating,omitempty"`
	ActualStart     *time.Time `json:"actualStart,omitempty"`
	ActualEnd       *time.Time `json:"actualEnd,omitempty"`
	Notes           string     `json:"notes"`
	Recurrence      string     `json:"recurrence"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	// denormalized identity fields for display, filled by JOINs
	MemberFirstName  string `json:"memberFirstName,omitempty"`
	MemberLastName   string `json:"memberLastName,omitempty"`
	MemberEmail      string `json:"memberEmail,omitempty"`
	TrainerFirstName string `json:"trainerFirstName,omitempty"`
	TrainerLastName  string `json:"trainerLastName,omitempty"`
	TrainerEmail     string `json:"trainerEmail,omitempty"`
}

type SessionComment struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"sessionId"`
	AuthorID        string    `json:"authorId"`
	Type            string    `json:"type"`
	VisibleToMember bool      `json:"visibleToMember"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"createdAt"`

	AuthorName string `json:"authorName,omitempty"`
	AuthorRole string `json:"authorRole,omitempty"`
}

// SessionConflict records a rejected booking attempt for later review.
type SessionConflict struct {
	ID              string     `json:"id"`
	TrainerID       string     `json:"trainerId"`
	ScheduledAt     time.Time  `json:"scheduledAt"`
	DurationMinutes int        `json:"durationMinutes"`
	Kind            string     `json:"kind"`
	Details         string     `json:"details"`
	Resolved        bool       `json:"resolved"`
	ResolvedBy      *string    `json:"resolvedBy,omitempty"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

var SessionTypes = map[string]bool{
	"personal":       true,
	"group":          true,
	"class":          true,
	"assessment":     true,
	"consultation":   true,
	"rehabilitation": true,
}

var CommentTypes = map[string]bool{
	"note":      true,
	"progress":  true,
	"issue":     true,
	"goal":      true,
	"equipment": true,
	"feedback":  true,
	"reminder":  true,
}
