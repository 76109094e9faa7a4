package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Activity statuses the engine reads and writes. The column itself is an
// open string: callers may store other labels (e.g. "pending") and the
// engine passes them through untouched.
const (
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

// Roles, ordered by privilege. Admin has full access, Superviseur may
// create and update but not delete, User is read-only.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleSuperviseur Role = "superviseur"
	RoleUser        Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSuperviseur, RoleUser:
		return true
	}
	return false
}

func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleSuperviseur
}

func (r Role) CanDelete() bool {
	return r == RoleAdmin
}

func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

type Structure struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at" format:"date-time"`
}

type Direction struct {
	ID          string  `json:"id"`
	StructureID *string `json:"structure_id,omitempty"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at" format:"date-time"`
}

type Service struct {
	ID          string  `json:"id"`
	DirectionID *string `json:"direction_id,omitempty"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at" format:"date-time"`
}

type Division struct {
	ID          string  `json:"id"`
	ServiceID   *string `json:"service_id,omitempty"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at" format:"date-time"`
}

type GeneralObjective struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at" format:"date-time"`
}

type SpecificObjective struct {
	ID                 string `json:"id"`
	GeneralObjectiveID string `json:"general_objective_id"`
	Code               string `json:"code"`
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	CreatedAt          string `json:"created_at" format:"date-time"`
}

type ExpectedResult struct {
	ID                  string `json:"id"`
	SpecificObjectiveID string `json:"specific_objective_id"`
	Code                string `json:"code"`
	Description         string `json:"description"`
	CreatedAt           string `json:"created_at" format:"date-time"`
}

// PCOPEntry is a coded budget-line item with a unit cost.
type PCOPEntry struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Label     string          `json:"label"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	CreatedAt string          `json:"created_at" format:"date-time"`
}

// Activity is a planned unit of work from the annual work plan. It links one
// node from the objectives hierarchy and one from the organizational
// hierarchy (all optional), plus a budget line, cost figures and a date
// range. Dates are stored as YYYY-MM-DD.
type Activity struct {
	ID string `json:"id"`

	GeneralObjectiveID  *string `json:"general_objective_id,omitempty"`
	SpecificObjectiveID *string `json:"specific_objective_id,omitempty"`
	ExpectedResultID    *string `json:"expected_result_id,omitempty"`

	StructureID *string `json:"structure_id,omitempty"`
	DirectionID *string `json:"direction_id,omitempty"`
	ServiceID   *string `json:"service_id,omitempty"`
	DivisionID  *string `json:"division_id,omitempty"`

	PCOPID *string `json:"pcop_id,omitempty"`

	StartDate *string `json:"start_date,omitempty" format:"date"`
	EndDate   *string `json:"end_date,omitempty" format:"date"`

	Description    string `json:"description"`
	SubActivity    string `json:"sub_activity,omitempty"`
	Products       string `json:"products,omitempty"`
	Targets        string `json:"targets,omitempty"`
	FundingSources string `json:"funding_sources,omitempty"`
	Remark         string `json:"remark,omitempty"`

	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`

	Status    string `json:"status"`
	CreatedAt string `json:"created_at" format:"date-time"`
	UpdatedAt string `json:"updated_at" format:"date-time"`
}

// IsLate reports whether the activity's planned end date has passed without
// the activity being complete. Pure function of stored state plus the given
// clock reading; missing or unparseable dates are never late.
func (a Activity) IsLate(now time.Time) bool {
	if a.EndDate == nil || a.Status == StatusComplete {
		return false
	}
	end, err := time.Parse(time.DateOnly, *a.EndDate)
	if err != nil {
		return false
	}
	return dateOf(now).After(end)
}

// DaysRemaining returns the number of whole days until the planned end date,
// clamped at zero, or nil when no end date is set.
func (a Activity) DaysRemaining(now time.Time) *int {
	if a.EndDate == nil {
		return nil
	}
	end, err := time.Parse(time.DateOnly, *a.EndDate)
	if err != nil {
		return nil
	}
	days := int(end.Sub(dateOf(now)).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}

func dateOf(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Suivi is a dated progress observation against an activity. The
// notification fields are derived on every save from the parent activity's
// current end date and status.
type Suivi struct {
	ID                  string `json:"id"`
	ActivityID          string `json:"activity_id"`
	ObservationDate     string `json:"observation_date" format:"date"`
	Remark              string `json:"remark,omitempty"`
	Advancement         *int   `json:"advancement,omitempty" minimum:"0" maximum:"100"`
	LateNotification    bool   `json:"late_notification"`
	NotificationMessage string `json:"notification_message,omitempty"`
	CreatedAt           string `json:"created_at" format:"date-time"`
	UpdatedAt           string `json:"updated_at" format:"date-time"`
}

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role" enum:"admin,superviseur,user"`
	PasswordHash string `json:"-"`
	CreatedAt    string `json:"created_at" format:"date-time"`
}
