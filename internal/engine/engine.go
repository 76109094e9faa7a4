package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ptaplan/internal/config"
	"ptaplan/internal/domain"
	"ptaplan/internal/repo"
)

type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Config *config.Config
	Now    func() time.Time
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// ValidationError rejects a request before anything is written. Field names
// the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Reason)
}

func validDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return ValidationError{Field: field, Reason: "must be a YYYY-MM-DD date"}
	}
	return nil
}

// ActivityCreateOptions are parameters for creating an activity. Reference
// ids may be empty; they are stored as NULL.
type ActivityCreateOptions struct {
	ID                  string
	GeneralObjectiveID  string
	SpecificObjectiveID string
	ExpectedResultID    string
	StructureID         string
	DirectionID         string
	ServiceID           string
	DivisionID          string
	PCOPID              string
	StartDate           string
	EndDate             string
	Description         string
	SubActivity         string
	Products            string
	Targets             string
	FundingSources      string
	Remark              string
	UnitCost            *decimal.Decimal
	Quantity            *decimal.Decimal
	Amount              *decimal.Decimal
	Status              string
}

func (e Engine) CreateActivity(ctx context.Context, opts ActivityCreateOptions) (domain.Activity, error) {
	if opts.Description == "" {
		return domain.Activity{}, ValidationError{Field: "description", Reason: "is required"}
	}
	if err := validDate("start_date", opts.StartDate); err != nil {
		return domain.Activity{}, err
	}
	if err := validDate("end_date", opts.EndDate); err != nil {
		return domain.Activity{}, err
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Status == "" {
		opts.Status = domain.StatusInProgress
	}
	now := e.now().UTC().Format(time.RFC3339)
	a := domain.Activity{
		ID:                  opts.ID,
		GeneralObjectiveID:  optRef(opts.GeneralObjectiveID),
		SpecificObjectiveID: optRef(opts.SpecificObjectiveID),
		ExpectedResultID:    optRef(opts.ExpectedResultID),
		StructureID:         optRef(opts.StructureID),
		DirectionID:         optRef(opts.DirectionID),
		ServiceID:           optRef(opts.ServiceID),
		DivisionID:          optRef(opts.DivisionID),
		PCOPID:              optRef(opts.PCOPID),
		StartDate:           optRef(opts.StartDate),
		EndDate:             optRef(opts.EndDate),
		Description:         opts.Description,
		SubActivity:         opts.SubActivity,
		Products:            opts.Products,
		Targets:             opts.Targets,
		FundingSources:      opts.FundingSources,
		Remark:              opts.Remark,
		UnitCost:            opts.UnitCost,
		Quantity:            opts.Quantity,
		Amount:              deriveAmount(opts.UnitCost, opts.Quantity, opts.Amount),
		Status:              opts.Status,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Activity{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertActivity(ctx, tx, a); err != nil {
		return domain.Activity{}, fmt.Errorf("insert activity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Activity{}, err
	}
	return a, nil
}

// UpdateActivity replaces the stored activity with the given value. The
// same amount derivation as creation applies when amount is absent.
func (e Engine) UpdateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	if a.Description == "" {
		return domain.Activity{}, ValidationError{Field: "description", Reason: "is required"}
	}
	if a.StartDate != nil {
		if err := validDate("start_date", *a.StartDate); err != nil {
			return domain.Activity{}, err
		}
	}
	if a.EndDate != nil {
		if err := validDate("end_date", *a.EndDate); err != nil {
			return domain.Activity{}, err
		}
	}
	if a.Status == "" {
		a.Status = domain.StatusInProgress
	}
	a.Amount = deriveAmount(a.UnitCost, a.Quantity, a.Amount)
	a.UpdatedAt = e.now().UTC().Format(time.RFC3339)

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Activity{}, err
	}
	defer tx.Rollback()
	current, err := e.Repo.GetActivityTx(ctx, tx, a.ID)
	if err != nil {
		return domain.Activity{}, err
	}
	a.CreatedAt = current.CreatedAt
	if err := e.Repo.UpdateActivity(ctx, tx, a); err != nil {
		return domain.Activity{}, fmt.Errorf("update activity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Activity{}, err
	}
	return a, nil
}

func (e Engine) DeleteActivity(ctx context.Context, id string) error {
	// suivis go with it, the schema cascades
	return e.Repo.DeleteActivity(ctx, id)
}

// SuiviOptions are parameters for recording or editing a progress
// observation against an activity.
type SuiviOptions struct {
	ID              string
	ActivityID      string
	ObservationDate string
	Remark          string
	Advancement     *int
}

// RecordProgress appends a progress observation. One transaction covers the
// whole sequence: resolve the activity, derive the notification pair from
// its current end date and status, persist the suivi, and promote the
// activity to complete when advancement reaches 100.
func (e Engine) RecordProgress(ctx context.Context, opts SuiviOptions) (domain.Suivi, error) {
	if err := validateAdvancement(opts.Advancement); err != nil {
		return domain.Suivi{}, err
	}
	if opts.ObservationDate == "" {
		return domain.Suivi{}, ValidationError{Field: "observation_date", Reason: "is required"}
	}
	if err := validDate("observation_date", opts.ObservationDate); err != nil {
		return domain.Suivi{}, err
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Suivi{}, err
	}
	defer tx.Rollback()

	activity, err := e.Repo.GetActivityTx(ctx, tx, opts.ActivityID)
	if err != nil {
		return domain.Suivi{}, err
	}

	now := e.now()
	stamp := now.UTC().Format(time.RFC3339)
	s := domain.Suivi{
		ID:              opts.ID,
		ActivityID:      activity.ID,
		ObservationDate: opts.ObservationDate,
		Remark:          opts.Remark,
		Advancement:     opts.Advancement,
		CreatedAt:       stamp,
		UpdatedAt:       stamp,
	}
	s.LateNotification, s.NotificationMessage = lateNotification(activity, now)

	if err := e.Repo.InsertSuiviTx(ctx, tx, s); err != nil {
		return domain.Suivi{}, fmt.Errorf("insert suivi: %w", err)
	}
	if err := e.maybeCompleteTx(ctx, tx, activity, opts.Advancement, stamp); err != nil {
		return domain.Suivi{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Suivi{}, err
	}
	return s, nil
}

// UpdateProgress edits an existing suivi. The notification pair is
// recomputed from the activity's current stored state, never carried over
// from the previous save.
func (e Engine) UpdateProgress(ctx context.Context, opts SuiviOptions) (domain.Suivi, error) {
	if err := validateAdvancement(opts.Advancement); err != nil {
		return domain.Suivi{}, err
	}
	if opts.ObservationDate != "" {
		if err := validDate("observation_date", opts.ObservationDate); err != nil {
			return domain.Suivi{}, err
		}
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Suivi{}, err
	}
	defer tx.Rollback()

	s, err := e.Repo.GetSuiviTx(ctx, tx, opts.ID)
	if err != nil {
		return domain.Suivi{}, err
	}
	activity, err := e.Repo.GetActivityTx(ctx, tx, s.ActivityID)
	if err != nil {
		return domain.Suivi{}, err
	}

	if opts.ObservationDate != "" {
		s.ObservationDate = opts.ObservationDate
	}
	s.Remark = opts.Remark
	s.Advancement = opts.Advancement

	now := e.now()
	s.UpdatedAt = now.UTC().Format(time.RFC3339)
	s.LateNotification, s.NotificationMessage = lateNotification(activity, now)

	if err := e.Repo.UpdateSuiviTx(ctx, tx, s); err != nil {
		return domain.Suivi{}, fmt.Errorf("update suivi: %w", err)
	}
	if err := e.maybeCompleteTx(ctx, tx, activity, opts.Advancement, s.UpdatedAt); err != nil {
		return domain.Suivi{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Suivi{}, err
	}
	return s, nil
}

func validateAdvancement(v *int) error {
	if v == nil {
		return nil
	}
	if *v < 0 || *v > 100 {
		return ValidationError{Field: "advancement", Reason: "must be between 0 and 100"}
	}
	return nil
}

// lateNotification derives the flag and message from the activity as stored
// right now. A non-late activity always yields a cleared pair.
func lateNotification(a domain.Activity, now time.Time) (bool, string) {
	if !a.IsLate(now) {
		return false, ""
	}
	return true, fmt.Sprintf("ATTENTION : L'activité '%s...' est en retard. Date de fin prévue : %s",
		truncate(a.Description, 50), *a.EndDate)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (e Engine) maybeCompleteTx(ctx context.Context, tx *sql.Tx, a domain.Activity, advancement *int, stamp string) error {
	if advancement == nil || *advancement != 100 || a.Status == domain.StatusComplete {
		return nil
	}
	if err := e.Repo.UpdateActivityStatusTx(ctx, tx, a.ID, domain.StatusComplete, stamp); err != nil {
		return fmt.Errorf("complete activity: %w", err)
	}
	return nil
}

func deriveAmount(unitCost, quantity, amount *decimal.Decimal) *decimal.Decimal {
	if amount != nil || unitCost == nil || quantity == nil {
		return amount
	}
	v := unitCost.Mul(*quantity)
	return &v
}

func optRef(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
