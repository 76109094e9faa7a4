package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ptaplan/internal/config"
	"ptaplan/internal/db"
	"ptaplan/internal/domain"
	"ptaplan/internal/engine"
	"ptaplan/internal/migrate"
	"ptaplan/internal/repo"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn, config.Default())
	eng.Now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }
	return testEnv{Engine: eng, Ctx: context.Background()}
}

func mustActivity(t *testing.T, env testEnv, opts engine.ActivityCreateOptions) domain.Activity {
	t.Helper()
	if opts.Description == "" {
		opts.Description = "Former les agents"
	}
	a, err := env.Engine.CreateActivity(env.Ctx, opts)
	if err != nil {
		t.Fatalf("create activity: %v", err)
	}
	return a
}

func intPtr(v int) *int { return &v }

func TestRecordProgressRejectsOutOfRangeAdvancement(t *testing.T) {
	env := newTestEnv(t)
	a := mustActivity(t, env, engine.ActivityCreateOptions{})

	for _, adv := range []int{-1, 101, 150} {
		_, err := env.Engine.RecordProgress(env.Ctx, engine.SuiviOptions{
			ActivityID:      a.ID,
			ObservationDate: "2024-06-15",
			Advancement:     intPtr(adv),
		})
		var verr engine.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("advancement %d: want ValidationError, got %v", adv, err)
		}
		if verr.Field != "advancement" {
			t.Fatalf("advancement %d: error names field %q", adv, verr.Field)
		}
	}

	// nothing must have been written
	suivis, err := env.Engine.Repo.ListSuivis(env.Ctx, repo.SuiviFilter{ActivityID: a.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(suivis) != 0 {
		t.Fatalf("rejected records persisted: %d", len(suivis))
	}
}

func TestRecordProgressRequiresObservationDate(t *testing.T) {
	env := newTestEnv(t)
	a := mustActivity(t, env, engine.ActivityCreateOptions{})

	_, err := env.Engine.RecordProgress(env.Ctx, engine.SuiviOptions{ActivityID: a.ID})
	var verr engine.ValidationError
	if !errors.As(err, &verr) || verr.Field != "observation_date" {
		t.Fatalf("want observation_date validation error, got %v", err)
	}

	_, err = env.Engine.RecordProgress(env.Ctx, engine.SuiviOptions{ActivityID: a.ID, ObservationDate: "15/06/2024"})
	if !errors.As(err, &verr) || verr.Field != "observation_date" {
		t.Fatalf("want date format error, got %v", err)
	}
}

func TestRecordProgressUnknownActivity(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.RecordProgress(env.Ctx, engine.SuiviOptions{
		ActivityID:      "no-such-activity",
		ObservationDate: "2024-06-15",
	})
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFullAdvancementCompletesActivity(t *testing.T) {
	env := newTestEnv(t)
	a := mustActivity(t, env, engine.ActivityCreateOptions{})
	if a.Status != domain.StatusInProgress {
		t.Fatalf("new activity status = %q", a.Status)
	}

	s, err := env.Engine.RecordProgress(env.Ctx, engine.SuiviOptions{
		ActivityID:      a.ID,
		ObservationDate: "2024-06-15",
		Advancement:     intPtr(100),
	})
	if err != nil {
		t.Fatalf("record progress: %v", err)
	}
	if s.Advancement == nil || *s.Advancement != 100 {
		t.Fatalf("stored advancement = %v", s.Advancement)
	}

	got, err := env.Engine.Repo.GetActivity(env.Ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusComplete {
		t.Fatalf("activity not promoted, status = %q", got.Status)
	}
}

func TestPartialAdvancementLeavesStatus(t *testing.T) {
	env := newTestEnv(t)
	a := mustActivity(t, env, engine.ActivityCreateOptions{})

	_, err := env.Engine.RecordProgress(env.Ctx, engine.SuiviOptions{
		ActivityID:      a.ID,
		ObservationDate: "2024-06-15",
		Advancement:     intPtr(60),
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := env.Engine.Repo.GetActivity(env.Ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusInProgress {
		t.Fatalf("status = %q, want %q", got.Status, domain.StatusInProgress)
	}
}

func TestLateNotificationMessage(t *testing.T) {
	env := newTestEnv(t)
	a := mustActivity(t, env, engine.ActivityCreateOptions{
		Description: "Former les agents",
		EndDate:     "2024-06-01",
	})

	s, err := env.Engine.RecordProgress(env.Ctx, engine.SuiviOptions{
		ActivityID:      a.ID,
		ObservationDate: "2024-06-15",
		Advancement:     intPtr(40),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !s.LateNotification {
		t.Fatal("expected late notification")
	}
	want := "ATTENTION : L'activité 'Former les agents...' est en retard. Date de fin prévue : 2024-06-01"
	if s.NotificationMessage != want {
		t.Fatalf("message = %q\nwant      %q", s.NotificationMessage, want)
	}
}

func TestLateNotificationTruncatesDescription(t *testing.T) {
	env := newTestEnv(t)
	long := strings.Repeat("é", 60)
	a := mustActivity(t, env, engine.ActivityCreateOptions{
		Description: long,
		EndDate:     "2024-06-01",
	})

	s, err := env.Engine.RecordProgress(env.Ctx, engine.SuiviOptions{
		ActivityID:      a.ID,
		ObservationDate: "2024-06-15",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s.NotificationMessage, strings.Repeat("é", 50)+"...") {
		t.Fatalf("description not truncated to 50 runes: %q", s.NotificationMessage)
	}
	if strings.Contains(s.NotificationMessage, strings.Repeat("é", 51)) {
		t.Fatalf("message carries more than 50 runes of description")
	}
}

func TestNoNotificationWhenOnTime(t *testing.T) {
	env := newTestEnv(t)

	cases := map[string]engine.ActivityCreateOptions{
		"future end date": {Description: "a", EndDate: "2024-12-31"},
		"no end date":     {Description: "b"},
		"complete":        {Description: "c", EndDate: "2024-06-01", Status: domain.StatusComplete},
	}
	for name, opts := range cases {
		a := mustActivity(t, env, opts)
		s, err := env.Engine.RecordProgress(env.Ctx, engine.SuiviOptions{
			ActivityID:      a.ID,
			ObservationDate: "2024-06-15",
		})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if s.LateNotification || s.NotificationMessage != "" {
			t.Fatalf("%s: unexpected notification %q", name, s.NotificationMessage)
		}
	}
}

func TestUpdateProgressRecomputesNotification(t *testing.T) {
	env := newTestEnv(t)
	a := mustActivity(t, env, engine.ActivityCreateOptions{
		Description: "Réhabiliter le bâtiment",
		EndDate:     "2024-06-01",
	})

	s, err := env.Engine.RecordProgress(env.Ctx, engine.SuiviOptions{
		ActivityID:      a.ID,
		ObservationDate: "2024-06-10",
		Remark:          "retard fournisseur",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !s.LateNotification {
		t.Fatal("expected late notification on first save")
	}

	// push the deadline out, then re-save the record
	a.EndDate = strPtr("2024-12-31")
	if _, err := env.Engine.UpdateActivity(env.Ctx, a); err != nil {
		t.Fatal(err)
	}
	s, err = env.Engine.UpdateProgress(env.Ctx, engine.SuiviOptions{
		ID:     s.ID,
		Remark: "retard résorbé",
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.LateNotification || s.NotificationMessage != "" {
		t.Fatalf("notification not cleared: %q", s.NotificationMessage)
	}
	if s.Remark != "retard résorbé" {
		t.Fatalf("remark = %q", s.Remark)
	}
}

func TestAmountDerivedFromUnitCostAndQuantity(t *testing.T) {
	env := newTestEnv(t)
	cost := decimal.RequireFromString("10.50")
	qty := decimal.RequireFromString("4")
	a := mustActivity(t, env, engine.ActivityCreateOptions{
		UnitCost: &cost,
		Quantity: &qty,
	})
	if a.Amount == nil || !a.Amount.Equal(decimal.RequireFromString("42")) {
		t.Fatalf("amount = %v, want 42", a.Amount)
	}

	// an explicit amount wins over the product
	explicit := decimal.RequireFromString("99.99")
	b := mustActivity(t, env, engine.ActivityCreateOptions{
		UnitCost: &cost,
		Quantity: &qty,
		Amount:   &explicit,
	})
	if b.Amount == nil || !b.Amount.Equal(explicit) {
		t.Fatalf("amount = %v, want 99.99", b.Amount)
	}

	// missing either factor leaves the amount unset
	c := mustActivity(t, env, engine.ActivityCreateOptions{UnitCost: &cost})
	if c.Amount != nil {
		t.Fatalf("amount = %v, want nil", c.Amount)
	}
}

func TestActivityDateValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.CreateActivity(env.Ctx, engine.ActivityCreateOptions{
		Description: "x",
		StartDate:   "01/06/2024",
	})
	var verr engine.ValidationError
	if !errors.As(err, &verr) || verr.Field != "start_date" {
		t.Fatalf("want start_date validation error, got %v", err)
	}
}

func TestDeleteDirectionNullsActivityReference(t *testing.T) {
	env := newTestEnv(t)
	stamp := env.Engine.Now().UTC().Format(time.RFC3339)
	d := domain.Direction{ID: "dir-1", Code: "D1", Name: "Direction Générale", CreatedAt: stamp}
	if err := env.Engine.Repo.InsertDirection(env.Ctx, d); err != nil {
		t.Fatal(err)
	}
	a := mustActivity(t, env, engine.ActivityCreateOptions{DirectionID: d.ID})
	if a.DirectionID == nil || *a.DirectionID != d.ID {
		t.Fatalf("direction ref = %v", a.DirectionID)
	}

	if err := env.Engine.Repo.DeleteDirection(env.Ctx, d.ID); err != nil {
		t.Fatal(err)
	}
	got, err := env.Engine.Repo.GetActivity(env.Ctx, a.ID)
	if err != nil {
		t.Fatalf("activity must survive the reference delete: %v", err)
	}
	if got.DirectionID != nil {
		t.Fatalf("direction ref not nulled: %v", *got.DirectionID)
	}
}

func TestDeleteActivityCascadesSuivis(t *testing.T) {
	env := newTestEnv(t)
	a := mustActivity(t, env, engine.ActivityCreateOptions{})
	s, err := env.Engine.RecordProgress(env.Ctx, engine.SuiviOptions{
		ActivityID:      a.ID,
		ObservationDate: "2024-06-15",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.Engine.DeleteActivity(env.Ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.Repo.GetSuivi(env.Ctx, s.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("suivi survived activity delete: %v", err)
	}
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		end  *string
		want *int
	}{
		{"no end date", nil, nil},
		{"ends today", strPtr("2024-06-15"), intPtr(0)},
		{"ends tomorrow", strPtr("2024-06-16"), intPtr(1)},
		{"ends next week", strPtr("2024-06-22"), intPtr(7)},
		{"already past", strPtr("2024-06-01"), intPtr(0)},
	}
	for _, tc := range cases {
		a := domain.Activity{EndDate: tc.end}
		got := a.DaysRemaining(now)
		switch {
		case tc.want == nil && got != nil:
			t.Fatalf("%s: got %d, want nil", tc.name, *got)
		case tc.want != nil && (got == nil || *got != *tc.want):
			t.Fatalf("%s: got %v, want %d", tc.name, got, *tc.want)
		}
	}
}

func TestIsLate(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	past := strPtr("2024-06-01")
	today := strPtr("2024-06-15")
	if !(domain.Activity{EndDate: past, Status: domain.StatusInProgress}).IsLate(now) {
		t.Fatal("past end date must be late")
	}
	if (domain.Activity{EndDate: past, Status: domain.StatusComplete}).IsLate(now) {
		t.Fatal("complete activity is never late")
	}
	if (domain.Activity{EndDate: today, Status: domain.StatusInProgress}).IsLate(now) {
		t.Fatal("due today is not late yet")
	}
	if (domain.Activity{Status: domain.StatusInProgress}).IsLate(now) {
		t.Fatal("no end date is never late")
	}
}

func strPtr(v string) *string { return &v }
