package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"ptaplan/internal/db"
	"ptaplan/internal/domain"
	"ptaplan/internal/migrate"
	"ptaplan/internal/repo"
)

func newTestRepo(t *testing.T) repo.Repo {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo.Repo{DB: conn}
}

func TestWritePTA(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	stamp := "2024-06-15T10:00:00Z"

	s := domain.Structure{ID: "st-1", Code: "SG", Name: "Secrétariat Général", CreatedAt: stamp}
	if err := r.InsertStructure(ctx, s); err != nil {
		t.Fatal(err)
	}
	og := domain.GeneralObjective{ID: "og-1", Code: "OG1", Title: "Renforcer les capacités", CreatedAt: stamp}
	if err := r.InsertGeneralObjective(ctx, og); err != nil {
		t.Fatal(err)
	}
	amount := decimal.RequireFromString("4500.00")
	end := "2024-06-01"
	a := domain.Activity{
		ID:                 "ac-1",
		GeneralObjectiveID: &og.ID,
		StructureID:        &s.ID,
		EndDate:            &end,
		Description:        "Former les agents",
		Amount:             &amount,
		Status:             domain.StatusInProgress,
		CreatedAt:          stamp,
		UpdatedAt:          stamp,
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.InsertActivity(ctx, tx, a); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	x := Exporter{
		Repo:         r,
		Now:          func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) },
		Organization: "MINISTÈRE TEST",
		Currency:     "Ar",
	}
	var buf bytes.Buffer
	if err := x.WritePTA(ctx, &buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{sheetMain, sheetLog, sheetOrg} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Fatalf("missing sheet %s", sheet)
		}
	}

	title, err := f.GetCellValue(sheetMain, "A1")
	if err != nil {
		t.Fatal(err)
	}
	if title != "MINISTÈRE TEST" {
		t.Fatalf("title = %q", title)
	}

	// one activity row under the header row
	desc, err := f.GetCellValue(sheetMain, "H5")
	if err != nil {
		t.Fatal(err)
	}
	if desc != "Former les agents" {
		t.Fatalf("activity description cell = %q", desc)
	}

	// an unreferenced organizational level falls back to the placeholder
	direction, err := f.GetCellValue(sheetMain, "E5")
	if err != nil {
		t.Fatal(err)
	}
	if direction != "Non spécifié" {
		t.Fatalf("direction cell = %q", direction)
	}

	rows, err := f.GetRows(sheetMain)
	if err != nil {
		t.Fatal(err)
	}
	var foundTotal bool
	for _, row := range rows {
		for _, cell := range row {
			if strings.HasPrefix(cell, "TOTAL GÉNÉRAL") {
				foundTotal = true
			}
		}
	}
	if !foundTotal {
		t.Fatal("totals row missing")
	}
}
