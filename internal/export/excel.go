// Package export builds the Excel rendition of the annual work plan: a
// main sheet with one row per activity and a grand total, plus two summary
// sheets for the logical and organizational hierarchies.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"ptaplan/internal/domain"
	"ptaplan/internal/repo"
)

const (
	sheetMain = "PTA_PRINCIPAL"
	sheetLog  = "STRUCTURE_LOGIQUE"
	sheetOrg  = "STRUCTURE_ORGANISATIONNELLE"

	accentColor = "2E86AB"

	notSpecified = "Non spécifié"
)

var mainHeaders = []string{
	"OBJECTIFS GENERAUX", "OBJECTIFS SPECIFIQUES", "RESULTATS ATTENDUS",
	"STRUCTURE", "DIRECTION", "SERVICE", "DIVISION", "ACTIVITES",
	"SOUS-ACTIVITES", "PRODUITS", "CIBLES", "SOURCES DE FINANCEMENT",
	"CODE PCOP", "LIBELLE PCOP", "COUT UNITAIRE", "QUANTITE", "MONTANT TOTAL", "OBSERVATIONS", "ETAT",
}

type Exporter struct {
	Repo         repo.Repo
	Now          func() time.Time
	Organization string
	Currency     string
}

// dataset is everything the workbook needs, loaded up front so the three
// sheets agree with each other.
type dataset struct {
	structures []domain.Structure
	directions []domain.Direction
	services   []domain.Service
	divisions  []domain.Division
	generals   []domain.GeneralObjective
	specifics  []domain.SpecificObjective
	results    []domain.ExpectedResult
	pcop       []domain.PCOPEntry
	activities []domain.Activity
}

func (x Exporter) load(ctx context.Context) (dataset, error) {
	var d dataset
	var err error
	if d.structures, err = x.Repo.ListStructures(ctx); err != nil {
		return d, err
	}
	if d.directions, err = x.Repo.ListDirections(ctx, ""); err != nil {
		return d, err
	}
	if d.services, err = x.Repo.ListServices(ctx, ""); err != nil {
		return d, err
	}
	if d.divisions, err = x.Repo.ListDivisions(ctx, ""); err != nil {
		return d, err
	}
	if d.generals, err = x.Repo.ListGeneralObjectives(ctx); err != nil {
		return d, err
	}
	if d.specifics, err = x.Repo.ListSpecificObjectives(ctx, ""); err != nil {
		return d, err
	}
	if d.results, err = x.Repo.ListExpectedResults(ctx, ""); err != nil {
		return d, err
	}
	if d.pcop, err = x.Repo.ListPCOPEntries(ctx); err != nil {
		return d, err
	}
	if d.activities, err = x.Repo.ListActivities(ctx, repo.ActivityFilter{}); err != nil {
		return d, err
	}
	return d, nil
}

// WritePTA streams the workbook to w.
func (x Exporter) WritePTA(ctx context.Context, w io.Writer) error {
	data, err := x.load(ctx)
	if err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := x.writeMainSheet(f, data); err != nil {
		return err
	}
	if err := x.writeLogicalSheet(f, data); err != nil {
		return err
	}
	if err := x.writeOrgSheet(f, data); err != nil {
		return err
	}
	return f.Write(w)
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{accentColor}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
}

func titleStyle(f *excelize.File, size float64) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: accentColor, Size: size},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func moneyStyle(f *excelize.File) (int, error) {
	fmtStr := "#,##0.00"
	return f.NewStyle(&excelize.Style{
		CustomNumFmt: &fmtStr,
		Alignment:    &excelize.Alignment{Horizontal: "right", Vertical: "center"},
	})
}

func (x Exporter) writeMainSheet(f *excelize.File, data dataset) error {
	f.SetSheetName(f.GetSheetName(0), sheetMain)

	title := x.Organization
	if title == "" {
		title = "PLAN DE TRAVAIL ANNUEL (PTA)"
	}
	if err := f.MergeCell(sheetMain, "A1", "S1"); err != nil {
		return err
	}
	f.SetCellValue(sheetMain, "A1", title)
	if st, err := titleStyle(f, 16); err == nil {
		f.SetCellStyle(sheetMain, "A1", "A1", st)
	}

	now := time.Now
	if x.Now != nil {
		now = x.Now
	}
	f.MergeCell(sheetMain, "A2", "S2")
	f.SetCellValue(sheetMain, "A2", fmt.Sprintf("Export généré le %s", now().Format("02/01/2006 à 15:04")))

	hs, err := headerStyle(f)
	if err != nil {
		return err
	}
	headers := append([]string(nil), mainHeaders...)
	if x.Currency != "" {
		headers[14] += " (" + x.Currency + ")"
		headers[16] += " (" + x.Currency + ")"
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheetMain, cell, h)
	}
	f.SetCellStyle(sheetMain, "A4", "S4", hs)

	structures := indexStructures(data.structures)
	directions := indexDirections(data.directions)
	services := indexServices(data.services)
	divisions := indexDivisions(data.divisions)
	generals := indexGenerals(data.generals)
	specifics := indexSpecifics(data.specifics)
	results := indexResults(data.results)
	pcop := indexPCOP(data.pcop)

	ms, err := moneyStyle(f)
	if err != nil {
		return err
	}

	total := decimal.Zero
	row := 5
	for _, a := range data.activities {
		pcopCode, pcopLabel := notSpecified, notSpecified
		if a.PCOPID != nil {
			if p, ok := pcop[*a.PCOPID]; ok {
				pcopCode, pcopLabel = p.Code, p.Label
			}
		}
		values := []any{
			lookup(generals, a.GeneralObjectiveID),
			lookup(specifics, a.SpecificObjectiveID),
			lookup(results, a.ExpectedResultID),
			lookup(structures, a.StructureID),
			lookup(directions, a.DirectionID),
			lookup(services, a.ServiceID),
			lookup(divisions, a.DivisionID),
			a.Description,
			orDefault(a.SubActivity),
			orDefault(a.Products),
			orDefault(a.Targets),
			orDefault(a.FundingSources),
			pcopCode,
			pcopLabel,
			decimalOrZero(a.UnitCost),
			decimalOrZero(a.Quantity),
			decimalOrZero(a.Amount),
			orDefault(a.Remark),
			a.Status,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheetMain, cell, v)
		}
		start, _ := excelize.CoordinatesToCellName(15, row)
		end, _ := excelize.CoordinatesToCellName(17, row)
		f.SetCellStyle(sheetMain, start, end, ms)
		if a.Amount != nil {
			total = total.Add(*a.Amount)
		}
		row++
	}

	if len(data.activities) > 0 {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		mergeEnd, _ := excelize.CoordinatesToCellName(16, row)
		f.MergeCell(sheetMain, labelCell, mergeEnd)
		f.SetCellValue(sheetMain, labelCell, fmt.Sprintf("TOTAL GÉNÉRAL (%d activités)", len(data.activities)))
		totalCell, _ := excelize.CoordinatesToCellName(17, row)
		v, _ := total.Float64()
		f.SetCellValue(sheetMain, totalCell, v)
		f.SetCellStyle(sheetMain, totalCell, totalCell, ms)
	}

	return f.SetColWidth(sheetMain, "A", "S", 24)
}

func (x Exporter) writeLogicalSheet(f *excelize.File, data dataset) error {
	if _, err := f.NewSheet(sheetLog); err != nil {
		return err
	}
	f.MergeCell(sheetLog, "A1", "D1")
	f.SetCellValue(sheetLog, "A1", "STRUCTURE LOGIQUE - OBJECTIFS ET RÉSULTATS")
	if st, err := titleStyle(f, 14); err == nil {
		f.SetCellStyle(sheetLog, "A1", "A1", st)
	}

	hs, err := headerStyle(f)
	if err != nil {
		return err
	}
	for i, h := range []string{"Objectif Général", "Objectif Spécifique", "Résultat Attendu", "Nombre d'Activités"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheetLog, cell, h)
	}
	f.SetCellStyle(sheetLog, "A2", "D2", hs)

	countByResult := map[string]int{}
	for _, a := range data.activities {
		if a.ExpectedResultID != nil {
			countByResult[*a.ExpectedResultID]++
		}
	}

	row := 3
	for _, og := range data.generals {
		for _, os := range data.specifics {
			if os.GeneralObjectiveID != og.ID {
				continue
			}
			for _, ra := range data.results {
				if ra.SpecificObjectiveID != os.ID {
					continue
				}
				values := []any{
					og.Code + " - " + og.Title,
					os.Code + " - " + os.Title,
					ra.Code + " - " + ra.Description,
					countByResult[ra.ID],
				}
				for i, v := range values {
					cell, _ := excelize.CoordinatesToCellName(i+1, row)
					f.SetCellValue(sheetLog, cell, v)
				}
				row++
			}
		}
	}
	return f.SetColWidth(sheetLog, "A", "D", 40)
}

func (x Exporter) writeOrgSheet(f *excelize.File, data dataset) error {
	if _, err := f.NewSheet(sheetOrg); err != nil {
		return err
	}
	f.MergeCell(sheetOrg, "A1", "E1")
	f.SetCellValue(sheetOrg, "A1", "STRUCTURE ORGANISATIONNELLE - STRUCTURES, DIRECTIONS, SERVICES ET DIVISIONS")
	if st, err := titleStyle(f, 14); err == nil {
		f.SetCellStyle(sheetOrg, "A1", "A1", st)
	}

	hs, err := headerStyle(f)
	if err != nil {
		return err
	}
	for i, h := range []string{"Structure", "Direction", "Service", "Division", "Nombre d'Activités"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheetOrg, cell, h)
	}
	f.SetCellStyle(sheetOrg, "A2", "E2", hs)

	countByDivision := map[string]int{}
	for _, a := range data.activities {
		if a.DivisionID != nil {
			countByDivision[*a.DivisionID]++
		}
	}

	row := 3
	for _, st := range data.structures {
		for _, dir := range data.directions {
			if dir.StructureID == nil || *dir.StructureID != st.ID {
				continue
			}
			for _, svc := range data.services {
				if svc.DirectionID == nil || *svc.DirectionID != dir.ID {
					continue
				}
				for _, div := range data.divisions {
					if div.ServiceID == nil || *div.ServiceID != svc.ID {
						continue
					}
					values := []any{
						st.Code + " - " + st.Name,
						dir.Code + " - " + dir.Name,
						svc.Code + " - " + svc.Name,
						div.Code + " - " + div.Name,
						countByDivision[div.ID],
					}
					for i, v := range values {
						cell, _ := excelize.CoordinatesToCellName(i+1, row)
						f.SetCellValue(sheetOrg, cell, v)
					}
					row++
				}
			}
		}
	}
	return f.SetColWidth(sheetOrg, "A", "E", 35)
}

// --- lookup helpers ---

func indexStructures(in []domain.Structure) map[string]string {
	m := map[string]string{}
	for _, v := range in {
		m[v.ID] = v.Name
	}
	return m
}

func indexDirections(in []domain.Direction) map[string]string {
	m := map[string]string{}
	for _, v := range in {
		m[v.ID] = v.Name
	}
	return m
}

func indexServices(in []domain.Service) map[string]string {
	m := map[string]string{}
	for _, v := range in {
		m[v.ID] = v.Name
	}
	return m
}

func indexDivisions(in []domain.Division) map[string]string {
	m := map[string]string{}
	for _, v := range in {
		m[v.ID] = v.Name
	}
	return m
}

func indexGenerals(in []domain.GeneralObjective) map[string]string {
	m := map[string]string{}
	for _, v := range in {
		m[v.ID] = v.Title
	}
	return m
}

func indexSpecifics(in []domain.SpecificObjective) map[string]string {
	m := map[string]string{}
	for _, v := range in {
		m[v.ID] = v.Title
	}
	return m
}

func indexResults(in []domain.ExpectedResult) map[string]string {
	m := map[string]string{}
	for _, v := range in {
		m[v.ID] = v.Description
	}
	return m
}

func indexPCOP(in []domain.PCOPEntry) map[string]domain.PCOPEntry {
	m := map[string]domain.PCOPEntry{}
	for _, v := range in {
		m[v.ID] = v
	}
	return m
}

func lookup(names map[string]string, id *string) string {
	if id == nil {
		return notSpecified
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return notSpecified
}

func orDefault(v string) string {
	if v == "" {
		return notSpecified
	}
	return v
}

func decimalOrZero(d *decimal.Decimal) float64 {
	if d == nil {
		return 0
	}
	v, _ := d.Float64()
	return v
}
