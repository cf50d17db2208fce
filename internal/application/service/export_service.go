package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/repository"
	"github.com/tleroux/chiffrage-api/pkg/money"
)

// ExportService renders estimates as spreadsheets and order lists as
// CSV.
type ExportService struct {
	estimateService *EstimateService
	orderRepo       repository.OrderRepository
}

// NewExportService creates a new export service
func NewExportService(estimateService *EstimateService, orderRepo repository.OrderRepository) *ExportService {
	return &ExportService{estimateService: estimateService, orderRepo: orderRepo}
}

// EstimateWorkbook renders the estimate tree as a styled xlsx workbook:
// sections indented by depth, priced lines with quantity, unit price and
// totals, followed by the version totals block.
func (s *ExportService) EstimateWorkbook(ctx context.Context, versionID uuid.UUID) ([]byte, error) {
	view, err := s.estimateService.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := view.Version.Label
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Chiffrage"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E"}
	widths := []float64{50, 10, 16, 16, 16}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
	})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	row := 1
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), view.Version.Label)
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), titleStyle)
	row += 2

	headers := []string{"Désignation", "Qté", "PU HT", "Total HT", "Total TTC"}
	for i, h := range headers {
		cell := fmt.Sprintf("%s%d", columns[i], row)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	row++

	depths := itemDepths(view.Items)
	for _, item := range orderedTree(view.Items) {
		indent := strings.Repeat("    ", depths[item.ID])
		cellA := fmt.Sprintf("A%d", row)
		f.SetCellValue(sheetName, cellA, indent+item.Title)
		if item.IsSection() {
			f.SetCellStyle(sheetName, cellA, cellA, sectionStyle)
		} else {
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), item.Quantity)
			f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), money.FormatCurrency(item.PuHTCents))
			f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), money.FormatCurrency(item.LineTotalHTCents))
			f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), money.FormatCurrency(item.LineTotalTTCCents))
		}
		row++
	}

	row++
	totalsRows := []struct {
		label string
		cents int64
	}{
		{"Sous-total HT", view.Totals.SaleSubtotalCents},
		{"Remise", -view.DiscountCents},
		{"Total HT", view.Totals.SaleTotalCents},
		{"TVA", view.Totals.AdjustedTaxCents},
		{"Total TTC", view.Totals.RoundedTtcCents},
	}
	for _, t := range totalsRows {
		if t.label == "Remise" && t.cents == 0 {
			continue
		}
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), t.label)
		cellE := fmt.Sprintf("E%d", row)
		f.SetCellValue(sheetName, cellE, money.FormatCurrency(t.cents))
		f.SetCellStyle(sheetName, fmt.Sprintf("D%d", row), cellE, totalStyle)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// OrdersCSV renders the filtered order list as CSV.
func (s *ExportService) OrdersCSV(ctx context.Context, params *repository.OrderFilterParams) ([]byte, error) {
	orders, _, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Référence", "Fournisseur", "Chantier", "Projet", "Date", "Statut", "Total HT", "TVA", "Total TTC"}); err != nil {
		return nil, err
	}
	for _, o := range orders {
		supplierName := ""
		if o.Supplier != nil {
			supplierName = o.Supplier.Name
		}
		siteName := ""
		if o.Site != nil {
			siteName = o.Site.Name
		}
		projectName := ""
		if o.Project != nil {
			projectName = o.Project.Name
		}
		record := []string{
			o.Reference,
			supplierName,
			siteName,
			projectName,
			o.Date.Format("2006-01-02"),
			o.Status.String(),
			centsToDecimal(o.TotalHTCents),
			centsToDecimal(o.TotalTaxCents),
			centsToDecimal(o.TotalTTCCents),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// centsToDecimal renders cents as a plain decimal ("1234.56") so the
// column stays machine-sortable, unlike the display format.
func centsToDecimal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s.%02d", sign, strconv.FormatInt(cents/100, 10), cents%100)
}

// itemDepths maps every item to its depth in the tree, root items at 0.
func itemDepths(items []entity.EstimateItem) map[uuid.UUID]int {
	parents := make(map[uuid.UUID]*uuid.UUID, len(items))
	for _, it := range items {
		parents[it.ID] = it.ParentID
	}
	depths := make(map[uuid.UUID]int, len(items))
	var depthOf func(id uuid.UUID) int
	depthOf = func(id uuid.UUID) int {
		if d, ok := depths[id]; ok {
			return d
		}
		parent := parents[id]
		d := 0
		if parent != nil {
			d = depthOf(*parent) + 1
		}
		depths[id] = d
		return d
	}
	for _, it := range items {
		depthOf(it.ID)
	}
	return depths
}

// orderedTree flattens the item set depth-first following sibling
// positions, the order a reader expects on paper.
func orderedTree(items []entity.EstimateItem) []entity.EstimateItem {
	children := make(map[uuid.UUID][]entity.EstimateItem)
	var roots []entity.EstimateItem
	for _, it := range items {
		if it.ParentID == nil {
			roots = append(roots, it)
		} else {
			children[*it.ParentID] = append(children[*it.ParentID], it)
		}
	}

	out := make([]entity.EstimateItem, 0, len(items))
	var walk func(nodes []entity.EstimateItem)
	walk = func(nodes []entity.EstimateItem) {
		for _, n := range nodes {
			out = append(out, n)
			walk(children[n.ID])
		}
	}
	walk(roots)
	return out
}
