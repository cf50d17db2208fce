package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/tleroux/chiffrage-api/pkg/money"
)

// PDFService renders printable estimates and purchase orders.
type PDFService struct {
	estimateService *EstimateService
	orderService    *OrderService
}

// NewPDFService creates a new PDF service
func NewPDFService(estimateService *EstimateService, orderService *OrderService) *PDFService {
	return &PDFService{estimateService: estimateService, orderService: orderService}
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} / {total}",
			Place:   props.RightBottom,
		}).
		Build()
	return maroto.New(cfg)
}

// PrintableEstimate renders the estimate version as a PDF document.
func (s *PDFService) PrintableEstimate(ctx context.Context, versionID uuid.UUID) ([]byte, error) {
	view, err := s.estimateService.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}

	m := newDocument()

	projectName := ""
	if view.Version.Project != nil {
		projectName = view.Version.Project.Name
	}

	m.AddRow(12,
		text.NewCol(12, "Chiffrage — "+view.Version.Label, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(14,
		col.New(12).Add(
			text.New("Projet : "+projectName, props.Text{Top: 0, Size: 10}),
			text.New("Statut : "+view.Version.Status.String(), props.Text{Top: 5, Size: 10}),
			text.New("Établi le "+view.Version.UpdatedAt.Format("02/01/2006"), props.Text{Top: 10, Size: 10}),
		),
	)

	m.AddRow(8,
		text.NewCol(6, "Désignation", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qté", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "PU HT", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Total HT", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	depths := itemDepths(view.Items)
	for _, item := range orderedTree(view.Items) {
		indent := strings.Repeat("    ", depths[item.ID])
		if item.IsSection() {
			m.AddRow(8,
				text.NewCol(12, indent+item.Title, props.Text{Style: fontstyle.Bold, Size: 9}),
			)
			continue
		}
		m.AddRow(7,
			text.NewCol(6, indent+item.Title, props.Text{Size: 9}),
			text.NewCol(2, trimFloat(item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.FormatCurrency(item.PuHTCents), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.FormatCurrency(item.LineTotalHTCents), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Sous-total HT", props.Text{Size: 9, Top: 4}),
		text.NewCol(2, money.FormatCurrency(view.Totals.SaleSubtotalCents), props.Text{Size: 9, Align: align.Right, Top: 4}),
	)
	if view.DiscountCents > 0 {
		m.AddRow(6,
			col.New(8),
			text.NewCol(2, "Remise", props.Text{Size: 9}),
			text.NewCol(2, "-"+money.FormatCurrency(view.DiscountCents), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(6,
		col.New(8),
		text.NewCol(2, "Total HT", props.Text{Size: 9}),
		text.NewCol(2, money.FormatCurrency(view.Totals.SaleTotalCents), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(6,
		col.New(8),
		text.NewCol(2, "TVA", props.Text{Size: 9}),
		text.NewCol(2, money.FormatCurrency(view.Totals.AdjustedTaxCents), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total TTC", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, money.FormatCurrency(view.Totals.RoundedTtcCents), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

// PrintableOrder renders a purchase order as a PDF document.
func (s *PDFService) PrintableOrder(ctx context.Context, orderID uuid.UUID) ([]byte, error) {
	order, err := s.orderService.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	m := newDocument()

	m.AddRow(12,
		text.NewCol(12, "Bon de commande "+order.Reference, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	supplierName, siteName := "", ""
	if order.Supplier != nil {
		supplierName = order.Supplier.Name
	}
	if order.Site != nil {
		siteName = order.Site.Name
	}
	m.AddRow(20,
		col.New(6).Add(
			text.New("Fournisseur", props.Text{Style: fontstyle.Bold, Size: 10}),
			text.New(supplierName, props.Text{Top: 5, Size: 10}),
		),
		col.New(6).Add(
			text.New("Chantier de livraison", props.Text{Style: fontstyle.Bold, Size: 10}),
			text.New(siteName, props.Text{Top: 5, Size: 10}),
		),
	)
	m.AddRow(8,
		text.NewCol(12, "Date : "+order.Date.Format("02/01/2006"), props.Text{Size: 10}),
	)

	m.AddRow(8,
		text.NewCol(5, "Désignation", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qté", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "PU HT", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "TVA", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Total HT", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, line := range order.Lines {
		m.AddRow(7,
			text.NewCol(5, line.Label, props.Text{Size: 9}),
			text.NewCol(2, trimFloat(line.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.FormatCurrency(line.UnitPriceHTCents), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, fmt.Sprintf("%.1f%%", float64(line.TaxRateBp)/100), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.FormatCurrency(line.LineTotalHTCents), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total HT", props.Text{Size: 9, Top: 4}),
		text.NewCol(2, money.FormatCurrency(order.TotalHTCents), props.Text{Size: 9, Align: align.Right, Top: 4}),
	)
	m.AddRow(6,
		col.New(8),
		text.NewCol(2, "TVA", props.Text{Size: 9}),
		text.NewCol(2, money.FormatCurrency(order.TotalTaxCents), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total TTC", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, money.FormatCurrency(order.TotalTTCCents), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	if order.Notes != nil && *order.Notes != "" {
		m.AddRow(16,
			col.New(12).Add(
				text.New("Notes", props.Text{Style: fontstyle.Bold, Size: 9, Top: 4}),
				text.New(*order.Notes, props.Text{Size: 9, Top: 9}),
			),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

// trimFloat renders a quantity without trailing zeros ("3", "2,5").
func trimFloat(v float64) string {
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
	return strings.ReplaceAll(s, ".", ",")
}
