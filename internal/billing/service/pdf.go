package service

import (
	"fmt"

	billingdomain "github.com/cogentahq/timebill/internal/billing/domain"
	"github.com/gosimple/slug"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotoconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const invoiceDateLayout = "2006-01-02"

// RenderPDF lays out a generated invoice as an A4 document and returns the
// bytes plus a filesystem-safe suggested filename.
func (s *Service) RenderPDF(invoice *billingdomain.Invoice) ([]byte, string, error) {
	if invoice == nil || len(invoice.LineItems) == 0 {
		return nil, "", billingdomain.ErrNoLineItems
	}

	cfg := marotoconfig.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	company := s.cfg.Company

	m.AddRows(
		row.New(8).Add(
			text.NewCol(7, company.Name, props.Text{Size: 14, Style: fontstyle.Bold}),
			text.NewCol(5, "INVOICE", props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Right}),
		),
		row.New(5).Add(
			text.NewCol(7, company.Address, props.Text{Size: 8}),
			text.NewCol(5, "Invoice #: "+invoice.Number, props.Text{Size: 9, Align: align.Right}),
		),
		row.New(5).Add(
			text.NewCol(7, "VAT: "+company.VATNumber, props.Text{Size: 8}),
			text.NewCol(5, "Date: "+invoice.IssuedAt.Format(invoiceDateLayout), props.Text{Size: 9, Align: align.Right}),
		),
		row.New(5).Add(
			text.NewCol(7, "Bank: "+company.BankAccount, props.Text{Size: 8}),
			text.NewCol(5, "Due Date: "+invoice.DueAt.Format(invoiceDateLayout), props.Text{Size: 9, Align: align.Right}),
		),
		row.New(5).Add(
			text.NewCol(12, fmt.Sprintf("%s | %s", company.Email, company.Website), props.Text{Size: 8}),
		),
	)

	m.AddRows(row.New(6))
	m.AddRows(row.New(5).Add(
		text.NewCol(12, "BILL TO:", props.Text{Size: 9, Style: fontstyle.Bold}),
	))
	m.AddRows(row.New(5).Add(
		text.NewCol(12, invoice.Client.DisplayName(), props.Text{Size: 10, Style: fontstyle.Bold}),
	))
	if invoice.Client.CompanyName != "" && invoice.Client.ContactName != "" {
		m.AddRows(row.New(4).Add(
			text.NewCol(12, "Attn: "+invoice.Client.ContactName, props.Text{Size: 8}),
		))
	}
	if invoice.Client.Address != "" {
		m.AddRows(row.New(4).Add(
			text.NewCol(12, invoice.Client.Address, props.Text{Size: 8}),
		))
	}
	if invoice.Client.VATNumber != "" {
		m.AddRows(row.New(4).Add(
			text.NewCol(12, "VAT: "+invoice.Client.VATNumber, props.Text{Size: 8}),
		))
	}
	if invoice.Client.Email != "" {
		m.AddRows(row.New(4).Add(
			text.NewCol(12, "Email: "+invoice.Client.Email, props.Text{Size: 8}),
		))
	}

	qtyHeader := "Hours/Qty"
	if invoice.Summarized {
		qtyHeader = "Total Hours"
	}
	m.AddRows(row.New(6))
	m.AddRows(row.New(6).Add(
		text.NewCol(6, "Description", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, qtyHeader, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	))
	for _, item := range invoice.LineItems {
		rate := item.Rate
		if rate != billingdomain.RateNotApplicable {
			rate = invoice.Currency + rate
		}
		m.AddRows(row.New(6).Add(
			text.NewCol(6, item.Description, props.Text{Size: 8}),
			text.NewCol(2, item.Quantity, props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, rate, props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, invoice.Currency+item.Amount.StringFixed(2), props.Text{Size: 8, Align: align.Right}),
		))
	}

	m.AddRows(row.New(6))
	m.AddRows(
		row.New(5).Add(
			text.NewCol(8, "", props.Text{}),
			text.NewCol(2, "Subtotal:", props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, invoice.Currency+invoice.Subtotal.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		),
		row.New(5).Add(
			text.NewCol(8, "", props.Text{}),
			text.NewCol(2, fmt.Sprintf("Tax (VAT %s%%):", invoice.TaxRate.StringFixed(0)), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, invoice.Currency+invoice.Tax.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		),
		row.New(6).Add(
			text.NewCol(8, "", props.Text{}),
			text.NewCol(2, "TOTAL:", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
			text.NewCol(2, invoice.Currency+invoice.Total.StringFixed(2), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		),
	)

	if invoice.Notes != "" {
		m.AddRows(row.New(8))
		m.AddRows(row.New(5).Add(
			text.NewCol(12, "Notes: "+invoice.Notes, props.Text{Size: 8}),
		))
	}
	if company.Tagline != "" {
		m.AddRows(row.New(8).Add(
			text.NewCol(12, fmt.Sprintf("%s | %s", company.Name, company.Tagline), props.Text{Size: 7, Align: align.Center}),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("render invoice pdf: %w", err)
	}

	filename := fmt.Sprintf("%s-Invoice-%s_%s.pdf",
		slugOr(company.Name, "Invoice"),
		invoice.Number,
		slugOr(invoice.Client.DisplayName(), "Client"),
	)
	return doc.GetBytes(), filename, nil
}

func slugOr(value, fallback string) string {
	if out := slug.Make(value); out != "" {
		return out
	}
	return slug.Make(fallback)
}
