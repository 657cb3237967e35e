package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/balloon_quote/internal/configurator"
	"github.com/GTDGit/balloon_quote/internal/models"
)

const dateLayout = "02/01/2006"

// Archiver stores exported documents.
type Archiver interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Document is a rendered quotation.
type Document struct {
	Filename string
	Content  []byte
	URL      string
}

// DocumentService renders quotations as PDF and optionally archives them.
type DocumentService struct {
	validDays int
	archive   Archiver
}

// NewDocumentService constructs a DocumentService. archive may be nil.
func NewDocumentService(validDays int, archive Archiver) *DocumentService {
	return &DocumentService{validDays: validDays, archive: archive}
}

// Export renders the quotation and archives it when an archive is
// configured. Archive failures are logged and do not fail the export.
func (s *DocumentService) Export(ctx context.Context, q models.Quotation, vendor models.Vendor) (*Document, error) {
	content, err := s.Render(q, vendor)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Filename: fmt.Sprintf("Quotation_%s.pdf", q.QuotationNumber),
		Content:  content,
	}
	if s.archive != nil {
		url, err := s.archive.Upload(ctx, QuotationKey(q.QuotationNumber), content, "application/pdf")
		if err != nil {
			log.Warn().Err(err).Str("quotation_number", q.QuotationNumber).Msg("Failed to archive quotation document")
		} else {
			doc.URL = url
		}
	}
	return doc, nil
}

var (
	darkGray   = color.Color{Red: 38, Green: 38, Blue: 34}
	mediumGray = color.Color{Red: 121, Green: 119, Blue: 109}
	lightGray  = color.Color{Red: 235, Green: 235, Blue: 232}
)

// Render produces the PDF bytes of a quotation.
func (s *DocumentService) Render(q models.Quotation, vendor models.Vendor) ([]byte, error) {
	date := q.Date
	if date.IsZero() {
		date = time.Now()
	}
	entries := configurator.EntriesFromItems(q.Items)
	totals := configurator.Compute(entries, q.Discount)

	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 15, 20)

	m.Row(14, func() {
		m.Col(6, func() {
			m.Text("QUOTATION", props.Text{Size: 22, Style: consts.Bold, Color: darkGray})
		})
		m.Col(6, func() {
			m.Text("Ref. No: "+q.QuotationNumber, props.Text{Size: 10, Style: consts.Bold, Color: darkGray, Align: consts.Right})
			m.Text("Date: "+date.Format(dateLayout), props.Text{Top: 5, Size: 9, Color: mediumGray, Align: consts.Right})
			m.Text("Valid until: "+date.AddDate(0, 0, s.validDays).Format(dateLayout), props.Text{Top: 9, Size: 9, Color: mediumGray, Align: consts.Right})
		})
	})

	m.Row(6, func() {})

	from := []string{vendor.Name, vendor.Address, vendor.City, vendor.Phone, vendor.Email}
	to := []string{q.ClientDetails.Name, q.ClientDetails.Country, q.ClientDetails.Phone, q.ClientDetails.Email}
	if to[0] == "" {
		to[0] = q.ClientName
	}
	m.Row(5, func() {
		m.Col(6, func() {
			m.Text("FROM", props.Text{Size: 8, Style: consts.Bold, Color: mediumGray})
		})
		m.Col(6, func() {
			m.Text("TO", props.Text{Size: 8, Style: consts.Bold, Color: mediumGray})
		})
	})
	for i := 0; i < max(len(from), len(to)); i++ {
		m.Row(5, func() {
			m.Col(6, func() { addressLine(m, from, i) })
			m.Col(6, func() { addressLine(m, to, i) })
		})
	}

	m.Row(8, func() {})

	m.SetBackgroundColor(lightGray)
	m.Row(7, func() {
		headerCell(m, 1, "#", consts.Left)
		headerCell(m, 5, "ITEM", consts.Left)
		headerCell(m, 2, "PRICE", consts.Right)
		headerCell(m, 2, "QTY", consts.Right)
		headerCell(m, 2, "TOTAL", consts.Right)
	})
	m.SetBackgroundColor(color.NewWhite())

	for i, e := range entries {
		m.Row(6, func() {
			bodyCell(m, 1, fmt.Sprintf("%d", i+1), consts.Left, consts.Normal)
			bodyCell(m, 5, e.Item.Name, consts.Left, consts.Bold)
			bodyCell(m, 2, configurator.FormatEUR(e.UnitPrice()), consts.Right, consts.Normal)
			bodyCell(m, 2, fmt.Sprintf("%d", e.Quantity), consts.Right, consts.Normal)
			bodyCell(m, 2, configurator.FormatEUR(e.LineTotal()), consts.Right, consts.Normal)
		})
		for _, line := range descriptionLines(e.Description()) {
			m.Row(4, func() {
				m.ColSpace(1)
				m.Col(11, func() {
					m.Text("• "+line, props.Text{Size: 8, Color: mediumGray})
				})
			})
		}
		m.Row(2, func() {})
	}

	m.Line(1)
	summaryRow(m, "Subtotal", configurator.FormatEUR(totals.Subtotal), false)
	if totals.DiscountPercent.IsPositive() {
		summaryRow(m, fmt.Sprintf("Discount (%s%%)", totals.DiscountPercent.String()), "-"+configurator.FormatEUR(totals.DiscountAmount), false)
	}
	summaryRow(m, "Total", configurator.FormatEUR(totals.Total), true)

	m.Row(10, func() {})
	m.Row(5, func() {
		m.Col(12, func() {
			m.Text("NOTES", props.Text{Size: 8, Style: consts.Bold, Color: mediumGray})
		})
	})
	m.Row(5, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Prices in EUR. This quotation is valid for %d days from the date of issue.", s.validDays), props.Text{Size: 8, Color: darkGray})
		})
	})

	if q.PaymentTerms != "" {
		m.RegisterFooter(func() {
			m.Row(6, func() {
				m.Col(12, func() {
					m.Text("Payment terms: "+q.PaymentTerms, props.Text{Size: 8, Color: mediumGray, Align: consts.Center})
				})
			})
		})
	}

	buf, err := m.Output()
	if err != nil {
		log.Error().Err(err).Str("quotation_number", q.QuotationNumber).Msg("Failed to render quotation PDF")
		return nil, fmt.Errorf("failed to render quotation: %w", err)
	}
	return buf.Bytes(), nil
}

func addressLine(m pdf.Maroto, lines []string, i int) {
	if i >= len(lines) || lines[i] == "" {
		return
	}
	style := consts.Normal
	if i == 0 {
		style = consts.Bold
	}
	m.Text(lines[i], props.Text{Size: 9, Style: style, Color: darkGray})
}

func headerCell(m pdf.Maroto, width uint, label string, align consts.Align) {
	m.Col(width, func() {
		m.Text(label, props.Text{Top: 1.5, Size: 8, Style: consts.Bold, Color: darkGray, Align: align})
	})
}

func bodyCell(m pdf.Maroto, width uint, value string, align consts.Align, style consts.Style) {
	m.Col(width, func() {
		m.Text(value, props.Text{Top: 1, Size: 9, Style: style, Color: darkGray, Align: align})
	})
}

func summaryRow(m pdf.Maroto, label, value string, strong bool) {
	size, style := 9.0, consts.Normal
	if strong {
		size, style = 12, consts.Bold
	}
	m.Row(7, func() {
		m.ColSpace(6)
		m.Col(3, func() {
			m.Text(label, props.Text{Top: 1, Size: size, Style: style, Color: mediumGray, Align: consts.Right})
		})
		m.Col(3, func() {
			m.Text(value, props.Text{Top: 1, Size: size, Style: style, Color: darkGray, Align: consts.Right})
		})
	})
}

// descriptionLines splits a description into bullet lines, dropping blank
// lines and existing bullet markers.
func descriptionLines(description string) []string {
	var out []string
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "•-*"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
