// ABOUTME: Printable PDF rendering of an estimate using maroto
// ABOUTME: Mirrors the spreadsheet: header block, line item table and total

package export

import (
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/2389/lot-admin/internal/model"
)

// ContentTypePDF is the MIME type of a PDF download.
const ContentTypePDF = "application/pdf"

var (
	colorPrimary = &props.Color{Red: 30, Green: 64, Blue: 120}
	colorGray    = &props.Color{Red: 110, Green: 110, Blue: 110}
)

// PDF renders e as an A4 document. issuer is printed in the header; empty omits it.
func PDF(e model.Estimate, issuer string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Estimate "+e.ID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(pdfHeaderRow(e, issuer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(pdfCustomerRow(e.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(pdfTableHeaderRow())
	for _, r := range pdfItemRows(e.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(pdfTotalRow(e))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func pdfHeaderRow(e model.Estimate, issuer string) core.Row {
	left := []core.Component{
		text.New("ESTIMATE", props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
	}
	if issuer != "" {
		left = append(left, text.New(issuer, props.Text{Size: 8, Top: 9, Color: colorGray}))
	}

	return row.New(18).Add(
		col.New(7).Add(left...),
		col.New(5).Add(
			text.New(e.ID, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1}),
			text.New("Date: "+formatDate(e), props.Text{Size: 8, Align: align.Right, Top: 7, Color: colorGray}),
			text.New("Status: "+strings.ToUpper(string(e.Status)), props.Text{Size: 8, Align: align.Right, Top: 12, Color: colorGray}),
		),
	)
}

func pdfCustomerRow(c model.Customer) core.Row {
	details := []string{}
	for _, v := range []string{c.Contact, c.Email, c.Phone} {
		if v != "" {
			details = append(details, v)
		}
	}
	contact := "-"
	if len(details) > 0 {
		contact = strings.Join(details, "   |   ")
	}

	return row.New(14).Add(
		col.New(12).Add(
			text.New("CUSTOMER", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(c.Label(), props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
			text.New(contact, props.Text{Size: 8, Top: 10, Color: colorGray}),
		),
	)
}

func pdfTableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h(Columns[0], 4, align.Left),
		h(Columns[1], 2, align.Left),
		h(Columns[2], 2, align.Center),
		h(Columns[3], 2, align.Right),
		h(Columns[4], 2, align.Right),
	)
}

func pdfItemRows(items []model.EstimateItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, row.New(7).Add(
			col.New(4).Add(text.New(item.DisplayName(), props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(item.DisplayCategory(), props.Text{Size: 8, Top: 1, Color: colorGray})),
			col.New(2).Add(text.New(strconv.Itoa(item.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(item.Price.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(item.LineTotal().StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func pdfTotalRow(e model.Estimate) core.Row {
	return row.New(10).Add(
		col.New(8).Add(text.New("TOTAL", props.Text{Style: fontstyle.Bold, Size: 10, Top: 2})),
		col.New(4).Add(text.New(e.Total().StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 2, Color: colorPrimary,
		})),
	)
}
