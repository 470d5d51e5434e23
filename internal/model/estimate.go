// ABOUTME: Customer estimates (quotes) with line items and a forward-only lifecycle
// ABOUTME: Totals are computed locally from line items using decimal arithmetic

package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EstimateStatus is the progress of a quote.
type EstimateStatus string

const (
	EstimateNew    EstimateStatus = "new"
	EstimateSent   EstimateStatus = "sent"
	EstimateClosed EstimateStatus = "closed"
)

// EstimateLifecycle only moves forward.
var EstimateLifecycle = NewMachine("estimate",
	Transition[EstimateStatus]{From: EstimateNew, Action: ActionSend, To: EstimateSent},
	Transition[EstimateStatus]{From: EstimateSent, Action: ActionClose, To: EstimateClosed},
)

// Customer is the requester of an estimate. The backend sends either a bare
// numeric id or an embedded account object.
type Customer struct {
	ID      string
	Numeric bool
	Company string
	Contact string
	Email   string
	Phone   string
}

// Label is how the customer is shown: "#<id>" for numeric references, the
// company name for embedded accounts, otherwise "Unknown User".
func (c Customer) Label() string {
	switch {
	case c.Numeric:
		return "#" + c.ID
	case c.Company != "":
		return c.Company
	default:
		return "Unknown User"
	}
}

// EstimateItem is one line of an estimate.
type EstimateItem struct {
	ID          string
	ProductID   string
	ProductName string
	Category    string
	ListPrice   decimal.Decimal // catalog price of the product
	Price       decimal.Decimal // quoted unit price on this line
	Quantity    int
}

// LineTotal is the quoted unit price times quantity.
func (i EstimateItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// DisplayName falls back when the product reference was not populated.
func (i EstimateItem) DisplayName() string {
	if i.ProductName == "" {
		return "Unknown Product"
	}
	return i.ProductName
}

// DisplayCategory falls back when the product reference was not populated.
func (i EstimateItem) DisplayCategory() string {
	if i.Category == "" {
		return "Unknown Category"
	}
	return i.Category
}

// Estimate is a quote request from a customer.
type Estimate struct {
	ID        string
	Customer  Customer
	Items     []EstimateItem
	Status    EstimateStatus
	CreatedAt time.Time
}

// Total is the sum of the line totals.
func (e Estimate) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range e.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Quantity is the total number of units across all lines.
func (e Estimate) Quantity() int {
	n := 0
	for _, item := range e.Items {
		n += item.Quantity
	}
	return n
}

// Matches reports whether the estimate id or customer contains the query, case-insensitively.
func (e Estimate) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, s := range []string{e.ID, e.Customer.Label(), e.Customer.Contact, e.Customer.Email} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}
