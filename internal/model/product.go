// ABOUTME: Catalog products and the create/edit form rules
// ABOUTME: Prices are decimals; edits may only touch price, quantity and description

package model

import (
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Categories is the fixed set of product categories the backend accepts.
var Categories = []string{"electronics", "clothing", "food", "books", "home", "sports", "other"}

// ProductStatus is whether a product is listed.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

// ProductLifecycle: products can only be taken off the catalog from the console.
var ProductLifecycle = NewMachine("product",
	Transition[ProductStatus]{From: ProductActive, Action: ActionDelete, To: ProductInactive, Destructive: true},
)

// Product is a catalog entry.
type Product struct {
	ID          string
	Name        string
	Category    string
	Price       decimal.Decimal
	Quantity    int
	Description string
	Image       string // backend image reference, empty when none was uploaded
	Status      ProductStatus
}

// Matches reports whether the product name contains the query, case-insensitively.
func (p Product) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	return q == "" || strings.Contains(strings.ToLower(p.Name), q)
}

// ProductForm is the raw product form as submitted.
type ProductForm struct {
	Name        string
	Category    string
	Price       string
	Quantity    string
	Description string
}

// NewProduct is a validated create request.
type NewProduct struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description,omitempty"`
}

// ProductUpdate is a validated edit request. Name and category are immutable after creation.
type ProductUpdate struct {
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description"`
}

// ValidateNewProduct checks every create field and returns the request or the field errors.
func ValidateNewProduct(f ProductForm) (NewProduct, error) {
	var errs ValidationErrors

	name := strings.TrimSpace(f.Name)
	if name == "" {
		errs.add("name", "Product name is required")
	}

	category := strings.TrimSpace(f.Category)
	switch {
	case category == "":
		errs.add("category", "Category is required")
	case !slices.Contains(Categories, category):
		errs.add("category", "Category must be one of "+strings.Join(Categories, ", "))
	}

	price, ok := parsePrice(f.Price)
	if !ok {
		errs.add("price", "Valid price required")
	}
	qty, ok := parseQuantity(f.Quantity)
	if !ok {
		errs.add("quantity", "Valid quantity required")
	}

	if err := errs.orNil(); err != nil {
		return NewProduct{}, err
	}
	return NewProduct{
		Name:        name,
		Category:    category,
		Price:       price,
		Quantity:    qty,
		Description: strings.TrimSpace(f.Description),
	}, nil
}

// ValidateProductUpdate checks the editable fields only; name and category are ignored.
func ValidateProductUpdate(f ProductForm) (ProductUpdate, error) {
	var errs ValidationErrors

	price, ok := parsePrice(f.Price)
	if !ok {
		errs.add("price", "Valid price required")
	}
	qty, ok := parseQuantity(f.Quantity)
	if !ok {
		errs.add("quantity", "Valid quantity required")
	}

	if err := errs.orNil(); err != nil {
		return ProductUpdate{}, err
	}
	return ProductUpdate{Price: price, Quantity: qty, Description: strings.TrimSpace(f.Description)}, nil
}

// Apply returns a copy of p with the update's fields applied.
func (u ProductUpdate) Apply(p Product) Product {
	p.Price = u.Price
	p.Quantity = u.Quantity
	p.Description = u.Description
	return p
}

func parsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

func parseQuantity(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
