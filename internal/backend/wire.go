// ABOUTME: JSON wire shapes of backend resources and their conversion to model types
// ABOUTME: Tolerates ids sent as strings or numbers and references sent as ids or objects

package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/2389/lot-admin/internal/model"
)

// flexID accepts a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// idOf picks the mongo-style _id, falling back to id.
func idOf(mongoID, id flexID) string {
	if mongoID != "" {
		return string(mongoID)
	}
	return string(id)
}

type wireOperator struct {
	MongoID       flexID `json:"_id"`
	ID            flexID `json:"id"`
	Username      string `json:"username"`
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	IsFirstLogin  bool   `json:"isFirstLogin"`
}

func (w wireOperator) toOperator() Operator {
	return Operator{
		ID:            idOf(w.MongoID, w.ID),
		Username:      w.Username,
		CompanyName:   w.CompanyName,
		ContactPerson: w.ContactPerson,
		Email:         w.Email,
		Role:          w.Role,
		IsFirstLogin:  w.IsFirstLogin,
	}
}

type wireUser struct {
	MongoID       flexID `json:"_id"`
	ID            flexID `json:"id"`
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Username      string `json:"username"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	IsFirstLogin  bool   `json:"isFirstLogin"`
}

func (w wireUser) toModel() model.User {
	status := model.UserStatus(w.Status)
	if status == "" {
		status = model.UserPending
	}
	return model.User{
		ID:           idOf(w.MongoID, w.ID),
		Company:      w.CompanyName,
		Contact:      w.ContactPerson,
		Email:        w.Email,
		Phone:        w.Phone,
		Username:     w.Username,
		Role:         w.Role,
		Status:       status,
		IsFirstLogin: w.IsFirstLogin,
	}
}

type wireProduct struct {
	MongoID     flexID          `json:"_id"`
	ID          flexID          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	IsActive    *bool           `json:"isActive"`
}

func (w wireProduct) toModel() model.Product {
	status := model.ProductActive
	if w.IsActive != nil && !*w.IsActive {
		status = model.ProductInactive
	}
	return model.Product{
		ID:          idOf(w.MongoID, w.ID),
		Name:        w.Name,
		Category:    w.Category,
		Price:       w.Price,
		Quantity:    w.Quantity,
		Description: w.Description,
		Image:       w.Image,
		Status:      status,
	}
}

// customerRef is an estimate's userId: a bare number, a bare id string or an embedded account.
type customerRef struct {
	model.Customer
}

func (c *customerRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		return nil
	case b[0] == '{':
		var obj struct {
			MongoID       flexID `json:"_id"`
			ID            flexID `json:"id"`
			CompanyName   string `json:"companyName"`
			ContactPerson string `json:"contactPerson"`
			Email         string `json:"email"`
			Phone         string `json:"phone"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		c.Customer = model.Customer{
			ID:      idOf(obj.MongoID, obj.ID),
			Company: obj.CompanyName,
			Contact: obj.ContactPerson,
			Email:   obj.Email,
			Phone:   obj.Phone,
		}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		c.Customer = model.Customer{ID: s}
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("userId: %w", err)
		}
		c.Customer = model.Customer{ID: n.String(), Numeric: true}
		return nil
	}
}

// productRef is an estimate line's productId: a bare id or an embedded product.
type productRef struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
}

func (p *productRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] != '{' {
		var id flexID
		if err := json.Unmarshal(b, &id); err != nil {
			return fmt.Errorf("productId: %w", err)
		}
		p.ID = string(id)
		return nil
	}
	var w wireProduct
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	p.ID = idOf(w.MongoID, w.ID)
	p.Name = w.Name
	p.Category = w.Category
	p.Price = w.Price
	return nil
}

type wireEstimateItem struct {
	MongoID   flexID          `json:"_id"`
	ProductID productRef      `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type wireEstimate struct {
	MongoID   flexID             `json:"_id"`
	ID        flexID             `json:"id"`
	UserID    customerRef        `json:"userId"`
	Items     []wireEstimateItem `json:"items"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}

func (w wireEstimate) toModel() model.Estimate {
	items := make([]model.EstimateItem, len(w.Items))
	for i, it := range w.Items {
		items[i] = model.EstimateItem{
			ID:          string(it.MongoID),
			ProductID:   it.ProductID.ID,
			ProductName: it.ProductID.Name,
			Category:    it.ProductID.Category,
			ListPrice:   it.ProductID.Price,
			Price:       it.Price,
			Quantity:    it.Quantity,
		}
	}
	status := model.EstimateStatus(w.Status)
	if status == "" {
		status = model.EstimateNew
	}
	return model.Estimate{
		ID:        idOf(w.MongoID, w.ID),
		Customer:  w.UserID.Customer,
		Items:     items,
		Status:    status,
		CreatedAt: w.CreatedAt,
	}
}

type wirePost struct {
	MongoID     flexID     `json:"_id"`
	ID          flexID     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	Date        *time.Time `json:"date"`
	CreatedAt   *time.Time `json:"createdAt"`
}

func (w wirePost) toModel() model.Post {
	status := model.PostStatus(w.Status)
	if status == "" {
		status = model.PostDraft
	}
	p := model.Post{
		ID:          idOf(w.MongoID, w.ID),
		Title:       w.Title,
		Description: w.Description,
		Content:     w.Content,
		Status:      status,
	}
	switch {
	case w.Date != nil:
		p.Date = *w.Date
	case w.CreatedAt != nil:
		p.Date = *w.CreatedAt
	}
	return p
}

// decodeList unmarshals data as an array, or as an object holding the array under one of keys.
func decodeList[T any](env *envelope, keys ...string) ([]T, error) {
	var out []T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return []T{}, nil
	}
	if err := json.Unmarshal(env.Data, &out); err == nil {
		if out == nil {
			out = []T{}
		}
		return out, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &obj); err != nil {
		return nil, fmt.Errorf("%w: data is neither a list nor an object", ErrMalformedResponse)
	}
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, k, err)
		}
		if out == nil {
			out = []T{}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: no list in data", ErrMalformedResponse)
}

// decodeCount reads a stat value sent either as a bare number or as an object
// with one of the given numeric fields.
func decodeCount(env *envelope, keys ...string) (int, error) {
	raw := bytes.TrimSpace(env.Data)
	if len(raw) == 0 {
		return 0, fmt.Errorf("%w: missing stat", ErrMalformedResponse)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return numberToInt(n)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, fmt.Errorf("%w: stat: %v", ErrMalformedResponse, err)
	}
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, &n); err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, k, err)
		}
		return numberToInt(n)
	}
	return 0, fmt.Errorf("%w: no stat field in data", ErrMalformedResponse)
}

func numberToInt(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: stat %q is not a number", ErrMalformedResponse, n)
	}
	return int(f), nil
}
