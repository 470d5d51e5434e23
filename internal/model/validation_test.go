// ABOUTME: Tests for login and entity form validation
// ABOUTME: Covers trimming, first-rule reporting and per-field messages

package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name      string
		creds     Credentials
		wantField string
		wantMsg   string
	}{
		{"empty username", Credentials{Username: "", Password: "secret123"}, "username", "Username is required"},
		{"whitespace username", Credentials{Username: "   ", Password: "secret123"}, "username", "Username is required"},
		{"username reported first", Credentials{Username: "", Password: ""}, "username", "Username is required"},
		{"empty password", Credentials{Username: "admin", Password: ""}, "password", "Password is required"},
		{"short password", Credentials{Username: "admin", Password: "abc"}, "password", "Password must be at least 6 characters"},
		{"valid", Credentials{Username: "admin", Password: "secret123"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateLogin(tt.creds, 6)
			if tt.wantField == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantField, got.Field)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}

func TestValidateNewProduct(t *testing.T) {
	p, err := ValidateNewProduct(ProductForm{
		Name:     "  Steel Bolt  ",
		Category: "home",
		Price:    "12.50",
		Quantity: "40",
	})
	require.NoError(t, err)
	assert.Equal(t, "Steel Bolt", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, 40, p.Quantity)
}

func TestValidateNewProduct_NegativePrice(t *testing.T) {
	_, err := ValidateNewProduct(ProductForm{Name: "Bolt", Category: "home", Price: "-5", Quantity: "1"})
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.For("price"), "Valid price required")
	assert.Empty(t, verrs.For("name"))
}

func TestValidateNewProduct_ReportsEveryField(t *testing.T) {
	_, err := ValidateNewProduct(ProductForm{Name: " ", Category: "weapons", Price: "abc", Quantity: "-1"})

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Product name is required", verrs.For("name"))
	assert.Contains(t, verrs.For("category"), "Category must be one of")
	assert.Equal(t, "Valid price required", verrs.For("price"))
	assert.Equal(t, "Valid quantity required", verrs.For("quantity"))
}

func TestValidateProductUpdate_IgnoresNameAndCategory(t *testing.T) {
	u, err := ValidateProductUpdate(ProductForm{Name: "", Category: "", Price: "0", Quantity: "0", Description: " restocked "})
	require.NoError(t, err)
	assert.True(t, u.Price.IsZero())
	assert.Equal(t, "restocked", u.Description)

	orig := Product{ID: "p1", Name: "Bolt", Category: "home", Price: decimal.NewFromInt(9), Quantity: 3}
	updated := u.Apply(orig)
	assert.Equal(t, "Bolt", updated.Name)
	assert.Equal(t, "home", updated.Category)
	assert.Equal(t, 0, updated.Quantity)
}

func TestValidatePost(t *testing.T) {
	in, err := ValidatePost(PostForm{Title: " Launch ", Description: "News", Content: "# Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Launch", in.Title)
	assert.Equal(t, PostDraft, in.Status)

	_, err = ValidatePost(PostForm{Title: "   ", Description: "", Content: "x", Status: "archived"})
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Title is required", verrs.For("title"))
	assert.Equal(t, "Description is required", verrs.For("description"))
	assert.NotEmpty(t, verrs.For("status"))
	assert.Empty(t, verrs.For("content"))
}

func TestUserMatches(t *testing.T) {
	u := User{Company: "Acme Traders", Email: "ops@acme.example", Contact: "Priya Nair"}
	assert.True(t, u.Matches("acme"))
	assert.True(t, u.Matches("OPS@"))
	assert.True(t, u.Matches("priya"))
	assert.True(t, u.Matches(""))
	assert.False(t, u.Matches("globex"))
}

func TestProductMatches(t *testing.T) {
	p := Product{Name: "Hex Bolt M8", Category: "home", Description: "zinc plated"}
	assert.True(t, p.Matches("bolt"))
	assert.True(t, p.Matches("  HEX "))
	assert.True(t, p.Matches(""))
	assert.False(t, p.Matches("zinc"), "only the name is searched")
}

func TestPostMatches(t *testing.T) {
	p := Post{Title: "Spring Catalog", Description: "new arrivals"}
	assert.True(t, p.Matches("catalog"))
	assert.True(t, p.Matches(""))
	assert.False(t, p.Matches("arrivals"), "only the title is searched")
}

func TestEstimateMatches(t *testing.T) {
	numeric := Estimate{ID: "e1", Customer: Customer{ID: "42", Numeric: true}}
	assert.True(t, numeric.Matches("E1"))
	assert.True(t, numeric.Matches("#42"))
	assert.False(t, numeric.Matches("acme"))

	embedded := Estimate{ID: "e2", Customer: Customer{ID: "u1", Company: "Acme Traders", Contact: "Ann", Email: "ann@acme.test"}}
	assert.True(t, embedded.Matches("traders"))
	assert.True(t, embedded.Matches("ann@"))
	assert.True(t, embedded.Matches(""))
	assert.False(t, embedded.Matches("globex"))
}
