// ABOUTME: Tests for the typed backend endpoints
// ABOUTME: Verifies paths, methods, bodies and decoding of each resource shape

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/lot-admin/internal/model"
)

func TestLogin_TokenAtRoot(t *testing.T) {
	var body map[string]string
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"success":true,"message":"Login successful","token":"abc","user":{"id":"u1","username":"admin","companyName":"LOT","role":"admin","isFirstLogin":false}}`))
	})

	res, err := c.Login(context.Background(), model.Credentials{Username: "admin", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "abc", res.Token)
	assert.Equal(t, "admin", res.Operator.Username)
	assert.Equal(t, "u1", res.Operator.ID)
	assert.Equal(t, "admin", body["username"])
	assert.Equal(t, "secret1", body["password"])
}

func TestLogin_TokenInData(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"token":"nested","user":{"_id":"u9","username":"ops"}}}`))
	})

	res, err := c.Login(context.Background(), model.Credentials{Username: "ops", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "nested", res.Token)
	assert.Equal(t, "u9", res.Operator.ID)
}

func TestLogin_MissingToken(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})

	_, err := c.Login(context.Background(), model.Credentials{Username: "ops", Password: "secret1"})
	assert.True(t, errors.Is(err, ErrMissingToken))
}

func TestMe(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":{"user":{"_id":"u1","username":"admin","role":"admin"}}}`))
	})

	op, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin", op.Username)
	assert.Equal(t, "admin", op.Role)
}

func TestListUsers(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/users", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":[
			{"_id":"u1","companyName":"Acme","contactPerson":"Priya","email":"p@acme.example","role":"customer","status":"approved","isFirstLogin":true},
			{"_id":"u2","companyName":"Globex","email":"g@globex.example"}
		]}`))
	})

	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, model.UserApproved, users[0].Status)
	assert.Equal(t, "Priya", users[0].Contact)
	assert.Equal(t, "customer", users[0].Role)
	assert.True(t, users[0].IsFirstLogin)
	assert.False(t, users[1].IsFirstLogin)
	assert.Equal(t, model.UserPending, users[1].Status, "missing status means pending")
}

func TestSetUserStatus(t *testing.T) {
	var got map[string]string
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/admin/users/u1/status", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true}`))
	})

	require.NoError(t, c.SetUserStatus(context.Background(), "u1", model.UserDisabled))
	assert.Equal(t, "disabled", got["status"])
}

func TestListProducts(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products":
			w.Write([]byte(`{"success":true,"data":[{"_id":"p1","name":"Bolt","category":"home","price":12.5,"quantity":4,"image":"/uploads/bolt.png","isActive":true}]}`))
		case "/admin/products/deactivated":
			w.Write([]byte(`{"success":true,"data":[{"_id":"p2","name":"Nut","category":"home","price":"3","quantity":0}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	active, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, model.ProductActive, active[0].Status)
	assert.True(t, active[0].Price.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "/uploads/bolt.png", active[0].Image)

	inactive, err := c.ListDeactivatedProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, model.ProductInactive, inactive[0].Status)
	assert.Empty(t, inactive[0].Image)
}

func TestCreateProduct_JSON(t *testing.T) {
	var raw map[string]any
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(data, &raw))
		w.Write([]byte(`{"success":true,"data":{"_id":"new-1"}}`))
	})

	id, err := c.CreateProduct(context.Background(), model.NewProduct{
		Name: "Bolt", Category: "home", Price: decimal.RequireFromString("12.50"), Quantity: 4,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "new-1", id)
	assert.Equal(t, 12.5, raw["price"], "price is sent as a JSON number")
	assert.Equal(t, float64(4), raw["quantity"])
	_, hasDesc := raw["description"]
	assert.False(t, hasDesc)
}

func TestCreateProduct_Multipart(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "Bolt", r.FormValue("name"))
		assert.Equal(t, "12.5", r.FormValue("price"))
		assert.Equal(t, "4", r.FormValue("quantity"))

		f, hdr, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "bolt.png", hdr.Filename)
		assert.Equal(t, []byte("png-bytes"), data)
		w.Write([]byte(`{"success":true}`))
	})

	_, err := c.CreateProduct(context.Background(), model.NewProduct{
		Name: "Bolt", Category: "home", Price: decimal.RequireFromString("12.5"), Quantity: 4,
	}, &Image{Filename: "bolt.png", ContentType: "image/png", Data: []byte("png-bytes")})
	require.NoError(t, err)
}

func TestUpdateProduct_OnlyEditableFields(t *testing.T) {
	var raw map[string]any
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/admin/products/p1", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(`{"success":true}`))
	})

	err := c.UpdateProduct(context.Background(), "p1", model.ProductUpdate{
		Price: decimal.NewFromInt(9), Quantity: 2, Description: "restocked",
	})
	require.NoError(t, err)
	assert.Len(t, raw, 3)
	assert.Contains(t, raw, "price")
	assert.Contains(t, raw, "quantity")
	assert.Contains(t, raw, "description")
}

func TestListEstimates_CustomerShapes(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/estimate/admin/all", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":[
			{"_id":"e1","userId":42,"status":"new","createdAt":"2024-03-01T10:00:00.000Z",
			 "items":[{"_id":"i1","productId":{"_id":"p1","name":"Bolt","category":"home","price":500},"quantity":1,"price":500},
			          {"_id":"i2","productId":"p2","quantity":2,"price":250}]},
			{"_id":"e2","userId":{"_id":"u1","companyName":"Acme Traders"},"status":"sent","items":[]},
			{"_id":"e3","userId":null,"items":[]}
		]}`))
	})

	estimates, err := c.ListEstimates(context.Background())
	require.NoError(t, err)
	require.Len(t, estimates, 3)

	e1 := estimates[0]
	assert.Equal(t, "#42", e1.Customer.Label())
	assert.Equal(t, model.EstimateNew, e1.Status)
	assert.Equal(t, 2024, e1.CreatedAt.Year())
	require.Len(t, e1.Items, 2)
	assert.Equal(t, "Bolt", e1.Items[0].ProductName)
	assert.Equal(t, "p2", e1.Items[1].ProductID)
	assert.Equal(t, "Unknown Product", e1.Items[1].DisplayName())
	assert.True(t, e1.Total().Equal(decimal.NewFromInt(1000)))

	assert.Equal(t, "Acme Traders", estimates[1].Customer.Label())
	assert.Equal(t, "Unknown User", estimates[2].Customer.Label())
	assert.Equal(t, model.EstimateNew, estimates[2].Status)
}

func TestSetEstimateStatus(t *testing.T) {
	var got map[string]string
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/estimate/admin/e1/status", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true}`))
	})

	require.NoError(t, c.SetEstimateStatus(context.Background(), "e1", model.EstimateSent))
	assert.Equal(t, "sent", got["status"])
}

func TestPosts(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/blogs":
			w.Write([]byte(`{"success":true,"data":{"blogs":[{"_id":"b1","title":"Hello","status":"published","createdAt":"2024-05-01T00:00:00Z"}]}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/admin/blogs":
			w.Write([]byte(`{"success":true,"data":{"_id":"b2","title":"New","status":"draft"}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/admin/blogs/b1":
			w.Write([]byte(`{"success":true}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/admin/blogs/b1":
			w.Write([]byte(`{"success":true}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	posts, err := c.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, model.PostPublished, posts[0].Status)
	assert.Equal(t, 2024, posts[0].Date.Year())

	created, err := c.CreatePost(ctx, model.PostInput{Title: "New", Description: "d", Content: "c", Status: model.PostDraft})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "b2", created.ID)

	updated, err := c.UpdatePost(ctx, "b1", model.PostInput{Title: "Hello 2"})
	require.NoError(t, err)
	assert.Nil(t, updated, "no echo means the caller patches locally")

	require.NoError(t, c.DeletePost(ctx, "b1"))
}

func TestStats(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/stats/total-products":
			w.Write([]byte(`{"success":true,"data":{"totalProducts":128}}`))
		case "/admin/stats/new-estimates":
			w.Write([]byte(`{"success":true,"data":7}`))
		}
	})

	total, err := c.TotalProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 128, total)

	fresh, err := c.NewEstimates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, fresh)
}
