// ABOUTME: Catalog endpoints for the products panel
// ABOUTME: Creation is JSON, or multipart when an image is attached

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/2389/lot-admin/internal/model"
)

// Image is a file to upload with a new product.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ListProducts returns the active catalog.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	return c.listProducts(ctx, "/products", model.ProductActive)
}

// ListDeactivatedProducts returns products taken off the catalog.
func (c *Client) ListDeactivatedProducts(ctx context.Context) ([]model.Product, error) {
	return c.listProducts(ctx, "/admin/products/deactivated", model.ProductInactive)
}

func (c *Client) listProducts(ctx context.Context, path string, status model.ProductStatus) ([]model.Product, error) {
	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	wire, err := decodeList[wireProduct](env, "products", "items")
	if err != nil {
		return nil, err
	}
	products := make([]model.Product, len(wire))
	for i, w := range wire {
		products[i] = w.toModel()
		if status == model.ProductInactive {
			products[i].Status = model.ProductInactive
		}
	}
	return products, nil
}

type productBody struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       json.Number `json:"price"`
	Quantity    int         `json:"quantity"`
	Description string      `json:"description,omitempty"`
}

// CreateProduct adds a product and returns its id when the backend reports one.
func (c *Client) CreateProduct(ctx context.Context, p model.NewProduct, img *Image) (string, error) {
	var body any = productBody{
		Name:        p.Name,
		Category:    p.Category,
		Price:       json.Number(p.Price.String()),
		Quantity:    p.Quantity,
		Description: p.Description,
	}
	if img != nil {
		fields := map[string]string{
			"name":     p.Name,
			"category": p.Category,
			"price":    p.Price.String(),
			"quantity": strconv.Itoa(p.Quantity),
		}
		if p.Description != "" {
			fields["description"] = p.Description
		}
		body = multipartBody{
			fields: fields,
			files:  []filePart{{field: "image", filename: img.Filename, contentType: img.ContentType, data: img.Data}},
		}
	}

	env, err := c.do(ctx, http.MethodPost, "/admin/products", body)
	if err != nil {
		return "", err
	}
	var created wireProduct
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &created) == nil {
		return idOf(created.MongoID, created.ID), nil
	}
	return "", nil
}

// UpdateProduct changes the editable fields of a product.
func (c *Client) UpdateProduct(ctx context.Context, id string, u model.ProductUpdate) error {
	_, err := c.do(ctx, http.MethodPut, "/admin/products/"+url.PathEscape(id), struct {
		Price       json.Number `json:"price"`
		Quantity    int         `json:"quantity"`
		Description string      `json:"description"`
	}{json.Number(u.Price.String()), u.Quantity, u.Description})
	return err
}

// DeleteProduct removes a product from the catalog.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/admin/products/"+url.PathEscape(id), nil)
	return err
}
