// ABOUTME: Products panel: active and deactivated catalog views, create/edit forms and deletion
// ABOUTME: Forms are validated locally; a valid submission becomes a pending action

package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/2389/lot-admin/internal/model"
	"github.com/2389/lot-admin/internal/panel"
	"github.com/2389/lot-admin/internal/session"
)

type productRow struct {
	model.Product
	ImageURL string
	Actions  []rowAction
}

type productsTableData struct {
	listState
	View string
	Rows []productRow
}

type productsPageData struct {
	pageData
	Table productsTableData
}

type productFormData struct {
	pageData
	Product    *model.Product // nil when creating
	Form       model.ProductForm
	Errors     model.ValidationErrors
	Categories []string
	MaxImageMB int64
}

func productsKey(sessionID string, status model.ProductStatus) string {
	return sessionID + ":" + string(status)
}

// productView maps the view query parameter onto a catalog status.
func productView(r *http.Request) model.ProductStatus {
	if r.URL.Query().Get("view") == "deactivated" {
		return model.ProductInactive
	}
	return model.ProductActive
}

func (c *Console) handleProductsPage(w http.ResponseWriter, r *http.Request) {
	status := productView(r)
	data := productsPageData{pageData: c.enter(w, r, SectionProducts, "Products")}

	products, err := c.products.Load(r.Context(), productsKey(getSession(r).ID, status), c.productFetch(r, status))

	table, ok := c.productsTable(w, r, status, products, err)
	if !ok {
		return
	}
	data.Table = table
	c.renderPage(w, http.StatusOK, "products.html", data)
}

func (c *Console) handleProductsRows(w http.ResponseWriter, r *http.Request) {
	status := productView(r)
	products, err := c.cachedProducts(r, status)
	table, ok := c.productsTable(w, r, status, products, err)
	if !ok {
		return
	}
	c.renderPartial(w, http.StatusOK, "products_table", table)
}

func (c *Console) productFetch(r *http.Request, status model.ProductStatus) func(context.Context) ([]model.Product, error) {
	if status == model.ProductInactive {
		return c.api(r).ListDeactivatedProducts
	}
	return c.api(r).ListProducts
}

func (c *Console) cachedProducts(r *http.Request, status model.ProductStatus) ([]model.Product, error) {
	return cached(r.Context(), c.products, productsKey(getSession(r).ID, status), c.productFetch(r, status))
}

func (c *Console) productsTable(w http.ResponseWriter, r *http.Request, status model.ProductStatus, products []model.Product, err error) (productsTableData, bool) {
	table := productsTableData{listState: listStateFrom(r), View: string(status)}
	if err != nil {
		if table.LoadError = c.loadFailed(w, r, err, "Failed to load products"); table.LoadError == "" {
			return table, false
		}
		return table, true
	}
	for _, p := range panel.Filter(products, table.Query) {
		table.Rows = append(table.Rows, productRow{
			Product:  p,
			ImageURL: c.imageURL(p.Image),
			Actions:  actionsFor(model.ProductLifecycle, p.Status),
		})
	}
	return table, true
}

// imageURL resolves a product image reference against the backend origin.
// Relative references like "/uploads/x.png" are served by the backend, not the console.
func (c *Console) imageURL(ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	base, err := url.Parse(c.backend.BaseURL())
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// findProduct looks a product up in the active catalog.
func (c *Console) findProduct(w http.ResponseWriter, r *http.Request) (model.Product, bool) {
	products, err := c.cachedProducts(r, model.ProductActive)
	if err != nil {
		if msg := c.loadFailed(w, r, err, "Failed to load products"); msg != "" {
			http.Error(w, msg, http.StatusBadGateway)
		}
		return model.Product{}, false
	}
	id := r.PathValue("id")
	p, ok := find(products, func(p model.Product) bool { return p.ID == id })
	if !ok {
		http.Error(w, "Product not found", http.StatusNotFound)
	}
	return p, ok
}

func (c *Console) renderProductForm(w http.ResponseWriter, r *http.Request, status int, data productFormData) {
	data.pageData = c.enter(w, r, SectionProducts, "New product")
	if data.Product != nil {
		data.Title = "Edit " + data.Product.Name
	}
	data.Categories = model.Categories
	data.MaxImageMB = c.config.MaxImageBytes >> 20
	c.renderPage(w, status, "product_form.html", data)
}

func (c *Console) handleProductNew(w http.ResponseWriter, r *http.Request) {
	c.renderProductForm(w, r, http.StatusOK, productFormData{})
}

// handleProductCreate validates the form and optional image, then proposes the creation.
func (c *Console) handleProductCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.config.MaxImageBytes+1<<20)
	if !c.checkForm(w, r, c.config.MaxImageBytes) {
		return
	}
	form := productFormFrom(r)

	var errs model.ValidationErrors
	product, err := model.ValidateNewProduct(form)
	if err != nil && !errors.As(err, &errs) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, imgErr := c.readImage(r)
	if imgErr != "" {
		errs = append(errs, model.FieldError{Field: "image", Message: imgErr})
	}
	if len(errs) > 0 {
		c.renderProductForm(w, r, http.StatusUnprocessableEntity, productFormData{Form: form, Errors: errs})
		return
	}

	c.propose(w, r, session.CreateProduct(product, img))
}

// readImage returns the uploaded image, or a message for the form when it is not acceptable.
func (c *Console) readImage(r *http.Request) (*session.Image, string) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, ""
	}
	if err != nil {
		return nil, "Image could not be read"
	}
	defer file.Close()

	if header.Size > c.config.MaxImageBytes {
		return nil, fmt.Sprintf("Image must be at most %d MB", c.config.MaxImageBytes>>20)
	}
	data, err := io.ReadAll(io.LimitReader(file, c.config.MaxImageBytes+1))
	if err != nil {
		return nil, "Image could not be read"
	}
	if int64(len(data)) > c.config.MaxImageBytes {
		return nil, fmt.Sprintf("Image must be at most %d MB", c.config.MaxImageBytes>>20)
	}

	contentType := imageContentType(header, data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "File must be an image"
	}
	return &session.Image{Filename: header.Filename, ContentType: contentType, Data: data}, ""
}

func imageContentType(header *multipart.FileHeader, data []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return http.DetectContentType(data)
}

func (c *Console) handleProductEdit(w http.ResponseWriter, r *http.Request) {
	p, ok := c.findProduct(w, r)
	if !ok {
		return
	}
	c.renderProductForm(w, r, http.StatusOK, productFormData{
		Product: &p,
		Form: model.ProductForm{
			Name:        p.Name,
			Category:    p.Category,
			Price:       p.Price.String(),
			Quantity:    strconv.Itoa(p.Quantity),
			Description: p.Description,
		},
	})
}

// handleProductUpdate validates the editable fields and proposes the edit.
func (c *Console) handleProductUpdate(w http.ResponseWriter, r *http.Request) {
	if !c.checkForm(w, r, 0) {
		return
	}
	p, ok := c.findProduct(w, r)
	if !ok {
		return
	}

	form := productFormFrom(r)
	form.Name, form.Category = p.Name, p.Category

	update, err := model.ValidateProductUpdate(form)
	var errs model.ValidationErrors
	if errors.As(err, &errs) {
		c.renderProductForm(w, r, http.StatusUnprocessableEntity, productFormData{Product: &p, Form: form, Errors: errs})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c.propose(w, r, session.UpdateProduct(p.ID, p.Name, update))
}

func (c *Console) handleProductDelete(w http.ResponseWriter, r *http.Request) {
	if !c.checkForm(w, r, 0) {
		return
	}
	p, ok := c.findProduct(w, r)
	if !ok {
		return
	}
	if !model.ProductLifecycle.Allowed(p.Status, model.ActionDelete) {
		http.Error(w, "That product is already deactivated", http.StatusConflict)
		return
	}
	c.propose(w, r, session.Transition(session.KindProductDelete, p.ID, p.Name))
}

func productFormFrom(r *http.Request) model.ProductForm {
	return model.ProductForm{
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Price:       r.FormValue("price"),
		Quantity:    r.FormValue("quantity"),
		Description: r.FormValue("description"),
	}
}
