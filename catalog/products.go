package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-catalog-admin/products"
)

// ListProducts returns one page of products, archived ones included.
func (c *Client) ListProducts(ctx context.Context, page, size int) (*products.Page, error) {
	query := url.Values{
		"page":            {strconv.Itoa(page)},
		"size":            {strconv.Itoa(size)},
		"includeArchived": {"true"},
	}
	var out products.Page
	if err := c.do(ctx, c.authorized, http.MethodGet, "/api/products", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, category products.Category, id string) (*products.Item, error) {
	var out products.Item
	if err := c.do(ctx, c.authorized, http.MethodGet, itemPath(category, id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, category products.Category, id string, item products.Item) error {
	item.ID = ""
	item.Type = ""
	return c.do(ctx, c.authorized, http.MethodPut, itemPath(category, id), nil, item, nil)
}

// CreateProduct creates item and returns the created product as echoed by
// the API.
func (c *Client) CreateProduct(ctx context.Context, category products.Category, item products.Item) (*products.Item, error) {
	item.ID = ""
	if item.Type == "" {
		item.Type = category.Resource()
	}
	var out products.Item
	if err := c.do(ctx, c.authorized, http.MethodPost, "/api/"+category.Resource(), nil, item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func itemPath(category products.Category, id string) string {
	return "/api/" + category.Resource() + "/" + url.PathEscape(id)
}
