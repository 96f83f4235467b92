// Package products describes catalog products as the console edits them.
package products

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/jrsteele09/go-catalog-admin/internal/errors"
)

// PageSize is the number of products listed per page.
const PageSize = 20

// Category is the product category as it appears in console URLs.
type Category string

const (
	Beer        Category = "beer"
	Accessories Category = "accessories"
	Snacks      Category = "snacks"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{Beer, Accessories, Snacks}
}

// ParseCategory accepts a URL segment or an API resource name.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beer", "beers":
		return Beer, nil
	case "accessories", "accessory":
		return Accessories, nil
	case "snacks", "snack":
		return Snacks, nil
	}
	return "", apperrors.Wrapf(apperrors.ErrNotFound, "category %q", s)
}

// Resource is the path segment of the category in the catalog API.
func (c Category) Resource() string {
	if c == Accessories {
		return "accessory"
	}
	return string(c)
}

func (c Category) String() string {
	return string(c)
}

// ParsePage reads the 1-based page query parameter, defaulting to 1.
func ParsePage(s string) int {
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Product is one row of the product listing.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	AccessLevel string  `json:"accessLevel,omitempty"`
}

// Link is the console path of the product's edit page.
func (p Product) Link() string {
	category, err := ParseCategory(p.Category)
	if err != nil {
		return fmt.Sprintf("/products/%s/%s", p.Category, p.ID)
	}
	return fmt.Sprintf("/products/%s/%s", category, p.ID)
}

// Page is one page of the admin product listing.
type Page struct {
	Info struct {
		Total int `json:"total"`
	} `json:"info"`
	Items []Product `json:"items"`
}

// Pages returns the number of pages needed for Info.Total products.
func (p Page) Pages() int {
	if p.Info.Total <= 0 {
		return 1
	}
	return (p.Info.Total + PageSize - 1) / PageSize
}
