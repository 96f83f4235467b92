package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/jrsteele09/go-catalog-admin/internal/errors"
	"github.com/jrsteele09/go-catalog-admin/internal/i18n"
	"github.com/jrsteele09/go-catalog-admin/products"
)

type productsView struct {
	Items      []products.Product
	Total      int
	Number     int
	Pages      int
	Categories []products.Category
	Failed     bool
}

type productForm struct {
	Category    products.Category
	Item        products.Item
	Errors      map[string]string
	Action      string
	Create      bool
	Unavailable bool
}

// ProductsPageHandler lists one page of products (GET /products/get)
func (s *Server) ProductsPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := products.ParsePage(r.URL.Query().Get("page"))
		view := productsView{Number: number, Pages: 1, Categories: products.Categories()}

		page, err := s.deps.Catalog.ListProducts(r.Context(), number, products.PageSize)
		if err != nil {
			s.logger.Err(err).Int("page", number).Msg("listing products")
			view.Failed = true
			data := s.page(r, i18n.MsgProducts, view)
			data.Alert = errorAlert(data.T(i18n.MsgErrorLoadingData))
			s.render(w, "products.html", http.StatusBadGateway, data)
			return
		}

		view.Items = page.Items
		view.Total = page.Info.Total
		view.Pages = page.Pages()
		s.render(w, "products.html", http.StatusOK, s.page(r, i18n.MsgProducts, view))
	}
}

// ProductPageHandler shows the edit form of a product (GET /products/{category}/{id})
func (s *Server) ProductPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, ok := categoryParam(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		form := productForm{Category: category, Action: r.URL.Path}

		item, err := s.deps.Catalog.GetProduct(r.Context(), category, id)
		if err != nil {
			s.logger.Err(err).Str("category", category.String()).Str("id", id).Msg("loading product")
			form.Unavailable = true
			data := s.page(r, i18n.MsgProducts, form)
			data.Alert = errorAlert(data.T(i18n.MsgProductNotAvailable))
			status := http.StatusBadGateway
			if errors.Is(err, apperrors.ErrNotFound) {
				status = http.StatusNotFound
			}
			s.render(w, "product_form.html", status, data)
			return
		}

		form.Item = *item
		form.Item.ID = id
		s.render(w, "product_form.html", http.StatusOK, s.page(r, i18n.MsgProducts, form))
	}
}

// ProductUpdateSubmissionHandler saves the edit form (POST /products/{category}/{id})
func (s *Server) ProductUpdateSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, ok := categoryParam(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")

		form, valid := s.parseProductForm(w, r, category, false)
		if !valid {
			return
		}
		form.Item.ID = id

		data := s.page(r, i18n.MsgProducts, form)
		if err := s.deps.Catalog.UpdateProduct(r.Context(), category, id, form.Item); err != nil {
			s.logger.Err(err).Str("category", category.String()).Str("id", id).Msg("updating product")
			data.Alert = errorAlert(data.T(i18n.MsgSaveFailed))
			s.render(w, "product_form.html", http.StatusBadGateway, data)
			return
		}
		data.Alert = successAlert(data.T(i18n.MsgSaved))
		s.render(w, "product_form.html", http.StatusOK, data)
	}
}

// ProductCreatePageHandler shows an empty form (GET /products/{category}/create)
func (s *Server) ProductCreatePageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, ok := categoryParam(w, r)
		if !ok {
			return
		}
		form := productForm{Category: category, Action: r.URL.Path, Create: true}
		s.render(w, "product_form.html", http.StatusOK, s.page(r, i18n.MsgProducts, form))
	}
}

// ProductCreateSubmissionHandler creates a product (POST /products/{category}/create)
func (s *Server) ProductCreateSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, ok := categoryParam(w, r)
		if !ok {
			return
		}

		form, valid := s.parseProductForm(w, r, category, true)
		if !valid {
			return
		}

		data := s.page(r, i18n.MsgProducts, form)
		if _, err := s.deps.Catalog.CreateProduct(r.Context(), category, form.Item); err != nil {
			s.logger.Err(err).Str("category", category.String()).Msg("creating product")
			data.Alert = errorAlert(data.T(i18n.MsgSaveFailed))
			s.render(w, "product_form.html", http.StatusBadGateway, data)
			return
		}
		data.Alert = successAlert(data.T(i18n.MsgSaved))
		s.render(w, "product_form.html", http.StatusCreated, data)
	}
}

// parseProductForm renders the form with field errors and reports false when
// the submission is not valid.
func (s *Server) parseProductForm(w http.ResponseWriter, r *http.Request, category products.Category, create bool) (productForm, bool) {
	form := productForm{Category: category, Action: r.URL.Path, Create: create}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return form, false
	}

	item, err := products.FromForm(category, r.PostForm)
	form.Item = item
	if err != nil {
		form.Errors = products.FieldErrors(err)
		s.render(w, "product_form.html", http.StatusUnprocessableEntity, s.page(r, i18n.MsgProducts, form))
		return form, false
	}
	return form, true
}

func categoryParam(w http.ResponseWriter, r *http.Request) (products.Category, bool) {
	category, err := products.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		http.NotFound(w, r)
		return "", false
	}
	return category, true
}
