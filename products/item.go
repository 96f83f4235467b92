package products

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/jrsteele09/go-catalog-admin/internal/utils"
)

// Item is a single product as read, created or updated through the API.
// Category specific fields are nil or empty for other categories.
type Item struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Archived    bool     `json:"archived"`

	// accessories and snacks
	Weight *float64 `json:"weight,omitempty"`

	// beer
	ABV     *float64 `json:"abv,omitempty"`
	Country string   `json:"country,omitempty"`
	Volume  *float64 `json:"volume,omitempty"`
	IBU     *float64 `json:"ibu,omitempty"`
}

// Normalize trims the free-text fields.
func (i Item) Normalize() Item {
	i.Name = strings.TrimSpace(i.Name)
	i.Type = strings.TrimSpace(i.Type)
	i.Description = strings.TrimSpace(i.Description)
	i.ImageURL = strings.TrimSpace(i.ImageURL)
	i.Country = strings.TrimSpace(i.Country)
	return i
}

// Validate checks the item against the rules of its category.
func (i Item) Validate(category Category) error {
	fields := []*validation.FieldRules{
		validation.Field(&i.Name, validation.Required),
		validation.Field(&i.Description, validation.Required),
		validation.Field(&i.Price, validation.NotNil),
		validation.Field(&i.Quantity, validation.NotNil),
	}

	switch category {
	case Snacks:
		fields = append(fields,
			validation.Field(&i.ImageURL, validation.Required),
			validation.Field(&i.Price, atLeast(1.0)),
			validation.Field(&i.Quantity, atLeast(1)),
			validation.Field(&i.Weight, validation.NotNil, atLeast(0.1)),
		)
	case Accessories:
		fields = append(fields,
			validation.Field(&i.ImageURL, validation.Required, is.URL),
			validation.Field(&i.Weight, validation.NotNil),
		)
	case Beer:
		fields = append(fields,
			validation.Field(&i.ImageURL, validation.Required, is.URL),
			validation.Field(&i.ABV, validation.NotNil),
			validation.Field(&i.Country, validation.Required),
			validation.Field(&i.Volume, validation.NotNil),
			validation.Field(&i.IBU, validation.NotNil),
		)
	}

	return validation.ValidateStruct(&i, fields...)
}

// atLeast is validation.Min without the exemption for zero values, so a
// submitted 0 is reported against the limit instead of passing.
func atLeast[T int | float64](threshold T) validation.Rule {
	return validation.By(func(value interface{}) error {
		v, ok := value.(*T)
		if !ok || v == nil {
			return nil
		}
		if *v < threshold {
			return validation.NewError("validation_min_greater_equal_than_required",
				fmt.Sprintf("must be no less than %v", threshold))
		}
		return nil
	})
}

// FromForm builds an Item of category from submitted form values. Numbers
// that do not parse are reported as field errors alongside rule violations.
func FromForm(category Category, values url.Values) (Item, error) {
	parseErrs := validation.Errors{}

	item := Item{
		ID:          values.Get("id"),
		Name:        values.Get("name"),
		Type:        values.Get("type"),
		Description: values.Get("description"),
		ImageURL:    values.Get("image_url"),
		Archived:    formBool(values.Get("archived")),
		Price:       formFloat(values, "price", parseErrs),
		Quantity:    formInt(values, "quantity", parseErrs),
	}

	switch category {
	case Snacks, Accessories:
		item.Weight = formFloat(values, "weight", parseErrs)
	case Beer:
		item.ABV = formFloat(values, "abv", parseErrs)
		item.Country = values.Get("country")
		item.Volume = formFloat(values, "volume", parseErrs)
		item.IBU = formFloat(values, "ibu", parseErrs)
	}
	item = item.Normalize()

	err := item.Validate(category)
	if len(parseErrs) == 0 {
		return item, err
	}

	var ruleErrs validation.Errors
	if errors.As(err, &ruleErrs) {
		for field, e := range ruleErrs {
			if _, ok := parseErrs[field]; !ok {
				parseErrs[field] = e
			}
		}
	}
	return item, parseErrs
}

// FormValue renders a numeric field for an input element, empty when unset.
func FormValue[T float64 | int](v *T) string {
	if v == nil {
		return ""
	}
	switch n := any(utils.Value(v)).(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	}
	return ""
}

// FieldErrors flattens ozzo validation errors to field -> message.
func FieldErrors(err error) map[string]string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	out := make(map[string]string, len(errs))
	for field, e := range errs {
		out[field] = e.Error()
	}
	return out
}

func formFloat(values url.Values, field string, errs validation.Errors) *float64 {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		errs[field] = errors.New("must be a number")
		return nil
	}
	return utils.Ptr(f)
}

func formInt(values url.Values, field string, errs validation.Errors) *int {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs[field] = errors.New("must be a whole number")
		return nil
	}
	return utils.Ptr(n)
}

func formBool(raw string) bool {
	b, _ := strconv.ParseBool(raw)
	return b || raw == "on"
}
