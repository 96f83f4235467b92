// Package i18n negotiates the console language and translates user-visible messages.
package i18n

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys shown to the administrator.
const (
	MsgSignIn              = "Sign in"
	MsgSignOut             = "Sign out"
	MsgEmail               = "Email"
	MsgPassword            = "Password"
	MsgNoPermissions       = "You don't have necessary permissions"
	MsgSomethingWentWrong  = "Something went wrong"
	MsgInvalidCredentials  = "Invalid email or password"
	MsgProducts            = "Products"
	MsgSave                = "Save"
	MsgSaved               = "Saved"
	MsgSaveFailed          = "Could not save the product"
	MsgErrorLoadingData    = "Error loading data"
	MsgProductNotAvailable = "Product information is not available."
	MsgAddProduct          = "Add %s"
)

// LangCookie lets the administrator pin a language across requests.
const LangCookie = "lang"

var (
	supported = []language.Tag{language.English, language.Russian}
	matcher   = language.NewMatcher(supported)
	messages  = newCatalog()
)

type ctxKey struct{}

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	ru := map[string]string{
		MsgSignIn:              "Вход",
		MsgSignOut:             "Выход",
		MsgEmail:               "Эл. почта",
		MsgPassword:            "Пароль",
		MsgNoPermissions:       "У вас нет необходимых прав",
		MsgSomethingWentWrong:  "Что-то пошло не так",
		MsgInvalidCredentials:  "Неверная почта или пароль",
		MsgProducts:            "Товары",
		MsgSave:                "Сохранить",
		MsgSaved:               "Сохранено",
		MsgSaveFailed:          "Не удалось сохранить товар",
		MsgErrorLoadingData:    "Ошибка загрузки данных",
		MsgProductNotAvailable: "Информация о товаре недоступна.",
		MsgAddProduct:          "Добавить %s",
	}
	for key, value := range ru {
		_ = b.SetString(language.Russian, key, value)
	}
	return b
}

// Supported returns the languages the console is translated into.
func Supported() []language.Tag {
	return supported
}

// Negotiate picks a supported language from an explicit choice (cookie or
// query) and the Accept-Language header, in that order.
func Negotiate(r *http.Request) language.Tag {
	var preferred []string
	if lang := r.URL.Query().Get(LangCookie); lang != "" {
		preferred = append(preferred, lang)
	}
	if c, err := r.Cookie(LangCookie); err == nil && c.Value != "" {
		preferred = append(preferred, c.Value)
	}
	preferred = append(preferred, r.Header.Get("Accept-Language"))

	tag, _ := language.MatchStrings(matcher, preferred...)
	base, _ := tag.Base()
	for _, s := range supported {
		if b, _ := s.Base(); b == base {
			return s
		}
	}
	return language.English
}

func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, ctxKey{}, tag)
}

// FromContext returns the negotiated language, English when none was set.
func FromContext(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(ctxKey{}).(language.Tag); ok {
		return tag
	}
	return language.English
}

// Code returns the two-letter code sent to the catalog API as X-Lang.
func Code(ctx context.Context) string {
	base, _ := FromContext(ctx).Base()
	return base.String()
}

func Printer(ctx context.Context) *message.Printer {
	return message.NewPrinter(FromContext(ctx), message.Catalog(messages))
}

// T translates key for the language carried by ctx.
func T(ctx context.Context, key string, args ...any) string {
	return Printer(ctx).Sprintf(key, args...)
}

// Middleware stores the negotiated language on the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithLanguage(r.Context(), Negotiate(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
