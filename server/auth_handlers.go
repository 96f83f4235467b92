package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-catalog-admin/auth"
	"github.com/jrsteele09/go-catalog-admin/catalog"
	apperrors "github.com/jrsteele09/go-catalog-admin/internal/errors"
	"github.com/jrsteele09/go-catalog-admin/internal/i18n"
)

// signInForm preserves the email on error.
type signInForm struct {
	Email string
}

// SignInPageHandler displays the sign-in page (GET /auth/sign-in)
func (s *Server) SignInPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Sessions.IsAuthenticated() {
			http.Redirect(w, r, RouteProducts, http.StatusSeeOther)
			return
		}
		s.render(w, "sign_in.html", http.StatusOK, s.page(r, i18n.MsgSignIn, signInForm{}))
	}
}

// SignInSubmissionHandler processes the sign-in form (POST /auth/sign-in)
func (s *Server) SignInSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		creds := auth.Credentials{
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
		}
		session, err := s.deps.Auth.SignIn(r.Context(), creds)
		if err != nil {
			status, message := s.signInFailure(r.Context(), err)
			data := s.page(r, i18n.MsgSignIn, signInForm{Email: creds.Email})
			data.Alert = errorAlert(message)
			s.render(w, "sign_in.html", status, data)
			return
		}

		if s.deps.Refresh != nil {
			s.deps.Refresh.Track(session.ExpiresAt)
		}
		http.Redirect(w, r, RouteProducts, http.StatusSeeOther)
	}
}

func (s *Server) signInFailure(ctx context.Context, err error) (int, string) {
	var apiErr *catalog.APIError
	switch {
	case errors.Is(err, apperrors.ErrInsufficientPermissions):
		return http.StatusForbidden, i18n.T(ctx, i18n.MsgNoPermissions)
	case errors.As(err, &apiErr) && apiErr.Message() != "":
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			return http.StatusUnauthorized, apiErr.Message()
		}
		return http.StatusBadGateway, apiErr.Message()
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, i18n.T(ctx, i18n.MsgInvalidCredentials)
	}
	s.logger.Err(err).Msg("sign-in failed")
	return http.StatusBadGateway, i18n.T(ctx, i18n.MsgSomethingWentWrong)
}

// SignOutHandler clears the session (POST /auth/sign-out)
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Refresh != nil {
			s.deps.Refresh.Forget()
		}
		if err := s.deps.Auth.SignOut(); err != nil {
			s.logger.Err(err).Msg("sign-out left persisted tokens behind")
		}
		http.Redirect(w, r, RouteSignIn, http.StatusSeeOther)
	}
}
