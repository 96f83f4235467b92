package catalog

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/jrsteele09/go-catalog-admin/internal/errors"
	"github.com/jrsteele09/go-catalog-admin/internal/utils"
	"github.com/jrsteele09/go-catalog-admin/token"
)

const (
	signInPath        = "/api/auth/sign-in"
	refreshTokensPath = "/api/auth/refresh-tokens"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshTokensRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type tokensResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
}

func (r tokensResponse) pair() (*token.Pair, error) {
	if r.AccessToken == "" {
		return nil, apperrors.ErrMissingAccessToken
	}
	return &token.Pair{AccessToken: r.AccessToken, RefreshToken: utils.Value(r.RefreshToken)}, nil
}

// SignIn exchanges the administrator's credentials for a token pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (*token.Pair, error) {
	var resp tokensResponse
	err := c.do(ctx, c.public, http.MethodPost, signInPath, nil, signInRequest{Email: email, Password: password}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest) {
			return nil, apperrors.Join(apperrors.ErrInvalidCredentials, err)
		}
		return nil, err
	}
	return resp.pair()
}

// RefreshTokens exchanges the current pair for a new one. The returned
// refresh token is empty when the API did not rotate it.
func (c *Client) RefreshTokens(ctx context.Context, accessToken, refreshToken string) (*token.Pair, error) {
	var resp tokensResponse
	err := c.do(ctx, c.public, http.MethodPost, refreshTokensPath, nil,
		refreshTokensRequest{AccessToken: accessToken, RefreshToken: refreshToken}, &resp)
	if err != nil {
		return nil, apperrors.Join(apperrors.ErrRefreshFailed, err)
	}
	return resp.pair()
}
