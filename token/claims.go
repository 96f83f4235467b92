package token

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-catalog-admin/internal/errors"
	"github.com/jrsteele09/go-catalog-admin/sessions"
)

// ValidationError reports an access token whose claims cannot back a session.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid access token: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == apperrors.ErrInvalidToken
}

// accessClaims is the claim shape the console requires from access tokens.
type accessClaims struct {
	jwtlib.RegisteredClaims
	Email    string `json:"email,omitempty"`
	RoleType string `json:"role_type"`
}

func (c *accessClaims) checkShape() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ExpiresAt, validation.By(func(value interface{}) error {
			exp, _ := value.(*jwtlib.NumericDate)
			if exp == nil || exp.Unix() <= 0 {
				return errors.New("must be a positive epoch")
			}
			return nil
		})),
		validation.Field(&c.RoleType, validation.Required),
	)
}

// Decoder turns raw access tokens into session claims. With a key set it
// verifies the signature first, otherwise claims are decoded as-is.
type Decoder struct {
	keySet oidc.KeySet
}

func NewDecoder(keySet oidc.KeySet) *Decoder {
	return &Decoder{keySet: keySet}
}

// NewRemoteDecoder verifies against the JWKS at jwksURL, or only decodes when
// jwksURL is empty.
func NewRemoteDecoder(ctx context.Context, jwksURL string) *Decoder {
	if jwksURL == "" {
		return NewDecoder(nil)
	}
	return NewDecoder(oidc.NewRemoteKeySet(ctx, jwksURL))
}

// Decode validates rawToken and returns its claims. Every failure is a
// *ValidationError.
func (d *Decoder) Decode(ctx context.Context, rawToken string) (*sessions.Session, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, &ValidationError{Err: apperrors.ErrMissingAccessToken}
	}

	if d.keySet != nil {
		if _, err := d.keySet.VerifySignature(ctx, rawToken); err != nil {
			return nil, &ValidationError{Err: fmt.Errorf("verifying signature: %w", err)}
		}
	}

	claims := &accessClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil, &ValidationError{Err: fmt.Errorf("parsing token: %w", err)}
	}

	if err := claims.checkShape(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	session := &sessions.Session{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Role:      sessions.RoleType(claims.RoleType),
		ExpiresAt: claims.ExpiresAt.Unix(),
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Unix()
	}
	return session, nil
}
