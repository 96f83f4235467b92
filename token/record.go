package token

import (
	"strconv"

	apperrors "github.com/jrsteele09/go-catalog-admin/internal/errors"
)

// Record is the persisted token state. Without an access token the refresh
// token and expiry are meaningless.
type Record struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64 // epoch seconds, 0 when absent or unparseable
}

func (r Record) HasAccessToken() bool {
	return r.AccessToken != ""
}

// Complete reports whether both tokens are present.
func (r Record) Complete() bool {
	return r.AccessToken != "" && r.RefreshToken != ""
}

// Load reads the three record entries from store.
func Load(store Store) (Record, error) {
	var rec Record
	var err error

	if rec.AccessToken, _, err = store.Get(AccessTokenKey); err != nil {
		return Record{}, apperrors.Wrapf(apperrors.Join(apperrors.ErrStorage, err), "reading %s", AccessTokenKey)
	}
	if rec.RefreshToken, _, err = store.Get(RefreshTokenKey); err != nil {
		return Record{}, apperrors.Wrapf(apperrors.Join(apperrors.ErrStorage, err), "reading %s", RefreshTokenKey)
	}

	expiry, _, err := store.Get(ExpirationDateKey)
	if err != nil {
		return Record{}, apperrors.Wrapf(apperrors.Join(apperrors.ErrStorage, err), "reading %s", ExpirationDateKey)
	}
	rec.ExpiresAt = parseExpiry(expiry)

	return rec, nil
}

// Persist writes the record. The refresh token is only written when present
// so a refresh response without rotation keeps the stored one.
func Persist(store Store, accessToken, refreshToken string, expiresAt int64) error {
	if err := store.Set(AccessTokenKey, accessToken); err != nil {
		return apperrors.Wrapf(apperrors.Join(apperrors.ErrStorage, err), "writing %s", AccessTokenKey)
	}
	if refreshToken != "" {
		if err := store.Set(RefreshTokenKey, refreshToken); err != nil {
			return apperrors.Wrapf(apperrors.Join(apperrors.ErrStorage, err), "writing %s", RefreshTokenKey)
		}
	}
	if err := store.Set(ExpirationDateKey, strconv.FormatInt(expiresAt, 10)); err != nil {
		return apperrors.Wrapf(apperrors.Join(apperrors.ErrStorage, err), "writing %s", ExpirationDateKey)
	}
	return nil
}

// Clear removes every record entry, attempting all of them.
func Clear(store Store) error {
	var errs []error
	for _, key := range []string{AccessTokenKey, RefreshTokenKey, ExpirationDateKey} {
		if err := store.Remove(key); err != nil {
			errs = append(errs, apperrors.Wrapf(err, "removing %s", key))
		}
	}
	if len(errs) > 0 {
		return apperrors.Join(append([]error{apperrors.ErrStorage}, errs...)...)
	}
	return nil
}

func parseExpiry(value string) int64 {
	if value == "" {
		return 0
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	// Tolerate values written as floats, e.g. "1767225600.0".
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}
