package token

// Keys of the persisted token record.
const (
	AccessTokenKey    = "access_token"
	RefreshTokenKey   = "refresh_token"
	ExpirationDateKey = "expiration_date"
)

// Store is the key-value persistence backing the token record. Values must
// survive a console restart for durable implementations.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// Pair is the result of a sign-in or refresh call.
type Pair struct {
	AccessToken  string
	RefreshToken string // Empty when the backend did not rotate the refresh token
}
