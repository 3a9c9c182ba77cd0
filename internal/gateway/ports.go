package gateway

import "context"

// Identity is the resolved caller identity.
type Identity struct {
	UserID string
}

// TokenVerifier checks a caller token. Identity and credential storage live
// outside this service.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// KeyStore returns per-user provider credentials. An empty key means the
// user has none stored for that provider.
type KeyStore interface {
	UserAPIKey(ctx context.Context, userID, provider string) (string, error)
}

// UsageTracker accepts usage records. Nothing is read back; failures are
// logged and never fail a request.
type UsageTracker interface {
	Track(ctx context.Context, userID, kind string, count int, cost float64, provider string) error
}

// PublicCache is the persistent cross-user translation cache, keyed by
// content hash of (text, target language).
type PublicCache interface {
	GetPublicCache(ctx context.Context, text, targetLanguage string) (translation, pronunciation string, found bool, err error)
	SetPublicCache(ctx context.Context, text, targetLanguage, translation, pronunciation string) error
}
