package auth

import "time"

// IssuerOption меняет настройки TokenIssuer при создании
type IssuerOption func(*TokenIssuer)

func WithTTL(ttl time.Duration) IssuerOption {
	if ttl <= 0 {
		return nil
	}
	return func(i *TokenIssuer) {
		i.ttl = ttl
	}
}

func WithIssuer(issuer string) IssuerOption {
	if issuer == "" {
		return nil
	}
	return func(i *TokenIssuer) {
		i.issuer = issuer
	}
}

func WithAudience(audience string) IssuerOption {
	if audience == "" {
		return nil
	}
	return func(i *TokenIssuer) {
		i.audience = audience
	}
}

func WithClock(now func() time.Time) IssuerOption {
	if now == nil {
		return nil
	}
	return func(i *TokenIssuer) {
		i.now = now
	}
}
