package auth_test

import (
	"strconv"
	"strings"
	"taskManager/internal/auth"
	"taskManager/internal/models"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testUser() *models.User {
	return &models.User{
		Model:    models.Model{ID: 42},
		Username: "alice",
		Email:    "alice@example.com",
	}
}

// TestPasswordHasher_HashAndVerify тестирует соль и проверку пароля
func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := auth.NewPasswordHasherWithCost(bcrypt.MinCost)

	first, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	second, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "соль должна отличаться")
	assert.NotContains(t, first, "s3cret-pass")
	assert.True(t, hasher.Verify("s3cret-pass", first))
	assert.True(t, hasher.Verify("s3cret-pass", second))
	assert.False(t, hasher.Verify("wrong-pass", first))
	assert.False(t, hasher.Verify("s3cret-pass", "not-a-hash"))
}

// TestPasswordHasher_OutOfRangeCost тестирует замену недопустимой стоимости на DefaultCost
func TestPasswordHasher_OutOfRangeCost(t *testing.T) {
	for _, requested := range []int{0, bcrypt.MaxCost + 1} {
		hash, err := auth.NewPasswordHasherWithCost(requested).Hash("pw")
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, auth.DefaultCost, cost, "стоимость %d", requested)
	}
}

func TestPasswordHasher_TooLong(t *testing.T) {
	hasher := auth.NewPasswordHasherWithCost(bcrypt.MinCost)

	_, err := hasher.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, auth.ErrPasswordTooLong)
}

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	_, err := auth.NewTokenIssuer(nil)
	assert.ErrorIs(t, err, auth.ErrEmptySecret)
}

// TestTokenIssuer_GenerateToken тестирует набор claims
func TestTokenIssuer_GenerateToken(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	issuer, err := auth.NewTokenIssuer(testSecret,
		auth.WithTTL(2*time.Hour),
		auth.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	token, err := issuer.GenerateToken(testUser())
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour), token.ExpiresAt)

	// разбираем без проверки времени, чтобы посмотреть payload целиком
	raw := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token.Value, raw, func(*jwt.Token) (any, error) {
		return testSecret, nil
	}, jwt.WithoutClaimsValidation())
	require.NoError(t, err)

	assert.Equal(t, "42", raw["sub"])
	assert.Equal(t, "alice@example.com", raw["email"])
	assert.Equal(t, token.ID, raw["jti"])
	assert.Equal(t, float64(now.Add(2*time.Hour).Unix()), raw["exp"])
	assert.NotContains(t, raw, "iss")
	assert.NotContains(t, raw, "aud")
}

func TestTokenIssuer_UniqueJTI(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	issuer, err := auth.NewTokenIssuer(testSecret, auth.WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	first, err := issuer.GenerateToken(testUser())
	require.NoError(t, err)
	second, err := issuer.GenerateToken(testUser())
	require.NoError(t, err)

	assert.Equal(t, first.ExpiresAt, second.ExpiresAt)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.Value, second.Value)
}

func TestTokenIssuer_ParseToken(t *testing.T) {
	issuer, err := auth.NewTokenIssuer(testSecret, auth.WithIssuer("taskManager"), auth.WithAudience("api"))
	require.NoError(t, err)

	token, err := issuer.GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := issuer.ParseToken(token.Value)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, strconv.FormatInt(42, 10), claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, token.ID, claims.ID)
}

func TestTokenIssuer_ParseToken_Errors(t *testing.T) {
	now := time.Now()
	issuer, err := auth.NewTokenIssuer(testSecret, auth.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	token, err := issuer.GenerateToken(testUser())
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other, err := auth.NewTokenIssuer([]byte("another-secret-another-secret-xx"))
		require.NoError(t, err)

		_, err = other.ParseToken(token.Value)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later, err := auth.NewTokenIssuer(testSecret, auth.WithClock(func() time.Time {
			return now.Add(auth.DefaultTokenTTL + time.Minute)
		}))
		require.NoError(t, err)

		_, err = later.ParseToken(token.Value)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.ParseToken("not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		strict, err := auth.NewTokenIssuer(testSecret, auth.WithIssuer("someone-else"))
		require.NoError(t, err)

		_, err = strict.ParseToken(token.Value)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
