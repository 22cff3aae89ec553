package auth

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssuer_IssueAndParse(t *testing.T) {
	iss := NewIssuer(testSecret, "wathq-test")

	token, issued, err := iss.Issue(Claims{
		UserID:      "u-1",
		TenantID:    "t-1",
		Kind:        tenant.KindUser,
		Role:        "admin",
		Permissions: []string{"employees:read"},
	}, TokenAccess, time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.Equal(t, "u-1", issued.Subject)

	claims, err := iss.Parse(token, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, claims.ID)

	actor := claims.Actor()
	assert.Equal(t, "t-1", actor.TenantID)
	assert.True(t, actor.Can("employees:read"))
}

func TestIssuer_ParseRejects(t *testing.T) {
	iss := NewIssuer(testSecret, "wathq-test")
	refresh, _, err := iss.Issue(Claims{UserID: "u-1", Kind: tenant.KindUser}, TokenRefresh, time.Minute)
	require.NoError(t, err)

	t.Run("wrong type", func(t *testing.T) {
		_, err := iss.Parse(refresh, TokenAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewIssuer("ffffffffffffffffffffffffffffffff", "wathq-test")
		_, err := other.Parse(refresh, TokenRefresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewIssuer(testSecret, "someone-else")
		_, err := other.Parse(refresh, TokenRefresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewIssuer(testSecret, "wathq-test")
		later.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		_, err := later.Parse(refresh, TokenRefresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := iss.Parse("not.a.token", TokenAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("Secr3tPass")
	require.NoError(t, err)
	assert.True(t, VerifyPassword("Secr3tPass", hash))
	assert.False(t, VerifyPassword("secr3tpass", hash))

	assert.NoError(t, ValidatePasswordStrength("Secr3tPass"))
	assert.ErrorIs(t, ValidatePasswordStrength("short1A"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePasswordStrength("alllowercase1"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePasswordStrength("NoDigitsHere"), ErrWeakPassword)
}

func TestTOTP(t *testing.T) {
	enr, err := GenerateTOTP("Wathq", "user@example.sa")
	require.NoError(t, err)
	assert.NotEmpty(t, enr.Secret)
	assert.Contains(t, enr.URL, "otpauth://totp/")

	now := time.Now()
	code, err := totp.GenerateCode(enr.Secret, now)
	require.NoError(t, err)

	assert.True(t, ValidateTOTPAt(code, enr.Secret, now))
	assert.True(t, ValidateTOTPAt(code, enr.Secret, now.Add(30*time.Second)))
	assert.False(t, ValidateTOTPAt(code, enr.Secret, now.Add(5*time.Minute)))
	assert.False(t, ValidateTOTPAt("", enr.Secret, now))
	assert.False(t, ValidateTOTPAt(code, "", now))
}
