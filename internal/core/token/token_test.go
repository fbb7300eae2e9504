package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		Secret: []byte("test-secret"),
		Issuer: "orders-api",
		TTL:    time.Hour,
		Now:    func() time.Time { return fixedNow },
	}
}

func TestParseBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "case insensitive scheme", header: "bearer abc", want: "abc"},
		{name: "surrounding space", header: "  Bearer   abc  ", want: "abc"},
		{name: "empty", header: "", wantErr: true},
		{name: "scheme only", header: "Bearer", wantErr: true},
		{name: "scheme with blank token", header: "Bearer    ", wantErr: true},
		{name: "wrong scheme", header: "Token abc", wantErr: true},
		{name: "no scheme", header: "abc.def.ghi", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearer(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedCredential)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIssueAndVerify(t *testing.T) {
	cfg := testConfig()
	issuer, err := NewIssuer(cfg)
	require.NoError(t, err)
	verifier, err := NewVerifier(cfg)
	require.NoError(t, err)

	raw, exp, err := issuer.Issue("u1")
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(time.Hour), exp)

	claims, err := verifier.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(exp))
	assert.True(t, claims.IssuedAt.Equal(fixedNow))
}

func TestVerify_IsRepeatable(t *testing.T) {
	cfg := testConfig()
	issuer, _ := NewIssuer(cfg)
	verifier, _ := NewVerifier(cfg)
	raw, _, err := issuer.Issue("u1")
	require.NoError(t, err)

	first, err := verifier.Verify(raw)
	require.NoError(t, err)
	second, err := verifier.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVerify_Expired(t *testing.T) {
	cfg := testConfig()
	issuer, _ := NewIssuer(cfg)
	raw, _, err := issuer.Issue("u1")
	require.NoError(t, err)

	later := cfg
	later.Now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	verifier, _ := NewVerifier(later)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	cfg := testConfig()
	issuer, _ := NewIssuer(cfg)
	raw, _, err := issuer.Issue("u1")
	require.NoError(t, err)

	other := cfg
	other.Secret = []byte("another-secret")
	verifier, _ := NewVerifier(other)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_BadSignatureWinsOverExpiry(t *testing.T) {
	cfg := testConfig()
	issuer, _ := NewIssuer(cfg)
	raw, _, _ := issuer.Issue("u1")

	other := cfg
	other.Secret = []byte("another-secret")
	other.Now = func() time.Time { return fixedNow.Add(48 * time.Hour) }
	verifier, _ := NewVerifier(other)

	_, err := verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	cfg := testConfig()
	verifier, _ := NewVerifier(cfg)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    cfg.Issuer,
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	})
	raw, err := tok.SignedString(cfg.Secret)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_Malformed(t *testing.T) {
	verifier, _ := NewVerifier(testConfig())

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := verifier.Verify(raw)
		assert.ErrorIs(t, err, ErrMalformedCredential, "raw=%q", raw)
	}
}

func TestVerify_MissingSubject(t *testing.T) {
	cfg := testConfig()
	verifier, _ := NewVerifier(cfg)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	})
	raw, err := tok.SignedString(cfg.Secret)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrMalformedCredential)
}

func TestVerify_MissingExpiryIsRejected(t *testing.T) {
	cfg := testConfig()
	verifier, _ := NewVerifier(cfg)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "u1",
		Issuer:  cfg.Issuer,
	})
	raw, err := tok.SignedString(cfg.Secret)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.Error(t, err)
}

func TestNewVerifier_EmptySecret(t *testing.T) {
	_, err := NewVerifier(Config{})
	assert.Error(t, err)
	_, err = NewIssuer(Config{})
	assert.Error(t, err)
}
