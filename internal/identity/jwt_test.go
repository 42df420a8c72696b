package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/membership_core/internal/apperr"
)

func TestVerify(t *testing.T) {
	v := NewJWTVerifier("s3cret", "idp.example")

	valid, err := IssueToken("s3cret", "idp.example", "user-42", time.Hour)
	require.NoError(t, err)
	wrongSecret, _ := IssueToken("other", "idp.example", "user-42", time.Hour)
	wrongIssuer, _ := IssueToken("s3cret", "evil.example", "user-42", time.Hour)
	expired, _ := IssueToken("s3cret", "idp.example", "user-42", -time.Minute)
	noSubject, _ := IssueToken("s3cret", "idp.example", "", time.Hour)
	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-42",
		Issuer:  "idp.example",
	}).SignedString([]byte("s3cret"))

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{"valid", valid, "user-42", false},
		{"valid with spaces", "  " + valid + " ", "user-42", false},
		{"empty", "", "", true},
		{"garbage", "not-a-jwt", "", true},
		{"wrong secret", wrongSecret, "", true},
		{"wrong issuer", wrongIssuer, "", true},
		{"expired", expired, "", true},
		{"no subject", noSubject, "", true},
		{"no expiry", noExpiry, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Verify(context.Background(), tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyWithoutIssuerAcceptsAny(t *testing.T) {
	v := NewJWTVerifier("s3cret", "")
	tok, err := IssueToken("s3cret", "whoever", "user-1", time.Hour)
	require.NoError(t, err)

	got, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got)
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTVerifier("s3cret", "").Verify(context.Background(), tok)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
