package authtoken_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0hv/manga-tracker-auth/core/authtoken"
)

func TestCookieValue_RoundTrip(t *testing.T) {
	t.Parallel()

	original := authtoken.CookieValue{
		Lookup:   base64.RawURLEncoding.EncodeToString([]byte("8bytes!!")),
		Secret:   []byte("some-secret-bytes-some-secret-bytes!!"),
		UserUUID: uuid.New(),
	}

	raw := original.String()
	assert.Equal(t, 3, strings.Count(raw, ";")+1, "triple must be semicolon-delimited")

	parsed, err := authtoken.ParseCookieValue(raw)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParseCookieValue_Malformed(t *testing.T) {
	t.Parallel()

	validUUID := base64.RawURLEncoding.EncodeToString(make([]byte, 16))
	validSecret := base64.RawURLEncoding.EncodeToString([]byte("secret"))

	tests := []struct {
		name string
		raw  string
	}{
		{"empty string", ""},
		{"too few fields", "lookup;" + validSecret},
		{"too many fields", "lookup;" + validSecret + ";" + validUUID + ";extra"},
		{"empty lookup", ";" + validSecret + ";" + validUUID},
		{"bad secret base64", "lookup;!!!not-base64!!!;" + validUUID},
		{"empty secret", "lookup;;" + validUUID},
		{"bad uuid base64", "lookup;" + validSecret + ";%%%"},
		{"uuid too short", "lookup;" + validSecret + ";" + base64.RawURLEncoding.EncodeToString([]byte("short"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := authtoken.ParseCookieValue(tt.raw)
			assert.ErrorIs(t, err, authtoken.ErrMalformedCookie)
		})
	}
}
