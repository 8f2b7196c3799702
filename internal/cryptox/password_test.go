package cryptox

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast
var testParams = Params{Memory: 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestHashPassword_Format(t *testing.T) {
	h := HashPassword([]byte("my_secret_password"), testParams)

	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$"), h)
	assert.NotContains(t, h, "my_secret_password")
}

func TestHashPassword_Salted(t *testing.T) {
	a := HashPassword([]byte("pw"), testParams)
	b := HashPassword([]byte("pw"), testParams)
	assert.NotEqual(t, a, b, "same password must hash differently under fresh salts")
}

func TestVerifyPassword(t *testing.T) {
	h := HashPassword([]byte("correct horse"), testParams)

	ok, err := VerifyPassword([]byte("correct horse"), h)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword([]byte("battery staple"), h)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_DefaultParams(t *testing.T) {
	h := HashPassword([]byte("pw"), DefaultParams)
	ok, err := VerifyPassword([]byte("pw"), h)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	tests := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	}

	for _, h := range tests {
		t.Run(h, func(t *testing.T) {
			ok, err := VerifyPassword([]byte("pw"), h)
			assert.False(t, ok)
			assert.True(t, errors.Is(err, ErrMalformedHash), "got %v", err)
		})
	}
}

func TestVerifyPassword_ZeroCostParams(t *testing.T) {
	h := HashPassword([]byte("pw"), testParams)

	for _, bad := range []string{"m=1024,t=0,p=1", "m=1024,t=1,p=0"} {
		t.Run(bad, func(t *testing.T) {
			corrupted := strings.Replace(h, "m=1024,t=1,p=1", bad, 1)

			var (
				ok  bool
				err error
			)
			require.NotPanics(t, func() { ok, err = VerifyPassword([]byte("pw"), corrupted) })
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrMalformedHash)
		})
	}
}
