package password

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	pass := gofakeit.Password(true, true, true, true, false, 12)

	stored, err := Hash(pass)
	require.NoError(t, err)

	assert.True(t, Verify(pass, stored))
}

func TestVerifyWrongPassword(t *testing.T) {
	stored, err := Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.False(t, Verify("incorrect horse", stored))
}

func TestHashProducesDistinctSalts(t *testing.T) {
	const pass = "same-password"

	first, err := Hash(pass)
	require.NoError(t, err)
	second, err := Hash(pass)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify(pass, first))
	assert.True(t, Verify(pass, second))
}

func TestHashFormat(t *testing.T) {
	stored, err := Hash("pw")
	require.NoError(t, err)

	parts := strings.Split(stored, ":")
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], saltSize*2)
	assert.Len(t, parts[1], keyLength*2)
}

func TestVerifyMalformedStored(t *testing.T) {
	assert.False(t, Verify("pw", ""))
	assert.False(t, Verify("pw", "no-separator"))
	assert.False(t, Verify("pw", "zz:zz"))
	assert.False(t, Verify("pw", "abcd:not-hex"))
}
