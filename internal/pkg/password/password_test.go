package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerify(t *testing.T) {
	h, err := Hash("admin")
	require.NoError(t, err)
	assert.NotEqual(t, "admin", h)
	assert.True(t, Verify(h, "admin"))
	assert.False(t, Verify(h, "Admin"))
	assert.False(t, Verify("", "admin"))
	assert.False(t, Verify("not-a-hash", "admin"))
}

func TestHash_Salted(t *testing.T) {
	a, err := Hash("same")
	require.NoError(t, err)
	b, err := Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate("12345"), ErrTooShort)
	assert.NoError(t, Validate("123456"))
	assert.NoError(t, Validate("密码密码密码"))
	assert.NoError(t, Validate(strings.Repeat("x", 72)))
	assert.ErrorIs(t, Validate(strings.Repeat("x", 73)), ErrTooLong)
}
