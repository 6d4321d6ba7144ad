package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTPFormat(t *testing.T) {
	sixDigits := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
	}
}

func TestHashOTPRoundtrip(t *testing.T) {
	digest, err := HashOTP("123456")
	require.NoError(t, err)

	assert.True(t, CheckOTPHash(digest, "123456"))
	assert.False(t, CheckOTPHash(digest, "654321"))
}

func TestHashOTPSaltsDiffer(t *testing.T) {
	first, err := HashOTP("123456")
	require.NoError(t, err)
	second, err := HashOTP("123456")
	require.NoError(t, err)

	// Fresh salt per digest; both still verify.
	assert.NotEqual(t, first, second)
	assert.True(t, CheckOTPHash(first, "123456"))
	assert.True(t, CheckOTPHash(second, "123456"))
}

func TestCheckOTPHashRejectsMalformedDigest(t *testing.T) {
	assert.False(t, CheckOTPHash("not-a-digest", "123456"))
	assert.False(t, CheckOTPHash("zz$zz", "123456"))
	assert.False(t, CheckOTPHash("", "123456"))
}
