package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEncrypted(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "empty", text: "", want: false},
		{name: "plain sentence", text: "Today I studied 3 hours", want: false},
		{name: "short base64", text: "aGVsbG8=", want: false},
		{name: "exactly 20 chars", text: "QUJDREVGR0hJSktMTU5P", want: false},
		{name: "24 chars of base64", text: "QUJDREVGR0hJSktMTU5PUFFS", want: true},
		{name: "unpadded base64", text: "QUJDREVGR0hJSktMTU5PUFFSUw", want: false},
		{name: "url alphabet", text: "QUJDREVGR0hJSktMTU5P_-_-", want: false},
		{name: "whitespace inside", text: "QUJDREVG R0hJSktMTU5PUFFS", want: false},
		{name: "minimal envelope", text: base64.StdEncoding.EncodeToString(make([]byte, NonceSize+TagSize)), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEncrypted(tt.text))
		})
	}
}

// Every envelope the engine emits must be classified as encrypted, whatever
// the plaintext length.
func TestIsEncrypted_EngineOutput(t *testing.T) {
	e := NewEngine()
	key, err := e.DeriveKey("correct horse", testSalt(0x42), DefaultIterations)
	require.NoError(t, err)

	for n := 1; n <= 64; n++ {
		plain := string(make([]byte, n))
		envelope, err := e.Encrypt(plain, key)
		require.NoError(t, err)
		assert.True(t, IsEncrypted(envelope), "length %d", n)
	}
}
