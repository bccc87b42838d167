package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestSealRoundTrip(t *testing.T) {
	svc, err := New(testKey)
	require.NoError(t, err)
	require.True(t, svc.Configured())

	sealed, err := svc.SealString("doctor appointment")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealedPrefix))
	assert.NotContains(t, sealed, "doctor")

	again, err := svc.SealString("doctor appointment")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := svc.OpenString(sealed)
	require.NoError(t, err)
	assert.Equal(t, "doctor appointment", plain)
}

func TestPassThroughWithoutKey(t *testing.T) {
	svc, err := New("")
	require.NoError(t, err)
	assert.False(t, svc.Configured())

	sealed, err := svc.SealString("exam")
	require.NoError(t, err)
	assert.Equal(t, "exam", sealed)

	_, err = svc.OpenString(sealedPrefix + "AAAA")
	assert.Error(t, err)
}

func TestOpenLegacyAndTamperedValues(t *testing.T) {
	svc, err := New(testKey)
	require.NoError(t, err)

	plain, err := svc.OpenString("written before encryption")
	require.NoError(t, err)
	assert.Equal(t, "written before encryption", plain)

	empty, err := svc.SealString("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	sealed, err := svc.SealString("exam")
	require.NoError(t, err)
	tampered := sealed[:len(sealed)-2] + "AA"
	if tampered == sealed {
		tampered = sealed[:len(sealed)-2] + "BB"
	}
	_, err = svc.OpenString(tampered)
	assert.Error(t, err)
}

func TestNewRejectsShortKey(t *testing.T) {
	_, err := New("short")
	assert.Error(t, err)
}

func TestDecodeKeyFormats(t *testing.T) {
	raw := "0123456789abcdef0123456789abcdef"
	tests := []struct {
		name string
		key  string
	}{
		{name: "raw text that is also valid base64", key: raw},
		{name: "hex", key: hex.EncodeToString([]byte(raw))},
		{name: "base64", key: base64.StdEncoding.EncodeToString([]byte(raw))},
		{name: "base64 without padding", key: base64.RawStdEncoding.EncodeToString([]byte(raw))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []byte(raw), decodeKey(tt.key))
			_, err := New(tt.key)
			assert.NoError(t, err)
		})
	}
}
