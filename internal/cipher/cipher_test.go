package cipher_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/cipher"
	"github.com/slok/opsdesk/internal/model"
)

func TestAES256RoundTrip(t *testing.T) {
	tests := map[string]struct {
		plaintext []byte
	}{
		"Empty message.":              {plaintext: []byte{}},
		"Message shorter than block.": {plaintext: []byte(`{"command":"none"}`)},
		"Message of exactly a block.": {plaintext: bytes.Repeat([]byte("a"), 16)},
		"Long message.":               {plaintext: bytes.Repeat([]byte("task"), 100)},
	}

	key, err := cipher.GenerateKey()
	require.NoError(t, err)
	c, err := cipher.ForCallback(model.Callback{EncryptionType: model.EncryptionTypeAES256, EncryptionKey: key})
	require.NoError(t, err)

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			msg, err := c.Encrypt(test.plaintext)
			require.NoError(t, err)

			_, err = base64.StdEncoding.DecodeString(string(msg))
			require.NoError(t, err)

			got, err := c.Decrypt(msg)
			require.NoError(t, err)
			assert.Equal(t, string(test.plaintext), string(got))
		})
	}
}

func TestAES256TamperedMessage(t *testing.T) {
	require := require.New(t)

	c, err := cipher.NewAES256(bytes.Repeat([]byte{1}, 32))
	require.NoError(err)
	msg, err := c.Encrypt([]byte("whoami"))
	require.NoError(err)

	raw, err := base64.StdEncoding.DecodeString(string(msg))
	require.NoError(err)
	raw[20] ^= 0xff
	_, err = c.Decrypt([]byte(base64.StdEncoding.EncodeToString(raw)))
	assert.ErrorIs(t, err, model.ErrNotValid)
}

func TestForCallback(t *testing.T) {
	tests := map[string]struct {
		cb     model.Callback
		expNil bool
		expErr bool
	}{
		"Callbacks without encryption should not have a cipher.": {
			cb:     model.Callback{},
			expNil: true,
		},
		"Unknown encryption types should fail.": {
			cb:     model.Callback{EncryptionType: "XOR"},
			expErr: true,
		},
		"Invalid keys should fail.": {
			cb:     model.Callback{EncryptionType: model.EncryptionTypeAES256, EncryptionKey: base64.StdEncoding.EncodeToString([]byte("short"))},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := cipher.ForCallback(test.cb)
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expNil, c == nil)
		})
	}
}
