package secrets

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encryptCBC is the test-side inverse of Decrypt: PKCS#7 pad and
// AES-256-CBC encrypt, producing the raw-ciphertext format that
// `openssl aes-256-cbc -K -iv` emits (no salt header).
func encryptCBC(t *testing.T, plaintext, key, iv []byte) []byte {
	t.Helper()

	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append(append([]byte(nil), plaintext...), bytes.Repeat([]byte{byte(padLen)}, padLen)...)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext
}

func testKeyIV(t *testing.T) (key, iv []byte, keyHex, ivHex string) {
	t.Helper()

	keyHex = "603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4"
	ivHex = "000102030405060708090a0b0c0d0e0f"

	var err error
	key, err = hex.DecodeString(keyHex)
	require.NoError(t, err)
	iv, err = hex.DecodeString(ivHex)
	require.NoError(t, err)
	return key, iv, keyHex, ivHex
}

// TestDecrypt_RoundTrip verifies that ciphertext produced in the
// openssl raw-key format decrypts back to the original plaintext.
func TestDecrypt_RoundTrip(t *testing.T) {
	key, iv, _, _ := testKeyIV(t)
	plaintext := []byte("machine docker.io\n  login ci-bot\n  password hunter2\n")

	ciphertext := encryptCBC(t, plaintext, key, iv)

	got, err := Decrypt(ciphertext, key, iv)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

// TestDecrypt_ExactBlockPlaintext verifies the full-block padding case:
// a plaintext that is a whole number of blocks carries one extra block
// of padding.
func TestDecrypt_ExactBlockPlaintext(t *testing.T) {
	key, iv, _, _ := testKeyIV(t)
	plaintext := bytes.Repeat([]byte("x"), aes.BlockSize*2)

	ciphertext := encryptCBC(t, plaintext, key, iv)
	require.Len(t, ciphertext, aes.BlockSize*3)

	got, err := Decrypt(ciphertext, key, iv)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

// TestDecrypt_WrongKey verifies the wrong-key failure mode: decryption
// itself succeeds mechanically but the padding check fails, which is
// the only integrity signal raw-key CBC provides.
func TestDecrypt_WrongKey(t *testing.T) {
	key, iv, _, _ := testKeyIV(t)
	ciphertext := encryptCBC(t, []byte("secret credentials"), key, iv)

	wrongKey := append([]byte(nil), key...)
	wrongKey[0] ^= 0xff

	_, err := Decrypt(ciphertext, wrongKey, iv)
	assert.ErrorIs(t, err, ErrInvalidPadding)
}

// TestDecrypt_BadCiphertextLength verifies that empty and partial-block
// inputs are rejected before any cipher work happens.
func TestDecrypt_BadCiphertextLength(t *testing.T) {
	key, iv, _, _ := testKeyIV(t)

	_, err := Decrypt(nil, key, iv)
	assert.ErrorIs(t, err, errCiphertextSize)

	_, err = Decrypt(make([]byte, aes.BlockSize+1), key, iv)
	assert.ErrorIs(t, err, errCiphertextSize)
}

// TestDecodeKeyMaterial covers the openssl-compatible hex handling:
// exact length passes through, short input is zero-padded on the
// right, overlong input and non-hex input are rejected.
func TestDecodeKeyMaterial(t *testing.T) {
	full, err := DecodeKeyMaterial("000102030405060708090a0b0c0d0e0f", ivSize)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, full)

	short, err := DecodeKeyMaterial("ff", ivSize)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0xff}, make([]byte, ivSize-1)...), short)

	_, err = DecodeKeyMaterial("000102030405060708090a0b0c0d0e0f00", ivSize)
	assert.Error(t, err, "overlong key material should be rejected")

	_, err = DecodeKeyMaterial("not-hex", ivSize)
	assert.Error(t, err)
}

// TestDecryptFile_WritesRestrictedFile verifies the end-to-end file
// path: plaintext content matches and the output mode is exactly 0400.
func TestDecryptFile_WritesRestrictedFile(t *testing.T) {
	key, iv, keyHex, ivHex := testKeyIV(t)
	plaintext := []byte("registry credentials")

	dir := t.TempDir()
	inPath := filepath.Join(dir, "travis.enc")
	outPath := filepath.Join(dir, "travis")
	require.NoError(t, os.WriteFile(inPath, encryptCBC(t, plaintext, key, iv), 0o644))

	require.NoError(t, DecryptFile(inPath, outPath, keyHex, ivHex))

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Equal(t, credentialsFileMode, info.Mode().Perm(), "credentials file must be owner-read-only")
}

// TestDecryptFile_MissingInput verifies a missing encrypted bundle is
// reported without creating any output file.
func TestDecryptFile_MissingInput(t *testing.T) {
	_, _, keyHex, ivHex := testKeyIV(t)
	dir := t.TempDir()
	outPath := filepath.Join(dir, "travis")

	err := DecryptFile(filepath.Join(dir, "missing.enc"), outPath, keyHex, ivHex)
	require.Error(t, err)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "no output file should exist after a failed decrypt")
}

// TestDecryptFile_WrongKeyLeavesNoOutput verifies the atomic write:
// a padding failure must not leave a partial credentials file behind.
func TestDecryptFile_WrongKeyLeavesNoOutput(t *testing.T) {
	key, iv, _, ivHex := testKeyIV(t)

	dir := t.TempDir()
	inPath := filepath.Join(dir, "travis.enc")
	outPath := filepath.Join(dir, "travis")
	require.NoError(t, os.WriteFile(inPath, encryptCBC(t, []byte("secret"), key, iv), 0o644))

	wrongKeyHex := "ff" // zero-padded to a full key, certainly not the right one
	err := DecryptFile(inPath, outPath, wrongKeyHex, ivHex)
	require.ErrorIs(t, err, ErrInvalidPadding)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must be cleaned up")
	assert.Equal(t, "travis.enc", entries[0].Name())
}

// TestStripPKCS7 covers the padding validation table.
func TestStripPKCS7(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    []byte
		wantErr bool
	}{
		{"single byte padding", append(bytes.Repeat([]byte("a"), 15), 0x01), bytes.Repeat([]byte("a"), 15), false},
		{"full block padding", bytes.Repeat([]byte{0x10}, 16), []byte{}, false},
		{"zero padding byte", append(bytes.Repeat([]byte("a"), 15), 0x00), nil, true},
		{"padding longer than block", append(bytes.Repeat([]byte("a"), 15), 0x11), nil, true},
		{"inconsistent padding bytes", append(bytes.Repeat([]byte("a"), 14), 0x01, 0x02), nil, true},
		{"empty input", []byte{}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stripPKCS7(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPadding)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
