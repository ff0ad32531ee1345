package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// keySize is the AES-256 key length in bytes.
	keySize = 32

	// ivSize is the CBC initialization vector length in bytes.
	ivSize = aes.BlockSize

	// credentialsFileMode is the permission set for the decrypted
	// credentials file: owner-read-only.
	credentialsFileMode = os.FileMode(0o400)
)

var (
	// ErrInvalidPadding indicates the PKCS#7 padding check failed
	// after decryption. With raw-key CBC there is no integrity tag,
	// so a wrong key or IV almost always shows up here.
	ErrInvalidPadding = errors.New("invalid PKCS#7 padding (wrong key or corrupt ciphertext)")

	// errCiphertextSize indicates the input is empty or not a whole
	// number of AES blocks.
	errCiphertextSize = errors.New("ciphertext length is not a positive multiple of the AES block size")
)

// DecodeKeyMaterial decodes a hex-encoded key or IV to exactly size
// bytes. Shorter input is right-padded with zero bytes and longer
// input is rejected, matching how openssl treats -K and -iv arguments.
func DecodeKeyMaterial(hexStr string, size int) ([]byte, error) {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key material: %w", err)
	}
	if len(raw) > size {
		return nil, fmt.Errorf("key material is %d bytes, want at most %d", len(raw), size)
	}

	out := make([]byte, size)
	copy(out, raw)
	return out, nil
}

// Decrypt decrypts an AES-256-CBC ciphertext with the given raw key
// and IV and strips the PKCS#7 padding. The input has no salt header.
func Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("key is %d bytes, want %d", len(key), keySize)
	}
	if len(iv) != ivSize {
		return nil, fmt.Errorf("iv is %d bytes, want %d", len(iv), ivSize)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errCiphertextSize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("initialize cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return stripPKCS7(plaintext)
}

// DecryptFile decrypts the file at inPath with the hex-encoded key and
// IV and writes the plaintext to outPath with mode 0400.
//
// The plaintext goes to a temporary file in the destination directory
// first and is renamed into place after its permissions are
// restricted, so outPath never exists partially written or with wider
// permissions. On any error the temporary file is removed.
func DecryptFile(inPath, outPath, keyHex, ivHex string) error {
	key, err := DecodeKeyMaterial(keyHex, keySize)
	if err != nil {
		return fmt.Errorf("decryption key: %w", err)
	}
	iv, err := DecodeKeyMaterial(ivHex, ivSize)
	if err != nil {
		return fmt.Errorf("decryption iv: %w", err)
	}

	ciphertext, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read encrypted file: %w", err)
	}

	plaintext, err := Decrypt(ciphertext, key, iv)
	if err != nil {
		return fmt.Errorf("decrypt %s: %w", inPath, err)
	}

	return writeRestricted(outPath, plaintext)
}

// writeRestricted writes data to path with owner-read-only permissions
// via a temporary file and rename.
func writeRestricted(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temporary credentials file: %w", err)
	}
	tmpName := tmp.Name()

	// Remove the temp file on any failure below. Rename clears
	// tmpName first, which makes the deferred remove a no-op on the
	// success path.
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write credentials file: %w", err)
	}
	if err := tmp.Chmod(credentialsFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("restrict credentials file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credentials file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("move credentials file into place: %w", err)
	}
	tmpName = ""

	return nil
}

// stripPKCS7 validates and removes PKCS#7 padding from a decrypted
// block sequence. Every padding byte must equal the padding length.
func stripPKCS7(plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrInvalidPadding
	}

	padLen := int(plaintext[len(plaintext)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(plaintext) {
		return nil, ErrInvalidPadding
	}

	for _, b := range plaintext[len(plaintext)-padLen:] {
		if int(b) != padLen {
			return nil, ErrInvalidPadding
		}
	}

	return plaintext[:len(plaintext)-padLen], nil
}
