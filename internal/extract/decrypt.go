package extract

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Layout of an OpenSSL-style salted blob: 8 magic bytes, 8 salt bytes, data.
// The magic ("Salted__") is not checked.
const (
	magicLen  = 8
	saltLen   = 8
	headerLen = magicLen + saltLen

	keyLen = 32
	ivLen  = 16
)

// DeriveKeyIV derives an AES-256 key and CBC IV from a password and salt
// with the single-round MD5 scheme used by legacy OpenSSL (EVP_BytesToKey).
func DeriveKeyIV(password, salt []byte) (key, iv []byte) {
	var material, digest []byte
	for len(material) < keyLen+ivLen {
		h := md5.New()
		h.Write(digest)
		h.Write(password)
		h.Write(salt)
		digest = h.Sum(nil)
		material = append(material, digest...)
	}
	return material[:keyLen], material[keyLen : keyLen+ivLen]
}

// splitSalted separates the salt and ciphertext of a decoded blob.
func splitSalted(blob []byte) (salt, data []byte, err error) {
	if len(blob) < headerLen {
		return nil, nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedCiphertext, len(blob), headerLen)
	}
	return blob[magicLen:headerLen], blob[headerLen:], nil
}

// DecryptSalted decodes a base64 salted blob and decrypts it with a key
// derived from password. The result must be valid UTF-8.
func DecryptSalted(encoded, password string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: base64: %v", ErrMalformedCiphertext, err)
	}

	salt, data, err := splitSalted(blob)
	if err != nil {
		return "", err
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d is not a multiple of %d", ErrDecryptionFailed, len(data), aes.BlockSize)
	}

	key, iv := DeriveKeyIV([]byte(password), salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, data)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plain) {
		return "", fmt.Errorf("%w: plaintext is not UTF-8", ErrDecryptionFailed)
	}

	return string(plain), nil
}

// pkcs7Unpad strips and verifies PKCS#7 padding.
func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, fmt.Errorf("%w: padded length %d", ErrDecryptionFailed, len(b))
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: bad padding byte %d", ErrDecryptionFailed, n)
	}
	if !bytes.Equal(b[len(b)-n:], bytes.Repeat([]byte{byte(n)}, n)) {
		return nil, fmt.Errorf("%w: inconsistent padding", ErrDecryptionFailed)
	}
	return b[:len(b)-n], nil
}
