package store

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	keySize = 32
	ivSize  = aes.BlockSize
	// 完整性校验密钥派生前缀
	macKeyLabel = "storefront-record-mac"
)

var (
	// ErrDecryption 解密失败（格式错误、被篡改或密钥不符）
	ErrDecryption = errors.New("record decryption failed")
	// ErrInvalidKey 加密密钥格式错误
	ErrInvalidKey = errors.New("encrypt key must be 64 hex chars or 32 raw bytes")
)

// DecryptionError 解密失败详情，errors.Is(err, ErrDecryption) 为真
type DecryptionError struct {
	Reason string
	Err    error
}

func (e *DecryptionError) Error() string {
	if e.Err == nil {
		return "decrypt record: " + e.Reason
	}
	return "decrypt record: " + e.Reason + ": " + e.Err.Error()
}

func (e *DecryptionError) Unwrap() error { return e.Err }

func (e *DecryptionError) Is(target error) bool { return target == ErrDecryption }

// Cipher AES-256-CBC 记录加解密，输出 ivHex:cipherHex
type Cipher struct {
	block        cipher.Block
	macKey       []byte
	authenticate bool
}

// NewCipher 创建加解密器；authenticate 开启后追加 HMAC 并拒绝无 MAC 的记录
func NewCipher(key string, authenticate bool) (*Cipher, error) {
	raw, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(append([]byte(macKeyLabel), raw...))
	return &Cipher{block: block, macKey: sum[:], authenticate: authenticate}, nil
}

// ParseKey 解析密钥：64 位十六进制按 hex 解码；32 字节原文直接使用，旧版本不支持此格式
func ParseKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if len(key) == keySize*2 {
		if raw, err := hex.DecodeString(key); err == nil {
			return raw, nil
		}
	}
	if len(key) == keySize {
		return []byte(key), nil
	}
	return nil, ErrInvalidKey
}

// Authenticated 是否启用完整性校验
func (c *Cipher) Authenticated() bool {
	return c.authenticate
}

// Encrypt 每次使用新的随机 IV
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ciphertext, padded)

	blob := hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext)
	if c.authenticate {
		blob += ":" + hex.EncodeToString(c.mac(iv, ciphertext))
	}
	return blob, nil
}

// Decrypt 解密 ivHex:cipherHex[:macHex]
func (c *Cipher) Decrypt(blob string) ([]byte, error) {
	blob = strings.TrimSpace(blob)
	if !strings.Contains(blob, ":") {
		return nil, &DecryptionError{Reason: "missing separator"}
	}
	parts := strings.Split(blob, ":")
	if len(parts) > 3 {
		return nil, &DecryptionError{Reason: "too many segments"}
	}
	if c.authenticate && len(parts) != 3 {
		return nil, &DecryptionError{Reason: "missing authentication tag"}
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return nil, &DecryptionError{Reason: "malformed iv", Err: err}
	}
	if len(iv) != ivSize {
		return nil, &DecryptionError{Reason: fmt.Sprintf("iv length %d", len(iv))}
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return nil, &DecryptionError{Reason: "malformed ciphertext", Err: err}
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, &DecryptionError{Reason: "ciphertext not block aligned"}
	}
	if len(parts) == 3 {
		tag, err := hex.DecodeString(parts[2])
		if err != nil {
			return nil, &DecryptionError{Reason: "malformed authentication tag", Err: err}
		}
		if !hmac.Equal(tag, c.mac(iv, ciphertext)) {
			return nil, &DecryptionError{Reason: "authentication tag mismatch"}
		}
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plaintext, ciphertext)
	plaintext, err = pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, &DecryptionError{Reason: "invalid padding", Err: err}
	}
	return plaintext, nil
}

func (c *Cipher) mac(iv, ciphertext []byte) []byte {
	h := hmac.New(sha256.New, c.macKey)
	h.Write(iv)
	h.Write(ciphertext)
	return h.Sum(nil)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append([]byte{}, data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("bad block size")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errors.New("bad padding length")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("bad padding bytes")
		}
	}
	return data[:len(data)-n], nil
}
