// Package idgen generates opaque string identifiers using crypto/rand.
package idgen

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const (
	idCharset      = "abcdefghijklmnopqrstuvwxyz0123456789"
	accountCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// AccountIDLength matches the legacy platform's account id width.
	AccountIDLength = 13
)

// GenerateSecureID returns "<prefix>_<n random chars>" drawn from the
// lowercase alphanumeric charset.
func GenerateSecureID(prefix string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("idgen: length must be positive, got %d", length)
	}

	suffix, err := randomString(idCharset, length)
	if err != nil {
		return "", err
	}
	return prefix + "_" + suffix, nil
}

// AccountID returns a mixed-case alphanumeric id for new account rows.
func AccountID() (string, error) {
	return randomString(accountCharset, AccountIDLength)
}

// ValidateIDFormat reports whether id has the expected prefix and a
// non-empty lowercase alphanumeric suffix.
func ValidateIDFormat(id, expectedPrefix string) bool {
	prefix := expectedPrefix + "_"
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	suffix := id[len(prefix):]
	if suffix == "" {
		return false
	}
	for _, char := range suffix {
		if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9')) {
			return false
		}
	}
	return true
}

// HashKey256 returns the hex-encoded HMAC-SHA256 of key under secret.
func HashKey256(key string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

func randomString(charset string, length int) (string, error) {
	max := big.NewInt(int64(len(charset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("idgen: read random: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
