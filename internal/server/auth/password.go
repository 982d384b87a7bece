package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/dmitrijs2005/chartkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// argon2id parameters for hashing passwords and recovery answers.
const (
	hashTime    = 1
	hashMemory  = 64 * 1024
	hashThreads = 4
	hashKeyLen  = 32
	saltLen     = 16
)

// HashSecret derives an argon2id hash of secret under a fresh random salt
// and encodes both as "base64(salt):base64(hash)". The plaintext is never
// stored anywhere.
func HashSecret(secret string) string {
	salt := common.GenerateRandByteArray(saltLen)
	hash := argon2.IDKey([]byte(secret), salt, hashTime, hashMemory, hashThreads, hashKeyLen)
	return base64.RawStdEncoding.EncodeToString(salt) + ":" + base64.RawStdEncoding.EncodeToString(hash)
}

// VerifySecret re-derives the hash of candidate under the encoded salt and
// compares it to the stored hash in constant time. A malformed encoded value
// simply fails verification.
func VerifySecret(encoded, candidate string) bool {
	parts := strings.SplitN(encoded, ":", 2)
	if len(parts) != 2 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(candidate), salt, hashTime, hashMemory, hashThreads, hashKeyLen)
	return subtle.ConstantTimeCompare(want, got) == 1
}
