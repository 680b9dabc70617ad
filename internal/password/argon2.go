package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters used for new hashes. Verification reads the
// parameters back from the stored hash, so they can change over time.
const (
	saltLength  = 16
	timeCost    = 1
	memoryCost  = 64 * 1024
	parallelism = 4
	keyLength   = 32
)

// MinLength is the minimum accepted password length.
const MinLength = 8

var errMalformedHash = errors.New("malformed password hash")

// A throwaway hash used to equalize the cost of verifying against a
// nonexistent account. Never matches a submitted password.
var dummyEncoded = mustDummy()

func mustDummy() string {
	h, err := Hash(string([]byte{0}))
	if err != nil {
		panic(err)
	}
	return h
}

// VerifyDummy burns the cost of one verification without a real stored
// hash, so lookups that miss take as long as mismatched passwords.
func VerifyDummy(password string) {
	Verify(dummyEncoded, password)
}

// Hash derives an argon2id hash of the password and encodes it together
// with its salt and parameters, e.g.
// $argon2id$v=19$m=65536,t=1,p=4$BASE64_SALT$BASE64_HASH
func Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, parallelism, keyLength)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memoryCost, timeCost, parallelism, encodedSalt, encodedHash), nil
}

// Verify re-derives the hash of password with the parameters and salt
// embedded in encoded and compares in constant time.
func Verify(encoded, password string) bool {
	salt, hash, t, m, p, err := decodeHash(encoded)
	if err != nil {
		return false
	}

	comparison := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(hash)))
	return subtle.ConstantTimeCompare(comparison, hash) == 1
}

func decodeHash(encoded string) (salt, hash []byte, t, m uint32, p uint8, err error) {
	sections := strings.Split(encoded, "$")
	// Expected: ["", "argon2id", "v=19", "m=65536,t=1,p=4", salt, hash]
	if len(sections) != 6 || sections[1] != "argon2id" {
		return nil, nil, 0, 0, 0, errMalformedHash
	}

	var version int
	if _, err = fmt.Sscanf(sections[2], "v=%d", &version); err != nil {
		return nil, nil, 0, 0, 0, errMalformedHash
	}
	if version != argon2.Version {
		return nil, nil, 0, 0, 0, errMalformedHash
	}

	var par uint32
	if _, err = fmt.Sscanf(sections[3], "m=%d,t=%d,p=%d", &m, &t, &par); err != nil {
		return nil, nil, 0, 0, 0, errMalformedHash
	}
	p = uint8(par)

	salt, err = base64.RawStdEncoding.DecodeString(sections[4])
	if err != nil {
		return nil, nil, 0, 0, 0, errMalformedHash
	}
	hash, err = base64.RawStdEncoding.DecodeString(sections[5])
	if err != nil {
		return nil, nil, 0, 0, 0, errMalformedHash
	}
	return salt, hash, t, m, p, nil
}
