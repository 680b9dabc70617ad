package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"backend/internal/models"
)

// ResetGenerator issues and checks single-use password-reset tokens.
//
// A token is base36(unix seconds) + "-" + a truncated hex HMAC-SHA256 over
// the user id, the current password hash and the timestamp. Because the
// password hash participates in the MAC, setting a new password invalidates
// every token issued before the change; no server-side state is needed.
type ResetGenerator struct {
	key      []byte
	lifetime time.Duration
	now      func() time.Time
}

const resetMACLength = 32 // hex chars kept from the full MAC

func NewResetGenerator(key []byte, lifetime time.Duration) *ResetGenerator {
	return &ResetGenerator{key: key, lifetime: lifetime, now: time.Now}
}

// MakeToken returns a reset token for the user's current state.
func (g *ResetGenerator) MakeToken(user *models.User) string {
	ts := g.now().Unix()
	return strconv.FormatInt(ts, 36) + "-" + g.mac(user, ts)
}

// CheckToken reports whether the token is well formed, unexpired and bound
// to the user's current password state.
func (g *ResetGenerator) CheckToken(user *models.User, tok string) bool {
	tsPart, macPart, ok := strings.Cut(tok, "-")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}

	now := g.now().Unix()
	if ts > now || now-ts > int64(g.lifetime/time.Second) {
		return false
	}

	return hmac.Equal([]byte(g.mac(user, ts)), []byte(macPart))
}

func (g *ResetGenerator) mac(user *models.User, ts int64) string {
	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(user.ID))
	mac.Write([]byte{0})
	mac.Write([]byte(user.PasswordHash))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	return hex.EncodeToString(mac.Sum(nil))[:resetMACLength]
}

// EncodeUID converts a user id into the opaque form carried in reset URLs.
func EncodeUID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
