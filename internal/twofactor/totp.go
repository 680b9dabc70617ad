package twofactor

import (
	"bytes"
	"crypto/rand"
	"encoding/base32"
	"encoding/base64"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	secretBytes = 20
	qrImageSize = 256
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Manager provisions and verifies TOTP second factors.
type Manager struct {
	issuer string
	now    func() time.Time
}

func NewManager(issuer string) *Manager {
	return &Manager{issuer: issuer, now: time.Now}
}

// NewSecret returns a fresh cryptographically random base32 secret.
func (m *Manager) NewSecret() (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return b32.EncodeToString(raw), nil
}

// Verify checks a submitted 6-digit code against the secret, accepting the
// current 30-second step and one step of drift in either direction.
// Malformed input yields false, never an error.
func (m *Manager) Verify(secret, code string) bool {
	code = strings.TrimSpace(code)
	ok, err := totp.ValidateCustom(code, secret, m.now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// ProvisioningURI renders the otpauth:// enrollment URI for an existing
// secret, labeled with the account and the configured issuer.
func (m *Manager) ProvisioningURI(secret, account string) (string, error) {
	raw, err := b32.DecodeString(strings.ToUpper(secret))
	if err != nil {
		return "", err
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.issuer,
		AccountName: account,
		Secret:      raw,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return key.URL(), nil
}

// QRCodeBase64 encodes the provisioning URI as a scannable PNG QR code,
// base64 encoded for JSON transport.
func QRCodeBase64(uri string) (string, error) {
	code, err := qr.Encode(uri, qr.M, qr.Auto)
	if err != nil {
		return "", err
	}
	code, err = barcode.Scale(code, qrImageSize, qrImageSize)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
