package service

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TwoFactorService generates TOTP enrollment secrets and validates
// submitted codes.  Parameters follow the common authenticator-app
// defaults: SHA-1, 6 digits, 30-second period, 20-byte secret.
type TwoFactorService struct {
	issuer string
}

// NewTwoFactorService returns a TwoFactorService whose provisioning
// URIs carry the given issuer (the application name shown by
// authenticator apps).
func NewTwoFactorService(issuer string) *TwoFactorService {
	if issuer == "" {
		issuer = "auth-service"
	}
	return &TwoFactorService{issuer: issuer}
}

// GenerateSecret creates a fresh base32 secret for the account and the
// otpauth:// provisioning URI to embed in an enrollment QR code.
func (s *TwoFactorService) GenerateSecret(email string) (secret, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
		SecretSize:  20,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// Verify checks a submitted code against the secret, tolerating one
// period of clock skew on either side.  A wrong code returns false,
// never an error.
func (s *TwoFactorService) Verify(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
