package model

import "time"

// Verification code purposes stored in verification_codes.type.  A
// code is only valid for the purpose it was issued under.
const (
	CodePurposeRegister       = "REGISTER"
	CodePurposeForgotPassword = "FORGOT_PASSWORD"
	CodePurposeLogin          = "LOGIN"
	CodePurposeDisable2FA     = "DISABLE_2FA"
)

// ValidCodePurpose reports whether s is one of the known purposes.
func ValidCodePurpose(s string) bool {
	switch s {
	case CodePurposeRegister, CodePurposeForgotPassword, CodePurposeLogin, CodePurposeDisable2FA:
		return true
	}
	return false
}

// VerificationCode holds the single outstanding one-time code for an
// email address.  The table is keyed by email: issuing a new code
// overwrites the previous row, so at most one code per address is ever
// live.  Successful validation deletes the row, enforcing single use.
//
// Fields:
//  Email     – address the code was sent to (unique key).
//  Code      – 6-digit zero-padded numeric code.
//  Type      – purpose the code was issued for.
//  ExpiresAt – moment after which the code stops validating.
//  CreatedAt – timestamp of the (last) issue.
type VerificationCode struct {
	Email     string    // verification_codes.email
	Code      string    // verification_codes.code
	Type      string    // verification_codes.type
	ExpiresAt time.Time // verification_codes.expires_at
	CreatedAt time.Time // verification_codes.created_at
}
