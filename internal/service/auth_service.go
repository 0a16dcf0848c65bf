package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marketcore/auth-service/internal/model"
	"github.com/marketcore/auth-service/internal/repository"
	"github.com/marketcore/auth-service/internal/utils"
)

// Store collaborator contracts.  The concrete repository types satisfy
// them; tests substitute in-memory fakes.  Every store is expected to
// surface repository.ErrNotFound for missing rows and
// repository.ErrDuplicateEmail for uniqueness conflicts, so the
// orchestrator can branch on typed outcomes instead of driver errors.
type (
	UserStore interface {
		Create(ctx context.Context, email, name, phone, passwordHash string, roleID uint8) (uint64, error)
		GetByEmail(ctx context.Context, email string) (model.User, error)
		GetByID(ctx context.Context, id uint64) (model.User, error)
		UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
		UpdateTOTPSecret(ctx context.Context, id uint64, secret *string) error
	}

	RoleStore interface {
		GetByName(ctx context.Context, name string) (model.Role, error)
		GetByID(ctx context.Context, id uint8) (model.Role, error)
	}

	DeviceStore interface {
		Create(ctx context.Context, userID uint64, ip, userAgent string) (model.Device, error)
		Touch(ctx context.Context, id uint64, ip, userAgent string) error
		Deactivate(ctx context.Context, id uint64) error
	}

	TokenStore interface {
		Store(ctx context.Context, userID, deviceID uint64, tokenHash string, exp time.Time) error
		GetByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error)
		Consume(ctx context.Context, tokenHash string) error
		DeleteAllForUser(ctx context.Context, userID uint64) error
	}

	CodeStore interface {
		Upsert(ctx context.Context, email, code, purpose string, expiresAt time.Time) error
		Find(ctx context.Context, email, code, purpose string) (model.VerificationCode, error)
		Consume(ctx context.Context, email, code, purpose string) error
	}

	// Mailer delivers one-time codes.  Fire-and-report: the service does
	// not retry on failure.
	Mailer interface {
		SendOTPEmail(ctx context.Context, email, code string) error
	}
)

// Options carries the tunables of the auth core.
type Options struct {
	AccessSecret   string        // HMAC secret for access tokens
	RefreshSecret  string        // HMAC secret for refresh tokens
	AccessTTLMin   int           // access token lifetime in minutes
	RefreshTTLDays int           // refresh token lifetime in days
	OTPTTL         time.Duration // verification code lifetime
	BcryptCost     int           // password hashing cost
}

// AuthService composes the credential hasher, verification code
// store, two-factor engine, token codec and device registry into the
// register / login / refresh / logout / forgot-password / 2FA flows.
type AuthService struct {
	opts      Options
	users     UserStore
	roles     RoleStore
	devices   DeviceStore
	tokens    TokenStore
	codes     CodeStore
	mailer    Mailer
	twoFactor *TwoFactorService
}

func NewAuthService(opts Options, users UserStore, roles RoleStore, devices DeviceStore,
	tokens TokenStore, codes CodeStore, mailer Mailer, twoFactor *TwoFactorService) *AuthService {
	return &AuthService{
		opts:      opts,
		users:     users,
		roles:     roles,
		devices:   devices,
		tokens:    tokens,
		codes:     codes,
		mailer:    mailer,
		twoFactor: twoFactor,
	}
}

// TokenPair is the result of login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput holds the parsed register request body.  Field
// validation (presence, password confirmation) belongs to transport;
// the service assumes well-formed input.
type RegisterInput struct {
	Email       string
	Name        string
	PhoneNumber string
	Password    string
	Code        string
}

// LoginInput holds the parsed login request body.  TOTPCode carries
// the authenticator-app code, Code an optional LOGIN-purpose mailed
// code.
type LoginInput struct {
	Email    string
	Password string
	TOTPCode string
	Code     string
}

// validateVerificationCode checks an (email, code, purpose) triple and
// consumes the row on success.  The consuming DELETE is what makes a
// code single-use: a second validation of the same triple finds no row
// and fails with ErrInvalidCode.
func (s *AuthService) validateVerificationCode(ctx context.Context, email, code, purpose string) (model.VerificationCode, error) {
	vc, err := s.codes.Find(ctx, email, code, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.VerificationCode{}, ErrInvalidCode
		}
		return model.VerificationCode{}, err
	}
	if vc.ExpiresAt.Before(time.Now().UTC()) {
		return model.VerificationCode{}, ErrCodeExpired
	}
	if err := s.codes.Consume(ctx, email, code, purpose); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost a race against a concurrent validation of the same code.
			return model.VerificationCode{}, ErrInvalidCode
		}
		return model.VerificationCode{}, err
	}
	return vc, nil
}

// Register consumes a REGISTER-purpose code, resolves the default
// CLIENT role, hashes the password and inserts the user.  The email
// uniqueness check is the insert itself: a store-level duplicate
// conflict maps to ErrEmailAlreadyExists, closing the race a pre-check
// would leave open.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	if _, err := s.validateVerificationCode(ctx, in.Email, in.Code, model.CodePurposeRegister); err != nil {
		return model.User{}, err
	}
	role, err := s.roles.GetByName(ctx, model.RoleClient)
	if err != nil {
		return model.User{}, fmt.Errorf("resolve client role: %w", err)
	}
	hash, err := utils.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	id, err := s.users.Create(ctx, in.Email, in.Name, in.PhoneNumber, hash, role.ID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.User{}, ErrEmailAlreadyExists
		}
		return model.User{}, err
	}
	return s.users.GetByID(ctx, id)
}

// SendOTP issues a verification code for the purpose and dispatches it
// by mail.  REGISTER requires the address to be free,
// FORGOT_PASSWORD requires it to exist.  On dispatch failure the code
// row is deliberately left in place: a retried request overwrites it.
func (s *AuthService) SendOTP(ctx context.Context, email, purpose string) error {
	_, err := s.users.GetByEmail(ctx, email)
	exists := err == nil
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if purpose == model.CodePurposeRegister && exists {
		return ErrEmailAlreadyExists
	}
	if purpose == model.CodePurposeForgotPassword && !exists {
		return ErrEmailNotFound
	}
	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return err
	}
	expiresAt := time.Now().UTC().Add(s.opts.OTPTTL)
	if err := s.codes.Upsert(ctx, email, code, purpose, expiresAt); err != nil {
		return err
	}
	if err := s.mailer.SendOTPEmail(ctx, email, code); err != nil {
		return ErrOTPDispatchFailed
	}
	return nil
}

// Login authenticates a user and opens a new device session.
//
// Second-factor policy: when a TOTP secret is enrolled a TOTP code is
// required; a missing code fails exactly like a wrong one
// (ErrInvalidOTP).  A mailed LOGIN-purpose code is optional and only
// checked when supplied.
//
// Known gap: if the flow dies between device creation and token
// persistence (e.g. transport timeout), an inactive-session device row
// is left behind.  It is an audit artifact, not a live session.
func (s *AuthService) Login(ctx context.Context, in LoginInput, ip, userAgent string) (TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrEmailNotFound
		}
		return TokenPair{}, err
	}
	if user.Status == model.UserStatusBlocked {
		return TokenPair{}, ErrUnauthorized
	}
	if !utils.VerifyPassword(user.PasswordHash, in.Password) {
		return TokenPair{}, ErrInvalidPassword
	}
	if user.TwoFactorEnabled() {
		if in.TOTPCode == "" || !s.twoFactor.Verify(*user.TOTPSecret, in.TOTPCode) {
			return TokenPair{}, ErrInvalidOTP
		}
	}
	if in.Code != "" {
		if _, err := s.validateVerificationCode(ctx, user.Email, in.Code, model.CodePurposeLogin); err != nil {
			return TokenPair{}, err
		}
	}
	role, err := s.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("resolve role: %w", err)
	}
	device, err := s.devices.Create(ctx, user.ID, ip, userAgent)
	if err != nil {
		return TokenPair{}, err
	}
	return s.issueTokenPair(ctx, user.ID, role.ID, device.ID, role.Name)
}

// issueTokenPair signs both tokens concurrently, then persists the
// refresh token's hash with the expiry recovered from its own claims.
// If persistence fails the tokens are not returned to the caller.
func (s *AuthService) issueTokenPair(ctx context.Context, userID uint64, roleID uint8, deviceID uint64, roleName string) (TokenPair, error) {
	var access, refresh utils.SignedToken
	var g errgroup.Group
	g.Go(func() error {
		var err error
		access, err = utils.NewAccessToken(s.opts.AccessSecret, userID, roleID, deviceID, roleName, s.opts.AccessTTLMin)
		return err
	})
	g.Go(func() error {
		var err error
		refresh, err = utils.NewRefreshToken(s.opts.RefreshSecret, userID, s.opts.RefreshTTLDays)
		return err
	})
	if err := g.Wait(); err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.Store(ctx, userID, deviceID, utils.HashRefreshRaw(refresh.Token), refresh.Exp); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access.Token, RefreshToken: refresh.Token}, nil
}

// Refresh rotates a refresh token.  Signature and expiry are checked
// cryptographically, then the store row is consumed: the single
// delete-if-exists is the arbiter, so of two concurrent refreshes of
// the same token exactly one proceeds and the other fails
// ErrUnauthorized.  Replaying an already-rotated token finds no row
// and is rejected the same way.  Once the old token is spent, the
// device touch and the new pair issuance run concurrently.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, ip, userAgent string) (TokenPair, error) {
	if _, err := utils.ParseRefreshToken(s.opts.RefreshSecret, refreshToken); err != nil {
		return TokenPair{}, ErrUnauthorized
	}
	hash := utils.HashRefreshRaw(refreshToken)
	row, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}
	user, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}
	role, err := s.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("resolve role: %w", err)
	}

	// Spend the old token first; only the winner of a concurrent race
	// gets past this point.
	if err := s.tokens.Consume(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}

	var pair TokenPair
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.devices.Touch(gctx, row.DeviceID, ip, userAgent)
	})
	g.Go(func() error {
		var err error
		pair, err = s.issueTokenPair(gctx, user.ID, role.ID, row.DeviceID, role.Name)
		return err
	})
	if err := g.Wait(); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Logout spends a refresh token and deactivates its device.  A second
// logout with the same token finds no row and fails ErrUnauthorized,
// which callers should treat as "already logged out".
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := utils.ParseRefreshToken(s.opts.RefreshSecret, refreshToken); err != nil {
		return ErrUnauthorized
	}
	hash := utils.HashRefreshRaw(refreshToken)
	row, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	if err := s.devices.Deactivate(ctx, row.DeviceID); err != nil {
		return err
	}
	if err := s.tokens.Consume(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	return nil
}

// ForgotPassword resets a password after validating a FORGOT_PASSWORD
// code, then revokes every refresh token the user holds so stolen
// sessions die with the old password.
func (s *AuthService) ForgotPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmailNotFound
		}
		return err
	}
	if _, err := s.validateVerificationCode(ctx, email, code, model.CodePurposeForgotPassword); err != nil {
		return err
	}
	hash, err := utils.HashPassword(newPassword, s.opts.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	return s.tokens.DeleteAllForUser(ctx, user.ID)
}

// TwoFactorSetup generates and stores a fresh TOTP secret for the
// user, returning the secret and its provisioning URI.  Re-running
// setup rotates the secret; no prior disable is required.
func (s *AuthService) TwoFactorSetup(ctx context.Context, userID uint64) (secret, uri string, err error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", ErrUserNotFound
		}
		return "", "", err
	}
	secret, uri, err = s.twoFactor.GenerateSecret(user.Email)
	if err != nil {
		return "", "", err
	}
	if err := s.users.UpdateTOTPSecret(ctx, user.ID, &secret); err != nil {
		return "", "", err
	}
	return secret, uri, nil
}

// TwoFactorDisable clears the user's TOTP secret.  When a secret is
// enrolled and a TOTP code was submitted it must verify; a
// DISABLE_2FA-purpose mailed code is validated when supplied.
func (s *AuthService) TwoFactorDisable(ctx context.Context, userID uint64, totpCode, code string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.TwoFactorEnabled() && totpCode != "" {
		if !s.twoFactor.Verify(*user.TOTPSecret, totpCode) {
			return ErrInvalidOTP
		}
	}
	if code != "" {
		if _, err := s.validateVerificationCode(ctx, user.Email, code, model.CodePurposeDisable2FA); err != nil {
			return err
		}
	}
	return s.users.UpdateTOTPSecret(ctx, user.ID, nil)
}
