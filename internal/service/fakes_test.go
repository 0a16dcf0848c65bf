package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/marketcore/auth-service/internal/model"
	"github.com/marketcore/auth-service/internal/repository"
)

// In-memory collaborator fakes.  They mirror the repository contracts
// exactly: repository.ErrNotFound for missing rows,
// repository.ErrDuplicateEmail for uniqueness conflicts, and
// delete-if-exists semantics on Consume.

type fakeUsers struct {
	mu      sync.Mutex
	nextID  uint64
	byID    map[uint64]model.User
	byEmail map[string]uint64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]model.User{}, byEmail: map[string]uint64{}}
}

func (f *fakeUsers) Create(_ context.Context, email, name, phone, passwordHash string, roleID uint8) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[email]; ok {
		return 0, repository.ErrDuplicateEmail
	}
	f.nextID++
	u := model.User{
		ID:           f.nextID,
		Email:        email,
		Name:         name,
		PhoneNumber:  phone,
		PasswordHash: passwordHash,
		RoleID:       roleID,
		Status:       model.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	f.byID[u.ID] = u
	f.byEmail[email] = u.ID
	return u.ID, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return f.byID[id], nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint64, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdateTOTPSecret(_ context.Context, id uint64, secret *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.TOTPSecret = secret
	f.byID[id] = u
	return nil
}

// set force-writes a user row, bypassing the duplicate check.
func (f *fakeUsers) set(u model.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		f.nextID++
		u.ID = f.nextID
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u.ID
}

type fakeRoles struct{ roles []model.Role }

func newFakeRoles() *fakeRoles {
	return &fakeRoles{roles: []model.Role{
		{ID: 1, Name: model.RoleAdmin},
		{ID: 2, Name: model.RoleSeller},
		{ID: 3, Name: model.RoleClient},
	}}
}

func (f *fakeRoles) GetByName(_ context.Context, name string) (model.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return model.Role{}, repository.ErrNotFound
}

func (f *fakeRoles) GetByID(_ context.Context, id uint8) (model.Role, error) {
	for _, r := range f.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Role{}, repository.ErrNotFound
}

type fakeDevices struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.Device
}

func newFakeDevices() *fakeDevices {
	return &fakeDevices{byID: map[uint64]model.Device{}}
}

func (f *fakeDevices) Create(_ context.Context, userID uint64, ip, userAgent string) (model.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	d := model.Device{
		ID:         f.nextID,
		UserID:     userID,
		IP:         ip,
		UserAgent:  userAgent,
		LastActive: time.Now().UTC(),
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	f.byID[d.ID] = d
	return d, nil
}

func (f *fakeDevices) Touch(_ context.Context, id uint64, ip, userAgent string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.IP = ip
	d.UserAgent = userAgent
	d.LastActive = time.Now().UTC()
	d.IsActive = true
	f.byID[id] = d
	return nil
}

func (f *fakeDevices) Deactivate(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.IsActive = false
	f.byID[id] = d
	return nil
}

func (f *fakeDevices) get(id uint64) (model.Device, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	return d, ok
}

func (f *fakeDevices) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeTokens struct {
	mu     sync.Mutex
	byHash map[string]model.RefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{byHash: map[string]model.RefreshToken{}}
}

func (f *fakeTokens) Store(_ context.Context, userID, deviceID uint64, tokenHash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byHash[tokenHash] = model.RefreshToken{
		TokenHash: tokenHash,
		UserID:    userID,
		DeviceID:  deviceID,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (f *fakeTokens) GetByHash(_ context.Context, tokenHash string) (model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byHash[tokenHash]
	if !ok {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTokens) Consume(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byHash[tokenHash]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byHash, tokenHash)
	return nil
}

func (f *fakeTokens) DeleteAllForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for h, t := range f.byHash {
		if t.UserID == userID {
			delete(f.byHash, h)
		}
	}
	return nil
}

func (f *fakeTokens) has(tokenHash string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byHash[tokenHash]
	return ok
}

func (f *fakeTokens) countForUser(userID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.byHash {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

type fakeCodes struct {
	mu      sync.Mutex
	byEmail map[string]model.VerificationCode
}

func newFakeCodes() *fakeCodes {
	return &fakeCodes{byEmail: map[string]model.VerificationCode{}}
}

func (f *fakeCodes) Upsert(_ context.Context, email, code, purpose string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byEmail[email] = model.VerificationCode{
		Email:     email,
		Code:      code,
		Type:      purpose,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (f *fakeCodes) Find(_ context.Context, email, code, purpose string) (model.VerificationCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vc, ok := f.byEmail[email]
	if !ok || vc.Code != code || vc.Type != purpose {
		return model.VerificationCode{}, repository.ErrNotFound
	}
	return vc, nil
}

func (f *fakeCodes) Consume(_ context.Context, email, code, purpose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vc, ok := f.byEmail[email]
	if !ok || vc.Code != code || vc.Type != purpose {
		return repository.ErrNotFound
	}
	delete(f.byEmail, email)
	return nil
}

func (f *fakeCodes) current(email string) (model.VerificationCode, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vc, ok := f.byEmail[email]
	return vc, ok
}

type sentMail struct {
	Email string
	Code  string
}

type fakeMailer struct {
	mu   sync.Mutex
	fail error
	sent []sentMail
}

func (f *fakeMailer) SendOTPEmail(_ context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sentMail{Email: email, Code: code})
	return nil
}

func (f *fakeMailer) last() (sentMail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}, false
	}
	return f.sent[len(f.sent)-1], true
}

var errBrokerDown = errors.New("broker down")
