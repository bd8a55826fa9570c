package devauth

// Package devauth provides an in-process stand-in for the PayAssure backend used in local development.

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/payassure/payassure-web/internal/adapters/backend"
	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	"github.com/payassure/payassure-web/internal/ports"
)

const (
	defaultPassword = "password"
	defaultOTP      = "123456"
)

// Config controls the dev backend behavior.
// Users defaults to one account per role when empty.
type Config struct {
	Password string
	OTP      string
	Users    []domainauth.User
}

// DefaultUsers returns the seeded development accounts.
func DefaultUsers() []domainauth.User {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []domainauth.User{
		{ID: "1", Name: "Ada Admin", Email: "admin@payassure.dev", Role: string(domainauth.RoleAdmin), CreatedAt: created},
		{ID: "2", Name: "Cam Customer", Email: "customer@payassure.dev", Role: string(domainauth.RoleCustomer), CreatedAt: created},
		{ID: "3", Name: "Ira Insurer", Email: "insurer@payassure.dev", Role: string(domainauth.RoleInsurer), CreatedAt: created},
	}
}

type account struct {
	user     domainauth.User
	password string
}

// Backend implements ports.Backend without network access.
// Login returns only {id, email, role} so the shell exercises its enrichment path.
type Backend struct {
	mu       sync.RWMutex
	otp      string
	accounts map[string]*account
	byID     map[string]*account
}

// NewBackend constructs a dev backend from Config.
func NewBackend(cfg Config) (*Backend, error) {
	password := cfg.Password
	if password == "" {
		password = defaultPassword
	}
	otp := cfg.OTP
	if otp == "" {
		otp = defaultOTP
	}
	users := cfg.Users
	if len(users) == 0 {
		users = DefaultUsers()
	}

	b := &Backend{
		otp:      otp,
		accounts: make(map[string]*account, len(users)),
		byID:     make(map[string]*account, len(users)),
	}
	for _, u := range users {
		if u.ID == "" || u.Email == "" {
			return nil, errors.New("dev auth: users need an id and email")
		}
		acc := &account{user: u, password: password}
		b.accounts[normalizeEmail(u.Email)] = acc
		b.byID[u.ID] = acc
	}
	return b, nil
}

func (b *Backend) Login(_ context.Context, in ports.LoginInput) (domainauth.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	acc, ok := b.accounts[normalizeEmail(in.Email)]
	if !ok || acc.password != in.Password {
		return domainauth.User{}, &backend.Error{Op: backend.OpLogin, Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return domainauth.User{ID: acc.user.ID, Email: acc.user.Email, Role: acc.user.Role}, nil
}

func (b *Backend) ForgotPassword(_ context.Context, email string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, ok := b.accounts[normalizeEmail(email)]; !ok {
		return "", &backend.Error{Op: backend.OpForgotPassword, Status: http.StatusNotFound, Message: "User not found"}
	}
	return "", nil
}

func (b *Backend) ResetPassword(_ context.Context, in ports.ResetInput) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[normalizeEmail(in.Email)]
	if !ok {
		return "", &backend.Error{Op: backend.OpResetPassword, Status: http.StatusNotFound, Message: "User not found"}
	}
	if in.OTP != b.otp {
		return "", &backend.Error{Op: backend.OpResetPassword, Status: http.StatusBadRequest, Message: "Invalid or expired OTP"}
	}
	acc.password = in.NewPassword
	return "", nil
}

func (b *Backend) FetchUser(_ context.Context, role domainauth.Role, id string) (domainauth.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	acc, ok := b.byID[id]
	if !ok || domainauth.ParseRole(acc.user.Role).Segment() != role.Segment() {
		return domainauth.User{}, &backend.Error{Op: backend.OpFetchUser, Status: http.StatusNotFound, Message: "User not found"}
	}
	return acc.user, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
