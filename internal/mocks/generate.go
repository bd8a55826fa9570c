// Package mocks provides gomock mocks for the portal's ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	be := mocks.NewMockBackend(ctrl)
//	be.EXPECT().FetchUser(gomock.Any(), auth.RoleInsurer, "42").Return(user, nil)
package mocks

// Backend: Login, ForgotPassword, ResetPassword, FetchUser
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=backend_mock.go github.com/payassure/payassure-web/internal/ports Backend

// SessionStore: Save, Get, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/payassure/payassure-web/internal/ports SessionStore
