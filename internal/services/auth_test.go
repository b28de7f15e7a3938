package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seiyar26/ppt-template-manager/internal/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	registeredAt := time.Now()
	user, token, err := svc.Register("user@example.com", "pw12345", "Test User")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if token == "" {
		t.Fatal("Register returned no token")
	}
	if user.PasswordHash == "pw12345" {
		t.Fatal("raw password stored")
	}
	if user.LastLogin != nil {
		t.Error("LastLogin should be unset before first login")
	}

	loggedIn, loginToken, err := svc.Login("user@example.com", "pw12345")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loginToken == "" {
		t.Fatal("Login returned no token")
	}
	if loggedIn.LastLogin == nil || loggedIn.LastLogin.Before(registeredAt) {
		t.Errorf("LastLogin = %v, want >= %v", loggedIn.LastLogin, registeredAt)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	if _, _, err := svc.Register("user@example.com", "pw12345", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, token, err := svc.Login("user@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if token != "" {
		t.Fatal("token issued for wrong password")
	}

	if _, _, err := svc.Login("nobody@example.com", "pw12345"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	if _, _, err := svc.Register("user@example.com", "pw12345", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Register("user@example.com", "other", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// Email matching is case-sensitive; a different casing is a new account.
	if _, _, err := svc.Register("User@example.com", "pw12345", ""); err != nil {
		t.Fatalf("Register with different casing: %v", err)
	}
}

func TestTokensAreIndependent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	user, _, err := svc.Register("user@example.com", "pw12345", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, token1, err := svc.Login("user@example.com", "pw12345")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	_, token2, err := svc.Login("user@example.com", "pw12345")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	for i, token := range []string{token1, token2} {
		authed, err := svc.Authenticate(token)
		if err != nil {
			t.Fatalf("Authenticate token %d: %v", i+1, err)
		}
		if authed.ID != user.ID {
			t.Errorf("token %d resolved to user %s, want %s", i+1, authed.ID, user.ID)
		}
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	user, token, err := svc.Register("user@example.com", "pw12345", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Authenticate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: got %v", err)
	}

	other := NewAuthService(db, "different-secret")
	if _, err := other.Authenticate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with another secret: got %v", err)
	}

	// Token for a deleted user no longer authenticates.
	if err := db.Delete(user).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := svc.Authenticate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token for deleted user: got %v", err)
	}
}
