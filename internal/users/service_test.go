package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/suPer8Hu/diy-assistant/internal/common"
	"github.com/suPer8Hu/diy-assistant/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestRegisterThenAuthenticate(t *testing.T) {
	svc := NewService(NewRepo(openTestDB(t)))
	ctx := context.Background()

	id, err := svc.Register(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected user id to be set")
	}

	got, err := svc.Authenticate(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got != id {
		t.Fatalf("expected id %d, got %d", id, got)
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrAuthFailure) {
		t.Fatalf("expected auth failure for wrong password, got %v", err)
	}
}

func TestAuthenticate_UnknownUserLooksLikeBadPassword(t *testing.T) {
	svc := NewService(NewRepo(openTestDB(t)))
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, errMissing := svc.Authenticate(ctx, "nobody", "pw")
	_, errWrong := svc.Authenticate(ctx, "bob", "nope")
	if errMissing != errWrong || !errors.Is(errMissing, ErrAuthFailure) {
		t.Fatalf("expected identical auth failures, got %v / %v", errMissing, errWrong)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc := NewService(NewRepo(openTestDB(t)))
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "other"); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected duplicate username, got %v", err)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc := NewService(NewRepo(openTestDB(t)))
	for _, tc := range []struct{ user, pass string }{{"", "pw"}, {"   ", "pw"}, {"carol", ""}} {
		if _, err := svc.Register(context.Background(), tc.user, tc.pass); !errors.Is(err, common.ErrValidation) {
			t.Fatalf("register(%q,%q): expected validation error, got %v", tc.user, tc.pass, err)
		}
	}
}

func TestRegister_LengthLimits(t *testing.T) {
	svc := NewService(NewRepo(openTestDB(t)))
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob", strings.Repeat("a", 80)); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error for 80-byte password, got %v", err)
	}
	if _, err := svc.Register(ctx, strings.Repeat("u", MaxUsernameLen+1), "pw"); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error for long username, got %v", err)
	}

	longest := strings.Repeat("p", MaxPasswordBytes)
	id, err := svc.Register(ctx, "bob", longest)
	if err != nil {
		t.Fatalf("register with %d-byte password: %v", MaxPasswordBytes, err)
	}
	got, err := svc.Authenticate(ctx, "bob", longest)
	if err != nil || got != id {
		t.Fatalf("authenticate: id=%d err=%v", got, err)
	}
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db))
	if _, err := svc.Register(context.Background(), "dave", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	var u models.User
	if err := db.Where("username = ?", "dave").First(&u).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret" {
		t.Fatalf("expected hashed password, got %q", u.PasswordHash)
	}
}
