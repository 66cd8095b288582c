package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eswarnandha-a/sece-space/internal/model"
)

func TestUserSyncAndProfile(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Role:             model.RoleFaculty,
		Name:             "Dr. Rao",
		Email:            "rao@example.com",
	}

	u, err := svc.Sync(context.Background(), claims)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if u.ID != "u1" || u.Name != "Dr. Rao" || u.Role != model.RoleFaculty {
		t.Errorf("synced user = %+v", u)
	}

	// A repeat sync with changed token fields updates the mirror.
	claims.Name = "Dr. R. Rao"
	u, err = svc.Sync(context.Background(), claims)
	if err != nil {
		t.Fatalf("re-sync: %v", err)
	}
	if u.Name != "Dr. R. Rao" {
		t.Errorf("name after re-sync = %q", u.Name)
	}

	got, err := svc.Profile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if got.Email != "rao@example.com" {
		t.Errorf("profile = %+v", got)
	}
}

func TestUserProfileNotFound(t *testing.T) {
	svc := NewUserService(newFakeUserStore())
	if _, err := svc.Profile(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSetAvatar(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)
	store.users["u1"] = &model.UserRef{ID: "u1", Email: "x@example.com", Role: model.RoleStudent}

	if err := svc.SetAvatar(context.Background(), "u1", "https://cdn.example/avatar.png"); err != nil {
		t.Fatalf("set avatar: %v", err)
	}
	if store.users["u1"].AvatarURL != "https://cdn.example/avatar.png" {
		t.Errorf("avatar = %q", store.users["u1"].AvatarURL)
	}

	// Avatar survives a re-sync; only token-carried fields are updated.
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}, Role: model.RoleStudent, Email: "x@example.com"}
	u, err := svc.Sync(context.Background(), claims)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if u.AvatarURL != "https://cdn.example/avatar.png" {
		t.Errorf("avatar lost on sync: %+v", u)
	}

	if err := svc.SetAvatar(context.Background(), "missing", "https://x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
