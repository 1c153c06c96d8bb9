package server

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestVerifyBootstrapsOnFirstUse(t *testing.T) {
	store := &memPasswordStore{}
	creds := newCredentialStore(store, "1234")
	ctx := context.Background()

	// First ever verification doubles as bootstrap.
	ok, err := creds.Verify(ctx, "1234")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected default PIN to verify on a brand-new store")
	}

	// The record persisted the default hash.
	hash, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("expected credential record to exist: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("1234")) != nil {
		t.Fatal("stored hash does not match the default PIN")
	}

	// Same PIN still verifies; a wrong one does not.
	if ok, _ := creds.Verify(ctx, "1234"); !ok {
		t.Fatal("expected default PIN to verify again")
	}
	if ok, _ := creds.Verify(ctx, "9999"); ok {
		t.Fatal("expected wrong PIN to fail")
	}
}

func TestVerifyConcurrentBootstrapFirstWins(t *testing.T) {
	store := &memPasswordStore{}
	ctx := context.Background()

	// Simulate a racing process that already created the record with a
	// different PIN; our bootstrap must not overwrite it.
	other := newCredentialStore(store, "4321")
	if err := other.EnsureBootstrap(ctx); err != nil {
		t.Fatalf("EnsureBootstrap error: %v", err)
	}

	creds := newCredentialStore(store, "1234")
	ok, err := creds.Verify(ctx, "1234")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected the earlier record to win the bootstrap race")
	}
	if ok, _ := creds.Verify(ctx, "4321"); !ok {
		t.Fatal("expected the winning record's PIN to verify")
	}
}

func TestChangePassword(t *testing.T) {
	store := &memPasswordStore{}
	creds := newCredentialStore(store, "1234")
	ctx := context.Background()

	if err := creds.EnsureBootstrap(ctx); err != nil {
		t.Fatalf("EnsureBootstrap error: %v", err)
	}

	// Wrong current PIN.
	if err := creds.Change(ctx, "0000", "5678"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	// Successful change.
	if err := creds.Change(ctx, "1234", "5678"); err != nil {
		t.Fatalf("Change error: %v", err)
	}
	if ok, _ := creds.Verify(ctx, "5678"); !ok {
		t.Fatal("expected new PIN to verify after change")
	}
	if ok, _ := creds.Verify(ctx, "1234"); ok {
		t.Fatal("expected old PIN to stop verifying after change")
	}
}

func TestChangePasswordNotConfigured(t *testing.T) {
	creds := newCredentialStore(&memPasswordStore{}, "1234")
	if err := creds.Change(context.Background(), "1234", "5678"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
