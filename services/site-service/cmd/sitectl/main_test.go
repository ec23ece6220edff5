package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/websitekoning/koning-api/libs/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashPassword(t *testing.T) {
	out, err := execute(t, "hash-password", "--password", "geheim")
	if err != nil {
		t.Fatalf("hash-password failed: %v", err)
	}
	if err := auth.VerifyPassword(strings.TrimSpace(out), "geheim"); err != nil {
		t.Fatalf("printed hash does not verify: %v", err)
	}
}

func TestTokenRequiresSecret(t *testing.T) {
	t.Setenv("ADMIN_TOKEN_SECRET", "")
	if _, err := execute(t, "token"); err == nil {
		t.Fatal("expected error without ADMIN_TOKEN_SECRET")
	}
}

func TestTokenIsAdmin(t *testing.T) {
	t.Setenv("ADMIN_TOKEN_SECRET", "s3cret")
	out, err := execute(t, "token", "--subject", "ops")
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}
	claims, err := auth.ParseAndVerifyHS256(strings.TrimSpace(out), "s3cret")
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Sub != "ops" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := execute(t, "migrate", "up"); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}
