package identity

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestStatic(t *testing.T) {
	if _, ok := Static("").CurrentUserID(); ok {
		t.Error("empty Static should be signed out")
	}
	if u, ok := Static("u1").CurrentUserID(); !ok || u != "u1" {
		t.Errorf("Static(u1) = %q, %v", u, ok)
	}
}

func TestKeyringLoginLogout(t *testing.T) {
	gokeyring.MockInit()
	t.Setenv(EnvUser, "")

	var id Keyring
	if _, ok := id.CurrentUserID(); ok {
		t.Fatal("signed in before Login")
	}
	if err := Login("  sam  "); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if u, ok := id.CurrentUserID(); !ok || u != "sam" {
		t.Errorf("CurrentUserID() = %q, %v; want sam", u, ok)
	}
	if err := Logout(); err != nil {
		t.Fatalf("Logout() failed: %v", err)
	}
	if err := Logout(); err != nil {
		t.Errorf("second Logout() failed: %v", err)
	}
	if _, ok := id.CurrentUserID(); ok {
		t.Error("still signed in after Logout")
	}
}

func TestEnvOverridesKeyring(t *testing.T) {
	gokeyring.MockInit()
	_ = Login("keyring-user")
	t.Setenv(EnvUser, "env-user")

	if u, _ := (Keyring{}).CurrentUserID(); u != "env-user" {
		t.Errorf("CurrentUserID() = %q, want env-user", u)
	}
}
