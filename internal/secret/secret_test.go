package secret

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	manager, err := NewManager(key)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return manager
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	for _, psk := range []string{"secretPSK", "", "päss wörd with spaces"} {
		token, err := manager.Encrypt(psk)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		if psk != "" && strings.Contains(token, psk) {
			t.Fatalf("token contains plaintext")
		}
		got, err := manager.Decrypt(token)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if got != psk {
			t.Fatalf("expected %q, got %q", psk, got)
		}
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	manager := newTestManager(t)
	first, err := manager.Encrypt("secretPSK")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	second, err := manager.Encrypt("secretPSK")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct tokens for repeated encryption")
	}
}

func TestDecryptRejectsBadTokens(t *testing.T) {
	manager := newTestManager(t)
	token, err := manager.Encrypt("secretPSK")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not base64url: %v", err)
	}
	raw[len(raw)-1] ^= 0x01
	tampered := base64.RawURLEncoding.EncodeToString(raw)

	other := newTestManager(t)
	cases := map[string]func() (string, error){
		"garbage":   func() (string, error) { return manager.Decrypt("not base64 !!") },
		"truncated": func() (string, error) { return manager.Decrypt(token[:10]) },
		"tampered":  func() (string, error) { return manager.Decrypt(tampered) },
		"wrong key": func() (string, error) { return other.Decrypt(token) },
	}
	for name, decrypt := range cases {
		if _, err := decrypt(); !errors.Is(err, ErrCrypto) {
			t.Fatalf("%s: expected ErrCrypto, got %v", name, err)
		}
	}
}

func TestNewManagerRejectsShortKey(t *testing.T) {
	if _, err := NewManager([]byte("short")); err == nil {
		t.Fatalf("expected short key to be rejected")
	}
}

func TestRedact(t *testing.T) {
	text := "set psksecret secretPSK\n# again: secretPSK\n"
	got := Redact(text, "secretPSK")
	if strings.Contains(got, "secretPSK") {
		t.Fatalf("expected every occurrence redacted, got %q", got)
	}
	if strings.Count(got, RedactedPlaceholder) != 2 {
		t.Fatalf("expected two placeholders, got %q", got)
	}
	if Redact(text, "") != text {
		t.Fatalf("expected empty psk to leave text unchanged")
	}
}

func TestPolicy(t *testing.T) {
	const text = "key secretPSK"
	cases := []struct {
		policy     Policy
		wantOutput bool
		wantStored bool
	}{
		{policy: Policy{}, wantOutput: false, wantStored: false},
		{policy: Policy{IncludePSK: true}, wantOutput: true, wantStored: true},
		{policy: Policy{SaveEncrypted: true}, wantOutput: false, wantStored: false},
		{policy: Policy{IncludePSK: true, SaveEncrypted: true}, wantOutput: true, wantStored: false},
	}
	for _, tc := range cases {
		if got := strings.Contains(tc.policy.Output(text, "secretPSK"), "secretPSK"); got != tc.wantOutput {
			t.Fatalf("%+v: output contains psk=%v, want %v", tc.policy, got, tc.wantOutput)
		}
		if got := strings.Contains(tc.policy.Stored(text, "secretPSK"), "secretPSK"); got != tc.wantStored {
			t.Fatalf("%+v: stored contains psk=%v, want %v", tc.policy, got, tc.wantStored)
		}
	}
}

func TestOpenFileStoreCreatesAndReusesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "secret.key")
	store := NewFileStore(path)

	first, err := Open(store)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected key file to exist: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected key file mode 0600, got %o", info.Mode().Perm())
	}
	token, err := first.Encrypt("secretPSK")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	second, err := Open(store)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	got, err := second.Decrypt(token)
	if err != nil {
		t.Fatalf("expected reopened key to decrypt token, got %v", err)
	}
	if got != "secretPSK" {
		t.Fatalf("unexpected plaintext %q", got)
	}
}

func TestOpenRejectsCorruptKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")
	if err := os.WriteFile(path, []byte("!!!"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if _, err := Open(NewFileStore(path)); err == nil {
		t.Fatalf("expected corrupt key file to fail")
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("ipsec-confgen-test", "psk-key")

	if _, err := store.Load(); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound from empty keyring, got %v", err)
	}
	if _, err := Open(store); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	stored, err := store.Load()
	if err != nil {
		t.Fatalf("expected key to be persisted, got %v", err)
	}
	reloaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(stored, reloaded) || len(stored) != 32 {
		t.Fatalf("expected stable 32 byte key")
	}
}
