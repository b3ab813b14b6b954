package wallet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/tolelom/curvemarket/crypto"
)

func TestKeystoreRoundTrip(t *testing.T) {
	priv, pub, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "key.json")

	if err := SaveKey(path, "hunter2", priv); err != nil {
		t.Fatalf("SaveKey: %v", err)
	}
	loaded, err := LoadKey(path, "hunter2")
	if err != nil {
		t.Fatalf("LoadKey: %v", err)
	}
	if !bytes.Equal(loaded, priv) {
		t.Error("loaded key differs from saved key")
	}
	if loaded.Public().Hex() != pub.Hex() {
		t.Error("loaded key derives a different public key")
	}
}

func TestKeystoreWrongPassword(t *testing.T) {
	priv, _, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "key.json")

	if err := SaveKey(path, "hunter2", priv); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadKey(path, "hunter3"); err == nil {
		t.Error("wrong password must not decrypt the keystore")
	}
}

func TestKeystoreFilePermissions(t *testing.T) {
	priv, _, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "key.json")
	if err := SaveKey(path, "pw", priv); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("keystore permissions: got %o want 0600", perm)
	}
}

func TestKeystoreCorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadKey(path, "pw"); err == nil {
		t.Error("corrupted keystore must fail to load")
	}
}
