package clusters

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"testing"

	httperrors "github.com/dropDatabas3/nodereg/internal/http/errors"
	"github.com/dropDatabas3/nodereg/internal/store/memory"
)

const testGUID = "f47ac10b-58cc-4372-a567-0e02b2c3d479"

func newKeyB64(t *testing.T) string {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	spki, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return base64.StdEncoding.EncodeToString(spki)
}

func TestRegister_CreatedThenIdempotentThenMismatch(t *testing.T) {
	ctx := context.Background()
	s := NewService(memory.NewClusterStore())
	key := newKeyB64(t)

	out, err := s.Register(ctx, testGUID, key)
	if err != nil || out != Created {
		t.Fatalf("first register: out=%v err=%v", out, err)
	}

	out, err = s.Register(ctx, testGUID, key)
	if err != nil || out != AlreadyExists {
		t.Fatalf("re-register same key: out=%v err=%v", out, err)
	}

	other := newKeyB64(t)
	_, err = s.Register(ctx, testGUID, other)
	if !errors.Is(err, httperrors.ErrPublicKeyMismatch) {
		t.Fatalf("register with different key: %v, want public_key_mismatch", err)
	}

	// la clave almacenada sigue siendo la primera
	out, err = s.Register(ctx, testGUID, key)
	if err != nil || out != AlreadyExists {
		t.Fatalf("original key must still be bound: out=%v err=%v", out, err)
	}
}

func TestRegister_InvalidGUID(t *testing.T) {
	s := NewService(memory.NewClusterStore())
	_, err := s.Register(context.Background(), "not-a-guid", newKeyB64(t))
	if !errors.Is(err, httperrors.ErrInvalidGUIDFormat) {
		t.Fatalf("err=%v, want invalid_guid_format", err)
	}
}

func TestRegister_InvalidPublicKey(t *testing.T) {
	s := NewService(memory.NewClusterStore())

	// base64 inválido
	if _, err := s.Register(context.Background(), testGUID, "%%%"); !errors.Is(err, httperrors.ErrInvalidPublicKey) {
		t.Fatalf("bad base64: %v", err)
	}

	// base64 válido pero no es SPKI
	junk := base64.StdEncoding.EncodeToString([]byte("junk"))
	if _, err := s.Register(context.Background(), testGUID, junk); !errors.Is(err, httperrors.ErrInvalidPublicKey) {
		t.Fatalf("junk spki: %v", err)
	}

	// curva equivocada
	priv, _ := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	spki, _ := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	wrongCurve := base64.StdEncoding.EncodeToString(spki)
	if _, err := s.Register(context.Background(), testGUID, wrongCurve); !errors.Is(err, httperrors.ErrInvalidPublicKey) {
		t.Fatalf("p384: %v", err)
	}
}
