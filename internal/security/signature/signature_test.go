package signature

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"testing"
)

func genKey(t *testing.T, curve elliptic.Curve) (*ecdsa.PrivateKey, []byte) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	spki, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return priv, spki
}

func TestValidatePublicKey(t *testing.T) {
	_, spki := genKey(t, elliptic.P256())
	if !ValidatePublicKey(spki) {
		t.Fatal("valid P-256 SPKI rejected")
	}

	if ValidatePublicKey(nil) {
		t.Fatal("nil accepted")
	}
	if ValidatePublicKey([]byte("not a key")) {
		t.Fatal("garbage accepted")
	}

	// curva equivocada
	_, spki384 := genKey(t, elliptic.P384())
	if ValidatePublicKey(spki384) {
		t.Fatal("P-384 key must be rejected")
	}
}

func TestSignVerify_RoundTrip(t *testing.T) {
	priv, spki := genKey(t, elliptic.P256())
	msg := []byte("f47ac10b-58cc-4372-a567-0e02b2c3d479prod1cGF5bG9hZA==bm9uYw==")

	sig, err := Sign(priv, msg)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if len(sig) != 64 {
		t.Fatalf("signature length = %d, want 64", len(sig))
	}
	if !Verify(spki, msg, sig) {
		t.Fatal("valid signature rejected")
	}
}

func TestVerify_TamperedMessage(t *testing.T) {
	priv, spki := genKey(t, elliptic.P256())
	msg := []byte("mensaje firmado")
	sig, _ := Sign(priv, msg)

	tampered := append([]byte(nil), msg...)
	tampered[0] ^= 1
	if Verify(spki, tampered, sig) {
		t.Fatal("tampered message verified")
	}
}

func TestVerify_WrongKey(t *testing.T) {
	priv, _ := genKey(t, elliptic.P256())
	_, otherSPKI := genKey(t, elliptic.P256())

	msg := []byte("mensaje")
	sig, _ := Sign(priv, msg)
	if Verify(otherSPKI, msg, sig) {
		t.Fatal("signature verified under a different key")
	}
}

func TestVerify_TotalOnBadInputs(t *testing.T) {
	priv, spki := genKey(t, elliptic.P256())
	msg := []byte("mensaje")
	sig, _ := Sign(priv, msg)

	cases := []struct {
		name string
		pub  []byte
		sig  []byte
	}{
		{"nil key", nil, sig},
		{"garbage key", []byte{0xde, 0xad}, sig},
		{"nil sig", spki, nil},
		{"short sig", spki, sig[:63]},
		{"long sig", spki, append(append([]byte(nil), sig...), 0)},
		{"zero sig", spki, make([]byte, 64)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if Verify(tc.pub, msg, tc.sig) {
				t.Fatal("must return false, not verify")
			}
		})
	}
}
