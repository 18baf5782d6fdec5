package signature

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
)

// Sign produce una firma r ‖ s de 64 bytes (mitades con padding a 32).
// El server nunca firma; esto existe para el CLI de claves y los tests.
func Sign(priv *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, err
	}
	sig := make([]byte, p1363Len)
	r.FillBytes(sig[:p1363Len/2])
	s.FillBytes(sig[p1363Len/2:])
	return sig, nil
}
