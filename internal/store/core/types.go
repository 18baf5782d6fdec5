package core

import "github.com/google/uuid"

// Cluster vincula un cluster_id con su clave pública de firma.
// Se crea en el primer registro exitoso y nunca se actualiza (trust-on-first-use).
type Cluster struct {
	ID        uuid.UUID
	PublicKey []byte // SPKI (PKIX) tal como llegó; el registry no lo re-codifica
}

// NodeRegistration es una fila inmutable por cada discover exitoso.
// EncryptedPayload ya incluye el nonce de 4 bytes como prefijo.
type NodeRegistration struct {
	ID               int64 // surrogate, asignado por el store en Add
	ClusterID        uuid.UUID
	VersionName      string
	VersionNumber    int64
	EncryptedPayload []byte
	ServerTimestamp  int64 // ordinal monótono; sólo orden relativo
}

// Group identifica la partición lógica bajo la cual los nodos se descubren.
type Group struct {
	ClusterID     uuid.UUID
	VersionName   string
	VersionNumber int64
}
