package dto

// RegisterClusterRequest es el body de POST /clusters.
type RegisterClusterRequest struct {
	ClusterID string `json:"clusterId"`
	PublicKey string `json:"publicKey"` // base64 de SPKI P-256
}

// RegisterClusterResponse distingue alta nueva de re-registro idempotente.
type RegisterClusterResponse struct {
	Result string `json:"result"` // "created" | "already_exists"
}
