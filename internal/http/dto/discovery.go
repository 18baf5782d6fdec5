package dto

// DiscoverRequest es el body de POST /discover. payload, nonce y signature
// viajan en base64; la fórmula de firma concatena los cinco campos en su
// forma textual, sin separadores.
type DiscoverRequest struct {
	ClusterID     string `json:"clusterId"`
	VersionName   string `json:"versionName"`
	VersionNumber int64  `json:"versionNumber"`
	Payload       string `json:"payload"`
	Nonce         string `json:"nonce"`
	Signature     string `json:"signature"`
}

// DiscoverResponse lista los blobs cifrados de los pares del grupo,
// cada uno base64 de nonce(4) ‖ payload_cifrado.
type DiscoverResponse struct {
	Nodes []string `json:"nodes"`
}
