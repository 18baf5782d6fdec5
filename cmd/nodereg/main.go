package main

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/nodereg/internal/security/signature"
)

type client struct {
	BaseURL   string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("NODEREG_URL", "http://localhost:8080")
		out     = envOr("NODEREG_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "nodereg",
		Short: "CLI del discovery registry (clusters + discover)",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del registry (env NODEREG_URL)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	httpClient := &http.Client{Timeout: timeout}
	cl := &client{BaseURL: baseURL, OutFormat: out, HTTP: httpClient}

	// ping: /healthz
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping al registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/healthz", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("ping fallo: status=%d body=%s", status, string(body))
			}
			fmt.Println("ok")
			return nil
		},
	}

	// cluster register
	var regID, regKeyB64, regKeyFile string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Registrar un cluster (trust-on-first-use)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if regID == "" {
				return fmt.Errorf("--id es requerido")
			}
			key := regKeyB64
			if key == "" && regKeyFile != "" {
				b, err := os.ReadFile(regKeyFile)
				if err != nil {
					return err
				}
				key = strings.TrimSpace(string(b))
			}
			if key == "" {
				return fmt.Errorf("--public-key o --public-key-file es requerido")
			}
			payload, _ := json.Marshal(map[string]string{
				"clusterId": regID,
				"publicKey": key,
			})
			status, body, err := cl.do("POST", "/clusters", payload)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("register fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	registerCmd.Flags().StringVar(&regID, "id", "", "clusterId (GUID)")
	registerCmd.Flags().StringVar(&regKeyB64, "public-key", "", "clave pública SPKI en base64")
	registerCmd.Flags().StringVar(&regKeyFile, "public-key-file", "", "archivo con la clave pública base64")

	clusterCmd := &cobra.Command{Use: "cluster", Short: "Operaciones sobre clusters"}
	clusterCmd.AddCommand(registerCmd)

	// discover: firma con la clave privada local y envía el request completo
	var (
		dID, dVerName, dPriv string
		dVerNumber           int64
		dPayloadB64          string
	)
	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "Enviar un discover firmado (genera nonce fresco)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dID == "" || dVerName == "" || dPriv == "" {
				return fmt.Errorf("--id, --version-name y --priv son requeridos")
			}
			priv, err := readPrivateKey(dPriv)
			if err != nil {
				return err
			}

			var nonce [4]byte
			if _, err := rand.Read(nonce[:]); err != nil {
				return err
			}
			nonceB64 := base64.StdEncoding.EncodeToString(nonce[:])

			msg := dID + dVerName + strconv.FormatInt(dVerNumber, 10) + dPayloadB64 + nonceB64
			sig, err := signature.Sign(priv, []byte(msg))
			if err != nil {
				return err
			}

			payload, _ := json.Marshal(map[string]any{
				"clusterId":     dID,
				"versionName":   dVerName,
				"versionNumber": dVerNumber,
				"payload":       dPayloadB64,
				"nonce":         nonceB64,
				"signature":     base64.StdEncoding.EncodeToString(sig),
			})
			status, body, err := cl.do("POST", "/discover", payload)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("discover fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	discoverCmd.Flags().StringVar(&dID, "id", "", "clusterId (GUID)")
	discoverCmd.Flags().StringVar(&dVerName, "version-name", "", "versionName del grupo")
	discoverCmd.Flags().Int64Var(&dVerNumber, "version-number", 0, "versionNumber del grupo")
	discoverCmd.Flags().StringVar(&dPayloadB64, "payload", "", "payload cifrado en base64")
	discoverCmd.Flags().StringVar(&dPriv, "priv", "", "archivo PEM con la clave privada del cluster")

	root.AddCommand(pingCmd)
	root.AddCommand(clusterCmd)
	root.AddCommand(discoverCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func readPrivateKey(path string) (*ecdsa.PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, fmt.Errorf("%s: no es PEM", path)
	}
	if k, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return k, nil
	}
	k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%s: clave no reconocida: %w", path, err)
	}
	ec, ok := k.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s: no es una clave EC", path)
	}
	return ec, nil
}
