// Herramienta de claves: genera pares P-256 y firma requests de discover
// con la fórmula de wire (concatenación textual de los cinco campos).
package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/nodereg/internal/security/signature"
)

func main() {
	var (
		flagEnvFile = flag.String("env-file", "", "ruta a .env (opcional)")
		flagGen     = flag.Bool("gen", false, "genera un par P-256 y lo imprime")
		flagPrivOut = flag.String("priv-out", "", "con -gen: escribe la clave privada PEM en este archivo")

		flagSign       = flag.Bool("sign", false, "firma un request de discover")
		flagPrivIn     = flag.String("priv", "", "con -sign: archivo PEM con la clave privada")
		flagClusterID  = flag.String("cluster-id", "", "clusterId textual (GUID)")
		flagVerName    = flag.String("version-name", "", "versionName")
		flagVerNumber  = flag.Int64("version-number", 0, "versionNumber")
		flagPayloadB64 = flag.String("payload", "", "payload en base64")
		flagNonceB64   = flag.String("nonce", "", "nonce en base64 (4 bytes decodificados)")
	)
	flag.Parse()

	if *flagEnvFile != "" {
		_ = godotenv.Load(*flagEnvFile)
	}

	switch {
	case *flagGen:
		gen(*flagPrivOut)
	case *flagSign:
		sign(*flagPrivIn, *flagClusterID, *flagVerName, *flagVerNumber, *flagPayloadB64, *flagNonceB64)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func gen(privOut string) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	spki, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		log.Fatalf("marshal spki: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		log.Fatalf("marshal private: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})

	fmt.Printf("publicKey (base64 SPKI):\n%s\n", base64.StdEncoding.EncodeToString(spki))
	if privOut != "" {
		if err := os.WriteFile(privOut, pemBytes, 0o600); err != nil {
			log.Fatalf("write %s: %v", privOut, err)
		}
		fmt.Printf("private key: %s\n", privOut)
	} else {
		fmt.Printf("private key (PEM):\n%s", pemBytes)
	}
}

func sign(privPath, clusterID, versionName string, versionNumber int64, payloadB64, nonceB64 string) {
	if privPath == "" || clusterID == "" || versionName == "" || nonceB64 == "" {
		log.Fatal("faltan flags: -priv, -cluster-id, -version-name, -nonce")
	}
	priv := readPrivateKey(privPath)

	msg := clusterID + versionName + strconv.FormatInt(versionNumber, 10) + payloadB64 + nonceB64
	sig, err := signature.Sign(priv, []byte(msg))
	if err != nil {
		log.Fatalf("sign: %v", err)
	}
	fmt.Println(base64.StdEncoding.EncodeToString(sig))
}

func readPrivateKey(path string) *ecdsa.PrivateKey {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	block, _ := pem.Decode(b)
	if block == nil {
		log.Fatalf("%s: no es PEM", path)
	}
	if k, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return k
	}
	k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		log.Fatalf("%s: clave no reconocida: %v", path, err)
	}
	ec, ok := k.(*ecdsa.PrivateKey)
	if !ok {
		log.Fatalf("%s: no es una clave EC", path)
	}
	return ec
}
