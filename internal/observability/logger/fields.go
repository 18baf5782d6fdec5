package logger

import (
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Campos estándar — HTTP

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

func DurationMs(v time.Duration) zap.Field {
	return zap.Int64("duration_ms", v.Milliseconds())
}

// Campos estándar — dominio

// ClusterID crea un campo para el id del cluster.
func ClusterID(v string) zap.Field { return zap.String("cluster_id", v) }

// Group identifica la partición (version_name, version_number) en una línea.
func Group(versionName string, versionNumber int64) zap.Field {
	return zap.String("group", versionName+"/"+strconv.FormatInt(versionNumber, 10))
}

// Outcome es el resultado de la admisión (success, replay_attack_detected, ...).
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

// Campos estándar — trazabilidad interna

func Layer(v string) zap.Field { return zap.String("layer", v) }
func Op(v string) zap.Field    { return zap.String("op", v) }
func Err(err error) zap.Field  { return zap.Error(err) }
