// Aplica las migraciones del registry sobre postgres llevando el ledger
// schema_migrations: up corre sólo lo pendiente, down revierte lo aplicado.
package main

import (
	"context"
	"flag"
	"log"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/nodereg/internal/config"
	"github.com/dropDatabas3/nodereg/internal/migrate"
)

func main() {
	var (
		configPath = flag.String("config", "", "ruta a config.yaml (vacío: sólo env)")
		dir        = flag.String("dir", "migrations/postgres", "directorio con *_up.sql / *_down.sql")
	)
	flag.Parse()

	// Posicionales: [up|down] [steps]
	action := "up"
	steps := 0
	args := flag.Args()
	if len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
	}
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			steps = n
		}
	}

	var cfg *config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("config load: %v", err)
		}
	} else {
		cfg = config.FromEnv()
	}
	if cfg.Storage.DSN == "" {
		log.Fatal("falta DSN: ConnectionStrings__DefaultConnection o storage.dsn en YAML")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	r := migrate.NewRunner(pool)
	r.Logf = log.Printf

	switch action {
	case "up":
		n, err := r.Up(ctx, *dir, steps)
		if err != nil {
			log.Fatalf("up: %v (aplicadas %d)", err, n)
		}
		if n == 0 {
			log.Println("schema_migrations al día, nada que aplicar")
			return
		}
		log.Printf("aplicadas %d migración(es)", n)

	case "down":
		n, err := r.Down(ctx, *dir, steps)
		if err != nil {
			log.Fatalf("down: %v (revertidas %d)", err, n)
		}
		if n == 0 {
			log.Println("nada aplicado para revertir")
			return
		}
		log.Printf("revertidas %d migración(es)", n)

	default:
		log.Fatalf("acción desconocida %q. Uso: up | down [steps]", action)
	}
}
