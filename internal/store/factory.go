package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/nodereg/internal/store/core"
	"github.com/dropDatabas3/nodereg/internal/store/memory"
	"github.com/dropDatabas3/nodereg/internal/store/pg"
)

type Config struct {
	Driver   string
	DSN      string
	Postgres pg.Config
}

// Open devuelve los stores según el driver. Driver vacío o "memory" usa
// los stores en memoria, útil para dev y para la suite e2e; el DSN sólo se
// usa con los drivers postgres.
func Open(ctx context.Context, cfg Config) (*core.Stores, error) {
	d := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch d {
	case "postgres", "pg", "postgresql":
		s, err := pg.New(ctx, cfg.DSN, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return s.Stores(), nil
	case "memory", "":
		return memory.NewStores(), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}
