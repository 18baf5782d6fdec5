// Package migrate aplica las migraciones SQL del registry llevando un
// ledger en schema_migrations: cada versión corre una sola vez, y el down
// sólo revierte versiones efectivamente aplicadas.
package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// Migration es un par up/down identificado por versión (prefijo numérico
// del archivo: 0001_init_up.sql / 0001_init_down.sql).
type Migration struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

var fileRe = regexp.MustCompile(`^(\d+)_(.+)_(up|down)\.sql$`)

// Load lee el directorio y arma las migraciones ordenadas por versión.
// Toda versión tiene que tener su up; el down es opcional.
func Load(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	byVersion := map[string]*Migration{}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		m := fileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		version, name, kind := m[1], m[2], m[3]

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: name}
			byVersion[version] = mig
		}
		if mig.Name != name {
			return nil, fmt.Errorf("versión %s con nombres distintos: %q y %q", version, mig.Name, name)
		}

		path := filepath.Join(dir, e.Name())
		switch kind {
		case "up":
			if mig.UpPath != "" {
				return nil, fmt.Errorf("versión %s: up duplicado", version)
			}
			mig.UpPath = path
		case "down":
			if mig.DownPath != "" {
				return nil, fmt.Errorf("versión %s: down duplicado", version)
			}
			mig.DownPath = path
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if mig.UpPath == "" {
			return nil, fmt.Errorf("versión %s: falta el archivo _up.sql", mig.Version)
		}
		out = append(out, *mig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Pending devuelve, en orden ascendente, las migraciones sin registrar en el
// ledger. steps > 0 acota cuántas.
func Pending(migs []Migration, applied map[string]bool, steps int) []Migration {
	var out []Migration
	for _, m := range migs {
		if !applied[m.Version] {
			out = append(out, m)
		}
	}
	if steps > 0 && steps < len(out) {
		out = out[:steps]
	}
	return out
}

// Rollback devuelve, de la más nueva a la más vieja, las migraciones
// aplicadas que tienen down. steps > 0 acota cuántas.
func Rollback(migs []Migration, applied map[string]bool, steps int) ([]Migration, error) {
	var out []Migration
	for i := len(migs) - 1; i >= 0; i-- {
		m := migs[i]
		if !applied[m.Version] {
			continue
		}
		if m.DownPath == "" {
			return nil, fmt.Errorf("versión %s está aplicada pero no tiene _down.sql", m.Version)
		}
		out = append(out, m)
	}
	if steps > 0 && steps < len(out) {
		out = out[:steps]
	}
	return out, nil
}
