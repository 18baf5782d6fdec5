package migrate

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoad_PairsAndOrders(t *testing.T) {
	dir := writeFiles(t,
		"0002_indexes_up.sql",
		"0002_indexes_down.sql",
		"0001_init_up.sql",
		"0001_init_down.sql",
		"0010_widen_payload_up.sql", // sin down: válido
		"notes.txt",                 // ignorado
		"README.md",                 // ignorado
	)

	migs, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("len=%d, want 3", len(migs))
	}
	for i, want := range []string{"0001", "0002", "0010"} {
		if migs[i].Version != want {
			t.Fatalf("migs[%d].Version=%s, want %s", i, migs[i].Version, want)
		}
	}
	if migs[0].Name != "init" || migs[0].UpPath == "" || migs[0].DownPath == "" {
		t.Fatalf("0001 mal armada: %+v", migs[0])
	}
	if migs[2].DownPath != "" {
		t.Fatal("0010 no tiene down")
	}
}

func TestLoad_Rejects(t *testing.T) {
	t.Run("missing up", func(t *testing.T) {
		dir := writeFiles(t, "0001_init_down.sql")
		if _, err := Load(dir); err == nil {
			t.Fatal("down sin up debería fallar")
		}
	})

	t.Run("name mismatch within version", func(t *testing.T) {
		dir := writeFiles(t, "0001_init_up.sql", "0001_otra_down.sql")
		if _, err := Load(dir); err == nil {
			t.Fatal("misma versión con nombres distintos debería fallar")
		}
	})
}

func TestPending_SkipsLedgeredAndLimits(t *testing.T) {
	migs := []Migration{
		{Version: "0001", Name: "init"},
		{Version: "0002", Name: "indexes"},
		{Version: "0003", Name: "widen"},
	}
	applied := map[string]bool{"0001": true}

	plan := Pending(migs, applied, 0)
	if len(plan) != 2 || plan[0].Version != "0002" || plan[1].Version != "0003" {
		t.Fatalf("plan=%+v", plan)
	}

	// re-correr con todo aplicado es no-op
	all := map[string]bool{"0001": true, "0002": true, "0003": true}
	if plan := Pending(migs, all, 0); len(plan) != 0 {
		t.Fatalf("ledger al día debería dar plan vacío, got %+v", plan)
	}

	if plan := Pending(migs, applied, 1); len(plan) != 1 || plan[0].Version != "0002" {
		t.Fatalf("steps=1: %+v", plan)
	}
}

func TestRollback_NewestFirstOnlyApplied(t *testing.T) {
	migs := []Migration{
		{Version: "0001", Name: "init", DownPath: "0001_init_down.sql"},
		{Version: "0002", Name: "indexes", DownPath: "0002_indexes_down.sql"},
		{Version: "0003", Name: "widen", DownPath: "0003_widen_down.sql"},
	}
	applied := map[string]bool{"0001": true, "0002": true}

	plan, err := Rollback(migs, applied, 0)
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}
	// 0003 no está aplicada: no se revierte; orden nueva→vieja
	if len(plan) != 2 || plan[0].Version != "0002" || plan[1].Version != "0001" {
		t.Fatalf("plan=%+v", plan)
	}

	if plan, _ := Rollback(migs, applied, 1); len(plan) != 1 || plan[0].Version != "0002" {
		t.Fatalf("steps=1: %+v", plan)
	}
}

func TestRollback_AppliedWithoutDownFails(t *testing.T) {
	migs := []Migration{{Version: "0001", Name: "init"}}
	if _, err := Rollback(migs, map[string]bool{"0001": true}, 0); err == nil {
		t.Fatal("aplicada sin down debería fallar")
	}
}
