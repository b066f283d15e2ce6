package steplog

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func soc(v float64) *float64 { return &v }

func sampleRecords() []Record {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Record{
		{
			RunID: "r1", Step: 0, Timestamp: t0, DtHours: 0.25, DemandKW: 10, CostEUR: 0.5,
			Assets: map[string]AssetStep{
				"bat":    {Kind: "storage", InjectKW: 10, SOC: soc(0.4)},
				"market": {Kind: "settlement"},
			},
		},
		{
			RunID: "r1", Step: 1, Timestamp: t0.Add(15 * time.Minute), DtHours: 0.25, DemandKW: 5,
			Assets: map[string]AssetStep{"market": {Kind: "settlement", DrawKW: 5, CostEUR: 0.4}},
		},
		{
			RunID: "r2", Step: 0, Timestamp: t0, DtHours: 0.25,
			Assets: map[string]AssetStep{"market": {Kind: "settlement"}},
		},
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, r := range sampleRecords() {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	all, err := s.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records got %d", len(all))
	}
	run, _ := s.Query(ctx, Query{RunID: "r1"})
	if len(run) != 2 || run[0].Step != 0 || run[1].Step != 1 {
		t.Fatalf("unexpected run query result %+v", run)
	}
	bat, _ := s.Query(ctx, Query{Asset: "bat"})
	if len(bat) != 1 || bat[0].Assets["bat"].SOC == nil || *bat[0].Assets["bat"].SOC != 0.4 {
		t.Fatalf("unexpected asset query result %+v", bat)
	}
	late, _ := s.Query(ctx, Query{Start: sampleRecords()[1].Timestamp})
	if len(late) != 1 || late[0].Step != 1 {
		t.Fatalf("unexpected time query result %+v", late)
	}
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "nested", "steps.jsonl"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestRotatingJSONLStore(t *testing.T) {
	s, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "steps.jsonl"), 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "steps.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	s, err := Open(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(NopStore); !ok {
		t.Fatalf("expected NopStore got %T", s)
	}
	if _, err := Open(Options{Backend: "kafka"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	s, err = Open(Options{Backend: BackendJSONL, Path: filepath.Join(t.TempDir(), "x.jsonl")})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*JSONLStore); !ok {
		t.Fatalf("expected *JSONLStore got %T", s)
	}
}

func TestRecord_JSONKeys(t *testing.T) {
	data, err := json.Marshal(sampleRecords()[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"run_id", "step", "timestamp", "dt_hours", "demand_kw", "cost_eur", "assets"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %s", k)
		}
	}
}
