package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalizeArtistKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Boards of Canada", "boards of canada"},
		{"  Four Tet  ", "four tet"},
		{`"Khruangbin"`, "khruangbin"},
		{"'Sault'", "sault"},
		{"“Arooj Aftab”", "arooj aftab"},
		{"‘Shabaka’", "shabaka"},
		{"BADBADNOTGOOD", "badbadnotgood"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeArtistKey(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeArtistKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanArtistName_PreservesCasing(t *testing.T) {
	got := CleanArtistName(`"Mdou Moctar"`)
	if got != "Mdou Moctar" {
		t.Errorf("CleanArtistName = %q, want %q", got, "Mdou Moctar")
	}
}

func TestTimestamp_RoundTrip(t *testing.T) {
	ts, err := ParseTimestamp("2026-01-10 09:00")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"2026-01-10 09:00"` {
		t.Errorf("Marshal = %s, want %q", data, "2026-01-10 09:00")
	}

	var back Timestamp
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Equal(ts.Time) {
		t.Errorf("round trip mismatch: %v != %v", back, ts)
	}
}

func TestTimestamp_ZeroMarshalsEmpty(t *testing.T) {
	data, err := json.Marshal(Timestamp{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `""` {
		t.Errorf("zero Timestamp = %s, want \"\"", data)
	}

	var back Timestamp
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.IsZero() {
		t.Errorf("expected zero timestamp, got %v", back)
	}
}

func TestTimestamp_AcceptsRFC3339(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"2026-01-10T09:00:00Z"`), &ts); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ts.String() != "2026-01-10 09:00" {
		t.Errorf("String() = %q, want %q", ts.String(), "2026-01-10 09:00")
	}
}

func TestTimestamp_RejectsGarbage(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"last tuesday"`), &ts); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestArtistRecord_IsNew(t *testing.T) {
	now := time.Date(2026, 1, 12, 12, 0, 0, 0, time.UTC)
	recent := NewTimestamp(now.Add(-48 * time.Hour))
	old := NewTimestamp(now.Add(-10 * 24 * time.Hour))

	tests := []struct {
		name   string
		record ArtistRecord
		want   bool
	}{
		{
			name:   "single recent play",
			record: ArtistRecord{FirstDiscovered: recent, LastListened: recent},
			want:   true,
		},
		{
			name:   "single play but old",
			record: ArtistRecord{FirstDiscovered: old, LastListened: old},
			want:   false,
		},
		{
			name:   "heard more than once",
			record: ArtistRecord{FirstDiscovered: old, LastListened: recent},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.IsNew(now); got != tt.want {
				t.Errorf("IsNew() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopArtistSet(t *testing.T) {
	set := NewTopArtistSet("Radiohead", `"Tame Impala"`)

	if !set.Contains("radiohead") {
		t.Error("expected set to contain radiohead")
	}
	if !set.Contains(NormalizeArtistKey("Tame Impala")) {
		t.Error("expected set to contain tame impala")
	}
	if set.Contains("four tet") {
		t.Error("did not expect four tet in set")
	}
	if len(set.Keys()) != 2 {
		t.Errorf("Keys() length = %d, want 2", len(set.Keys()))
	}
}

func TestCatalog_JSONShape(t *testing.T) {
	cat := NewCatalog()
	ts, _ := ParseTimestamp("2026-01-10 09:00")
	cat.Records["boards of canada"] = &ArtistRecord{
		Artist:          "Boards of Canada",
		FirstDiscovered: ts,
		LastListened:    ts,
		Track:           "Roygbiv",
		ArtistURL:       "https://www.last.fm/user/someone/library/music/Boards%20of%20Canada",
		TrackURL:        "https://www.last.fm/music/Boards%20of%20Canada/_/Roygbiv",
	}
	cat.Metadata = Metadata{
		LastUpdated:      ts,
		Username:         "someone",
		TotalDiscoveries: 1,
	}

	data, err := json.Marshal(cat)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded["metadata"]; !ok {
		t.Error("expected top-level metadata key")
	}
	if _, ok := decoded["catalog"]; !ok {
		t.Error("expected top-level catalog key")
	}

	var back Catalog
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal into Catalog: %v", err)
	}
	rec, ok := back.Records["boards of canada"]
	if !ok {
		t.Fatal("record missing after round trip")
	}
	if rec.Track != "Roygbiv" || rec.Graduated {
		t.Errorf("unexpected record after round trip: %+v", rec)
	}
}
