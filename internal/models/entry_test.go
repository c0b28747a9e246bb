package models

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	apperrors "github.com/julianstephens/moodlit/internal/errors"
)

func validEntry() MoodEntry {
	return MoodEntry{
		Date:      time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
		MoodLevel: 6.5,
		Factors:   map[string]FactorImpact{"Exercise": ImpactPositive, "Sleep": ImpactNegative},
		Note:      "ran before work",
	}
}

func TestMoodEntryValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *MoodEntry)
		wantErr bool
	}{
		{name: "valid", mutate: func(e *MoodEntry) {}},
		{name: "lower bound", mutate: func(e *MoodEntry) { e.MoodLevel = 1 }},
		{name: "upper bound", mutate: func(e *MoodEntry) { e.MoodLevel = 10 }},
		{name: "no factors", mutate: func(e *MoodEntry) { e.Factors = nil }},
		{name: "below range", mutate: func(e *MoodEntry) { e.MoodLevel = 0.5 }, wantErr: true},
		{name: "above range", mutate: func(e *MoodEntry) { e.MoodLevel = 10.1 }, wantErr: true},
		{name: "NaN", mutate: func(e *MoodEntry) { e.MoodLevel = math.NaN() }, wantErr: true},
		{name: "zero date", mutate: func(e *MoodEntry) { e.Date = time.Time{} }, wantErr: true},
		{name: "bad impact", mutate: func(e *MoodEntry) { e.Factors["Work"] = "meh" }, wantErr: true},
		{name: "blank factor name", mutate: func(e *MoodEntry) { e.Factors["  "] = ImpactPositive }, wantErr: true},
		{name: "note too long", mutate: func(e *MoodEntry) { e.Note = strings.Repeat("x", constants.MaxNoteLength+1) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(&e)
			err := e.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.Is(err, apperrors.ErrValidation) {
				t.Errorf("Validate() error kind = %v, want ErrValidation", apperrors.KindOf(err))
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	e := validEntry()
	c := e.Clone()
	c.Factors["Exercise"] = ImpactNegative

	if e.Factors["Exercise"] != ImpactPositive {
		t.Error("mutating the clone's factors changed the original")
	}
}

func TestParseFactorImpact(t *testing.T) {
	tests := map[string]FactorImpact{
		"positive":   ImpactPositive,
		"NEGATIVE":   ImpactNegative,
		" Negative ": ImpactNegative,
		"unknown":    ImpactPositive,
		"":           ImpactPositive,
	}
	for in, want := range tests {
		if got := ParseFactorImpact(in); got != want {
			t.Errorf("ParseFactorImpact(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	e := validEntry()
	body, err := EncodeDocument(e)
	if err != nil {
		t.Fatalf("EncodeDocument() error = %v", err)
	}
	if strings.Contains(string(body), `"id"`) {
		t.Errorf("document body should not carry the id: %s", body)
	}

	got, err := DecodeDocument("doc-1", body)
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if got.ID != "doc-1" {
		t.Errorf("ID = %q, want doc-1", got.ID)
	}
	if !got.Date.Equal(e.Date) || got.MoodLevel != e.MoodLevel || got.Note != e.Note {
		t.Errorf("decoded entry = %+v, want %+v", got, e)
	}
	if got.Factors["Sleep"] != ImpactNegative {
		t.Errorf("Sleep impact = %q, want negative", got.Factors["Sleep"])
	}
}

func TestDecodeDocumentFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{`},
		{name: "missing date", body: `{"moodLevel": 5, "factors": {}, "note": ""}`},
		{name: "missing mood level", body: `{"date": "2026-10-14T09:00:00Z"}`},
		{name: "bad date", body: `{"date": "yesterday", "moodLevel": 5}`},
		{name: "mood level below range", body: `{"date": "2026-10-14T09:00:00Z", "moodLevel": 0}`},
		{name: "mood level above range", body: `{"date": "2026-10-14T09:00:00Z", "moodLevel": 11}`},
		{name: "factors not an object", body: `{"date": "2026-10-14T09:00:00Z", "moodLevel": 5, "factors": ["Sleep"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument("bad", []byte(tt.body))
			if !apperrors.Is(err, apperrors.ErrDecode) {
				t.Errorf("DecodeDocument() error = %v, want ErrDecode", err)
			}
		})
	}
}

func TestDecodeDocumentLenientImpact(t *testing.T) {
	body := `{"date": "2026-10-14T09:00:00Z", "moodLevel": 4, "factors": {"News": "Negative", "Food": "tasty"}}`
	e, err := DecodeDocument("x", []byte(body))
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if e.Factors["News"] != ImpactNegative || e.Factors["Food"] != ImpactPositive {
		t.Errorf("factors = %v", e.Factors)
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		level float64
		want  constants.MoodBand
		ok    bool
	}{
		{1, constants.BandVeryLow, true},
		{1.5, constants.BandVeryLow, true},
		{2, constants.BandVeryLow, true},
		{2.01, constants.BandLow, true},
		{4, constants.BandLow, true},
		{5, constants.BandNeutral, true},
		{6, constants.BandNeutral, true},
		{7, constants.BandHigh, true},
		{8, constants.BandHigh, true},
		{9, constants.BandVeryHigh, true},
		{10, constants.BandVeryHigh, true},
		{0.9, "", false},
		{10.5, "", false},
	}

	for _, tt := range tests {
		got, ok := BandFor(tt.level)
		if ok != tt.ok || got.Name != tt.want {
			t.Errorf("BandFor(%v) = (%q, %v), want (%q, %v)", tt.level, got.Name, ok, tt.want, tt.ok)
		}
	}
}

func TestLookupFactor(t *testing.T) {
	f, ok := LookupFactor("exercise")
	if !ok || f.Name != "Exercise" {
		t.Errorf("LookupFactor(exercise) = %+v, %v", f, ok)
	}
	if _, ok := LookupFactor("Gardening"); ok {
		t.Error("LookupFactor should not find free-form factors")
	}
}

func TestCatalogStreakSlotShared(t *testing.T) {
	streaks := 0
	ids := make(map[string]bool)
	for _, a := range Catalog() {
		if ids[a.ID] {
			t.Errorf("duplicate achievement id %q", a.ID)
		}
		ids[a.ID] = true
		if a.Type == constants.AchievementStreak {
			streaks++
		}
		if a.Unlocked {
			t.Errorf("catalog item %q starts unlocked", a.ID)
		}
	}
	if streaks != 2 {
		t.Errorf("streak catalog items = %d, want 2", streaks)
	}
}

func TestSettingsMapping(t *testing.T) {
	in := DefaultSettings()
	in.Timezone = "Europe/Berlin"
	out, err := MapToSettings(SettingsToMap(in))
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if out.Timezone != "Europe/Berlin" || len(out.ProbeHosts) != 2 || out.UnlockToastSeconds != 3 {
		t.Errorf("MapToSettings() = %+v", out)
	}

	if _, err := MapToSettings(map[string]string{constants.SettingProbeTimeoutMs: "soon"}); err == nil {
		t.Error("expected parse error for probe_timeout_ms")
	}

	var empty Settings
	ApplyDefaultSettings(&empty)
	if empty.Timezone != constants.DefaultTimezone || empty.ProbeTimeoutMs != constants.DefaultProbeTimeoutMs {
		t.Errorf("ApplyDefaultSettings() = %+v", empty)
	}
}

func TestProfileValidate(t *testing.T) {
	p := Profile{UserID: "u1", Email: "a@example.com", Age: 30}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	p.Age = 200
	if err := p.Validate(); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Validate() error = %v, want ErrValidation", err)
	}
	if err := (ProfileFields{Name: "", Age: 20}).Validate(); err == nil {
		t.Error("ProfileFields without a name should fail validation")
	}
}
