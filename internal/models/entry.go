package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/moodlit/internal/constants"
	apperrors "github.com/julianstephens/moodlit/internal/errors"
	"github.com/julianstephens/moodlit/internal/utils"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FactorImpact is the polarity a factor had on a day's mood
type FactorImpact string

const (
	ImpactPositive FactorImpact = "positive"
	ImpactNegative FactorImpact = "negative"
)

// ParseFactorImpact decodes an impact string case-insensitively. Unknown
// values decode as positive.
func ParseFactorImpact(s string) FactorImpact {
	if strings.EqualFold(strings.TrimSpace(s), string(ImpactNegative)) {
		return ImpactNegative
	}
	return ImpactPositive
}

// MoodEntry is a single day's journal record. ID is empty until the remote
// store assigns one. Entries are never mutated in place once committed;
// replacing a day's entry is a delete plus insert.
type MoodEntry struct {
	ID        string                  `json:"id,omitempty"`
	Date      time.Time               `json:"date" validate:"required"`
	MoodLevel float64                 `json:"moodLevel" validate:"gte=1,lte=10"`
	Factors   map[string]FactorImpact `json:"factors" validate:"dive,keys,required,endkeys,oneof=positive negative"`
	Note      string                  `json:"note" validate:"max=2000"`
}

// Validate checks the entry's input fields.
func (e MoodEntry) Validate() error {
	if math.IsNaN(e.MoodLevel) {
		return apperrors.New(apperrors.ErrValidation, "validate entry", fmt.Errorf("mood level is not a number"))
	}
	if err := validate.Struct(e); err != nil {
		return apperrors.New(apperrors.ErrValidation, "validate entry", err)
	}
	for name := range e.Factors {
		if strings.TrimSpace(name) == "" {
			return apperrors.New(apperrors.ErrValidation, "validate entry", fmt.Errorf("factor name cannot be blank"))
		}
	}
	return nil
}

// Clone returns a deep copy of the entry.
func (e MoodEntry) Clone() MoodEntry {
	c := e
	if e.Factors != nil {
		c.Factors = make(map[string]FactorImpact, len(e.Factors))
		for k, v := range e.Factors {
			c.Factors[k] = v
		}
	}
	return c
}

// Day returns the calendar-day key of the entry in loc.
func (e MoodEntry) Day(loc *time.Location) string {
	return utils.DayKey(e.Date, loc)
}

// FactorNames returns the names of the factors selected on the entry.
func (e MoodEntry) FactorNames() []string {
	names := make([]string, 0, len(e.Factors))
	for name := range e.Factors {
		names = append(names, name)
	}
	return names
}

// document is the remote wire shape of an entry. The document id lives
// outside the body.
type document struct {
	Date      *string           `json:"date"`
	MoodLevel *float64          `json:"moodLevel"`
	Factors   map[string]string `json:"factors"`
	Note      string            `json:"note"`
}

// EncodeDocument serializes the entry to its remote document body.
func EncodeDocument(e MoodEntry) ([]byte, error) {
	date := e.Date.Format(time.RFC3339Nano)
	level := e.MoodLevel
	factors := make(map[string]string, len(e.Factors))
	for name, impact := range e.Factors {
		factors[name] = string(impact)
	}
	return json.Marshal(document{
		Date:      &date,
		MoodLevel: &level,
		Factors:   factors,
		Note:      e.Note,
	})
}

// DecodeDocument parses a remote document body. Missing date or mood level,
// an unparseable date, or a non-object factors field is a decode failure.
func DecodeDocument(id string, body []byte) (MoodEntry, error) {
	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return MoodEntry{}, apperrors.New(apperrors.ErrDecode, "decode "+id, err)
	}
	if doc.Date == nil {
		return MoodEntry{}, apperrors.New(apperrors.ErrDecode, "decode "+id, fmt.Errorf("missing date"))
	}
	if doc.MoodLevel == nil {
		return MoodEntry{}, apperrors.New(apperrors.ErrDecode, "decode "+id, fmt.Errorf("missing moodLevel"))
	}
	if _, ok := BandFor(*doc.MoodLevel); !ok {
		return MoodEntry{}, apperrors.New(apperrors.ErrDecode, "decode "+id, fmt.Errorf("moodLevel %v out of range", *doc.MoodLevel))
	}
	date, err := time.Parse(time.RFC3339Nano, *doc.Date)
	if err != nil {
		return MoodEntry{}, apperrors.New(apperrors.ErrDecode, "decode "+id, err)
	}

	factors := make(map[string]FactorImpact, len(doc.Factors))
	for name, impact := range doc.Factors {
		factors[name] = ParseFactorImpact(impact)
	}

	return MoodEntry{
		ID:        id,
		Date:      date,
		MoodLevel: *doc.MoodLevel,
		Factors:   factors,
		Note:      doc.Note,
	}, nil
}

// Band describes one of the five mood-level buckets
type Band struct {
	Name  constants.MoodBand
	Glyph string
	// Upper is the inclusive upper bound of the band.
	Upper float64
}

// Bands lists the mood bands in ascending order. The first band is [1,2];
// every later band is half-open on the left: (2,4], (4,6], (6,8], (8,10].
var Bands = []Band{
	{Name: constants.BandVeryLow, Glyph: "☂", Upper: 2},
	{Name: constants.BandLow, Glyph: "☁", Upper: 4},
	{Name: constants.BandNeutral, Glyph: "⛅", Upper: 6},
	{Name: constants.BandHigh, Glyph: "🌤", Upper: 8},
	{Name: constants.BandVeryHigh, Glyph: "☀", Upper: 10},
}

// BandFor returns the band of a mood level, or false when the level lies
// outside [1,10].
func BandFor(level float64) (Band, bool) {
	if math.IsNaN(level) || level < constants.MinMoodLevel || level > constants.MaxMoodLevel {
		return Band{}, false
	}
	for _, b := range Bands {
		if level <= b.Upper {
			return b, true
		}
	}
	return Band{}, false
}

// FactorInfo describes a built-in factor
type FactorInfo struct {
	Name        string
	Icon        string
	Description string
}

// FactorCatalog lists the built-in factors offered when logging. Other names
// are accepted as free-form factors.
var FactorCatalog = []FactorInfo{
	{Name: "Work", Icon: "💼", Description: "Work-related experiences such as meetings, deadlines, achievements, or challenges."},
	{Name: "Exercise", Icon: "🏃", Description: "Physical activities, workouts, sports, or any form of exercise."},
	{Name: "Weather", Icon: "🌦", Description: "The day's weather conditions and how they made you feel."},
	{Name: "Sleep", Icon: "🛏", Description: "Your sleep quality and quantity from the previous night."},
	{Name: "Social", Icon: "👥", Description: "Interactions with friends, family, colleagues, or social events."},
	{Name: "Food", Icon: "🍽", Description: "Your eating patterns, meals, or any food-related experiences."},
	{Name: "Health", Icon: "❤", Description: "Your physical and mental well-being, including any health-related events."},
	{Name: "News", Icon: "📰", Description: "News events, media consumption, or current events that affected you."},
}

// LookupFactor finds a catalog factor by case-insensitive name.
func LookupFactor(name string) (FactorInfo, bool) {
	for _, f := range FactorCatalog {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return FactorInfo{}, false
}
