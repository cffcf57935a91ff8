package rating

import (
	"bytes"
	"encoding/json"
	"strings"

	"moviecatalog/internal/domain"
	"moviecatalog/internal/pkg/validator"

	"github.com/shopspring/decimal"
)

// ScoreInput accepts a score sent either as a JSON number or a string.
type ScoreInput struct {
	Raw string
	Set bool
}

func (s *ScoreInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ScoreInput{}
		return nil
	}
	s.Set = true
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &s.Raw)
	}
	s.Raw = string(b)
	return nil
}

func (s ScoreInput) MarshalJSON() ([]byte, error) {
	if !s.Set {
		return []byte("null"), nil
	}
	return json.Marshal(s.Raw)
}

// Score returns a ScoreInput for v.
func Score(v string) *ScoreInput {
	return &ScoreInput{Raw: v, Set: true}
}

// Rounding rescales by 10^|exponent|, so inputs are bounded before parsing.
const (
	maxScoreLen      = 32
	maxScoreExponent = 10
)

// ParseScore quantizes raw to one decimal place (half-up) and checks it lies
// within [0.0, 5.0].
func ParseScore(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > maxScoreLen {
		return decimal.Decimal{}, validator.Errors{"score": msgScoreInvalid}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, validator.Errors{"score": msgScoreInvalid}
	}
	if e := d.Exponent(); e < -maxScoreExponent || e > maxScoreExponent {
		return decimal.Decimal{}, validator.Errors{"score": msgScoreInvalid}
	}
	d = d.Round(1)
	if d.LessThan(domain.MinScore) || d.GreaterThan(domain.MaxScore) {
		return decimal.Decimal{}, validator.Errors{"score": msgScoreRange}
	}
	return d, nil
}

// ParseScoreInput returns the score when present. A required missing score
// is a field error.
func ParseScoreInput(in *ScoreInput, required bool) (decimal.Decimal, bool, error) {
	if in == nil || !in.Set {
		if required {
			return decimal.Decimal{}, false, validator.Errors{"score": "This field is required."}
		}
		return decimal.Decimal{}, false, nil
	}
	d, err := ParseScore(in.Raw)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	return d, true, nil
}
