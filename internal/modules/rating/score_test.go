package rating

import (
	"encoding/json"
	"testing"
	"time"

	"moviecatalog/internal/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScore(t *testing.T) {
	cases := []struct {
		in   string
		want string
		msg  string
	}{
		{"4", "4.0", ""},
		{"4.25", "4.3", ""},
		{"4.24", "4.2", ""},
		{"0", "0.0", ""},
		{"5.0", "5.0", ""},
		{"5.04", "5.0", ""},
		{"5.05", "", msgScoreRange},
		{"-0.1", "", msgScoreRange},
		{"abc", "", msgScoreInvalid},
		{"", "", msgScoreInvalid},
		{"45e-1", "4.5", ""},
		{"1e-10000000", "", msgScoreInvalid},
		{"1e-2000000000", "", msgScoreInvalid},
		{"4e2000000000", "", msgScoreInvalid},
		{"4.000000000000000000000000000000001", "", msgScoreInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseScore(tc.in)
			if tc.msg != "" {
				errs, ok := validator.AsErrors(err)
				require.True(t, ok)
				assert.Equal(t, tc.msg, errs["score"])
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.StringFixed(1))
		})
	}
}

func TestParseScore_HugeExponentReturnsQuickly(t *testing.T) {
	start := time.Now()
	_, err := ParseScore("1e-50000000")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestScoreInput_AcceptsNumberOrString(t *testing.T) {
	var body struct {
		Score *ScoreInput `json:"score"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"score": 4.5}`), &body))
	assert.Equal(t, "4.5", body.Score.Raw)

	require.NoError(t, json.Unmarshal([]byte(`{"score": "3.0"}`), &body))
	assert.Equal(t, "3.0", body.Score.Raw)

	body.Score = nil
	require.NoError(t, json.Unmarshal([]byte(`{"score": null}`), &body))
	assert.Nil(t, body.Score)
}

func TestParseScoreInput_Required(t *testing.T) {
	_, present, err := ParseScoreInput(nil, false)
	require.NoError(t, err)
	assert.False(t, present)

	_, _, err = ParseScoreInput(nil, true)
	errs, ok := validator.AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, "This field is required.", errs["score"])
}
