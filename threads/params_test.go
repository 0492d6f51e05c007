package threads

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	base := Params{"access_token": "client-token", "fields": "id"}
	overrides := Params{"access_token": "param-token", "limit": 10}

	merged := Merge(base, overrides)

	assert.Equal(t, Params{
		"access_token": "param-token",
		"fields":       "id",
		"limit":        10,
	}, merged)

	// inputs are untouched
	assert.Equal(t, "client-token", base["access_token"])
	assert.Len(t, base, 2)
	assert.Len(t, overrides, 2)

	assert.Empty(t, Merge(nil, nil))
	assert.Equal(t, Params{"a": 1}, Merge(nil, Params{"a": 1}))
}

func TestParams_Values(t *testing.T) {
	since := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		params   Params
		expected url.Values
		wantErr  bool
	}{
		{
			name:     "nil values are skipped",
			params:   Params{"access_token": nil, "fields": "id"},
			expected: url.Values{"fields": {"id"}},
		},
		{
			name: "scalars",
			params: Params{
				"limit":   25,
				"ratio":   0.5,
				"enabled": true,
				"since":   since,
			},
			expected: url.Values{
				"limit":   {"25"},
				"ratio":   {"0.5"},
				"enabled": {"true"},
				"since":   {"2024-05-01T12:00:00Z"},
			},
		},
		{
			name:     "decoded JSON numbers keep their digits",
			params:   Params{"reply_to_id": json.Number("17841400000000001"), "ids": []any{json.Number("1"), json.Number("2")}},
			expected: url.Values{"reply_to_id": {"17841400000000001"}, "ids": {"1", "2"}},
		},
		{
			name:     "slices add one value per element",
			params:   Params{"ids": []string{"1", "2"}, "n": []any{3, nil, "x"}},
			expected: url.Values{"ids": {"1", "2"}, "n": {"3", "x"}},
		},
		{
			name:    "nested objects are rejected",
			params:  Params{"filter": map[string]any{"a": 1}},
			wantErr: true,
		},
		{
			name:    "nested slices are rejected",
			params:  Params{"matrix": [][]int{{1}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := tt.params.Values()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, values)
		})
	}
}
