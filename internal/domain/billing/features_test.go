package billing_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beedab-service/internal/domain/billing"
)

func TestFeatureValueUnmarshal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want billing.FeatureValue
	}{
		{"json true", `true`, billing.BoolFeature(true)},
		{"json false", `false`, billing.BoolFeature(false)},
		{"string true", `"true"`, billing.BoolFeature(true)},
		{"string false", `"false"`, billing.BoolFeature(false)},
		{"number", `25`, billing.LimitFeature(25)},
		{"zero", `0`, billing.LimitFeature(0)},
		{"numeric string", `"10"`, billing.LimitFeature(10)},
		{"unlimited keyword", `"unlimited"`, billing.UnlimitedFeature()},
		{"unlimited sentinel", `-1`, billing.UnlimitedFeature()},
		{"unlimited string sentinel", `"-1"`, billing.UnlimitedFeature()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got billing.FeatureValue
			require.NoError(t, json.Unmarshal([]byte(tc.in), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFeatureValueUnmarshalRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`"soon"`, `-5`, `"-7"`, `[1,2]`, `{"a":1}`} {
		var v billing.FeatureValue
		assert.Error(t, json.Unmarshal([]byte(in), &v), "input %s", in)
	}
}

func TestFeatureValueRoundTrip(t *testing.T) {
	t.Parallel()

	fm := billing.FeatureMap{
		"max_listings": billing.LimitFeature(5),
		"max_photos":   billing.LimitFeature(20),
		"analytics":    billing.BoolFeature(true),
		"hero_slots":   billing.UnlimitedFeature(),
	}

	raw, err := json.Marshal(fm)
	require.NoError(t, err)

	var decoded billing.FeatureMap
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, fm, decoded)
}

func TestEntitlementValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1), billing.BoolFeature(true).EntitlementValue())
	assert.Equal(t, int64(0), billing.BoolFeature(false).EntitlementValue())
	assert.Equal(t, int64(7), billing.LimitFeature(7).EntitlementValue())
	assert.Equal(t, billing.UnlimitedValue, billing.UnlimitedFeature().EntitlementValue())
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	// Unlimited ignores usage entirely.
	assert.Equal(t, int64(-1), billing.Remaining(-1, 0))
	assert.Equal(t, int64(-1), billing.Remaining(-1, 9999))

	assert.Equal(t, int64(2), billing.Remaining(5, 3))
	assert.Equal(t, int64(5), billing.Remaining(5, 0))

	// Overconsumption clamps to zero, never negative.
	assert.Equal(t, int64(0), billing.Remaining(5, 5))
	assert.Equal(t, int64(0), billing.Remaining(5, 7))
}
