// internal/domain/billing/features.go
package billing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FeatureKind discriminates the three shapes a plan feature can take.
type FeatureKind int

const (
	FeatureBool FeatureKind = iota
	FeatureLimit
	FeatureUnlimited
)

// UnlimitedValue is the sentinel stored on entitlement rows for
// features without a numeric cap.
const UnlimitedValue int64 = -1

// FeatureValue is the typed form of a single plan feature. Legacy plan
// definitions encode features loosely (booleans, "true"/"false"
// strings, numbers, numeric strings, the "unlimited" keyword, -1);
// decoding happens exactly once here so the rest of the code never
// touches the raw JSON.
type FeatureValue struct {
	Kind    FeatureKind
	Enabled bool
	Limit   int64
}

// FeatureMap is a plan's feature set keyed by feature name,
// e.g. "max_listings", "hero_slots", "analytics".
type FeatureMap map[string]FeatureValue

func BoolFeature(enabled bool) FeatureValue {
	return FeatureValue{Kind: FeatureBool, Enabled: enabled}
}

func LimitFeature(n int64) FeatureValue {
	return FeatureValue{Kind: FeatureLimit, Limit: n}
}

func UnlimitedFeature() FeatureValue {
	return FeatureValue{Kind: FeatureUnlimited}
}

// EntitlementValue maps a feature to the numeric value stored on its
// entitlement row: booleans become 0/1, limits keep their count and
// unlimited features use the -1 sentinel.
func (v FeatureValue) EntitlementValue() int64 {
	switch v.Kind {
	case FeatureUnlimited:
		return UnlimitedValue
	case FeatureBool:
		if v.Enabled {
			return 1
		}
		return 0
	default:
		return v.Limit
	}
}

func (v FeatureValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case FeatureUnlimited:
		return json.Marshal("unlimited")
	case FeatureBool:
		return json.Marshal(v.Enabled)
	default:
		return json.Marshal(v.Limit)
	}
}

func (v *FeatureValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch val := raw.(type) {
	case bool:
		*v = BoolFeature(val)
		return nil

	case float64:
		if int64(val) == UnlimitedValue {
			*v = UnlimitedFeature()
			return nil
		}
		if val < 0 {
			return fmt.Errorf("negative feature limit: %v", val)
		}
		*v = LimitFeature(int64(val))
		return nil

	case string:
		s := strings.TrimSpace(strings.ToLower(val))
		switch s {
		case "unlimited", "-1":
			*v = UnlimitedFeature()
			return nil
		case "true":
			*v = BoolFeature(true)
			return nil
		case "false":
			*v = BoolFeature(false)
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("unrecognized feature value %q", val)
		}
		if n < 0 {
			return fmt.Errorf("negative feature limit: %d", n)
		}
		*v = LimitFeature(n)
		return nil

	default:
		return fmt.Errorf("unsupported feature value type %T", raw)
	}
}

// Remaining computes how much of a limit is left given usage. An
// unlimited entitlement always reports -1; exhausted limits clamp to 0.
func Remaining(limit, used int64) int64 {
	if limit == UnlimitedValue {
		return UnlimitedValue
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
