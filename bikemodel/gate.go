package bikemodel

import (
	"errors"
	"strings"
)

// Tier is the product line the deployment is sold as. The tier caps which
// features are exposed regardless of what the bike model itself carries.
type Tier string

const (
	TierBasic Tier = "basic"
	TierPlus  Tier = "plus"
	TierPro   Tier = "pro"
)

var ErrUnknownTier = errors.New("unknown product tier")

func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(s)) {
	case TierBasic:
		return TierBasic, nil
	case TierPlus:
		return TierPlus, nil
	case TierPro:
		return TierPro, nil
	}
	return "", ErrUnknownTier
}

// tierFeatures mirrors the shipped product configurations. Core features
// (GPS, mobile app, smart lock) are present on every tier.
var tierFeatures = map[Tier]map[Feature]bool{
	TierBasic: {
		FeatureGPS:       true,
		FeatureMobileApp: true,
		FeatureSmartLock: true,
	},
	TierPlus: {
		FeatureGPS:         true,
		FeatureMobileApp:   true,
		FeatureSmartLock:   true,
		FeatureSpeedSensor: true,
		FeatureAntiTheft:   true,
	},
	TierPro: {
		FeatureGPS:           true,
		FeatureMobileApp:     true,
		FeatureSmartLock:     true,
		FeatureSpeedSensor:   true,
		FeatureAntiTheft:     true,
		FeatureSolarPanel:    true,
		FeaturePhoneCharging: true,
	},
}

// Gate answers "is this feature actionable for this model" for one configured
// product tier. The tier is fixed at construction; there is no ambient
// tier state anywhere else in the service.
type Gate struct {
	tier Tier
}

func NewGate(tier Tier) Gate {
	return Gate{tier: tier}
}

func (g Gate) Tier() Tier {
	return g.tier
}

// Enabled reports whether a feature is both present on the model and included
// in the configured tier. A nil model (unknown model ID) enables nothing.
func (g Gate) Enabled(m *BikeModel, f Feature) bool {
	if m == nil {
		return false
	}
	return m.Has(f) && tierFeatures[g.tier][f]
}

// Badges returns display labels for every enabled feature of a model, in a
// fixed order.
func (g Gate) Badges(m *BikeModel) []string {
	labels := []struct {
		f     Feature
		label string
	}{
		{FeatureGPS, "GPS"},
		{FeatureSpeedSensor, "Speed"},
		{FeatureAntiTheft, "Anti-Theft"},
		{FeatureSolarPanel, "Solar"},
		{FeaturePhoneCharging, "Phone Charging"},
		{FeatureMobileApp, "Mobile App"},
	}

	var badges []string
	for _, l := range labels {
		if g.Enabled(m, l.f) {
			badges = append(badges, l.label)
		}
	}
	return badges
}
