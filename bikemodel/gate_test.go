package bikemodel

import (
	"reflect"
	"testing"
)

var proModel = BikeModel{
	ID:               "model_pro",
	ModelName:        "Campus Pro",
	HasGPS:           true,
	HasMobileApp:     true,
	SmartLock:        true,
	HasSpeedSensor:   true,
	HasAntiTheft:     true,
	HasSolarPanel:    true,
	HasPhoneCharging: true,
}

var basicModel = BikeModel{
	ID:           "model_basic",
	ModelName:    "Campus Basic",
	HasGPS:       true,
	HasMobileApp: true,
	SmartLock:    true,
}

func TestParseTier(t *testing.T) {
	for _, s := range []string{"basic", "Plus", "PRO"} {
		if _, err := ParseTier(s); err != nil {
			t.Errorf("ParseTier(%q) returned error: %v", s, err)
		}
	}
	if _, err := ParseTier("enterprise"); err == nil {
		t.Error("ParseTier should reject unknown tiers")
	}
}

func TestGateEnabled(t *testing.T) {
	tests := []struct {
		name    string
		tier    Tier
		model   *BikeModel
		feature Feature
		want    bool
	}{
		{"pro tier, pro model, anti-theft", TierPro, &proModel, FeatureAntiTheft, true},
		{"pro tier, pro model, solar", TierPro, &proModel, FeatureSolarPanel, true},
		{"plus tier caps solar even on pro hardware", TierPlus, &proModel, FeatureSolarPanel, false},
		{"plus tier allows anti-theft on pro hardware", TierPlus, &proModel, FeatureAntiTheft, true},
		{"basic tier caps anti-theft", TierBasic, &proModel, FeatureAntiTheft, false},
		{"basic tier keeps core smart lock", TierBasic, &basicModel, FeatureSmartLock, true},
		{"model without anti-theft hardware", TierPro, &basicModel, FeatureAntiTheft, false},
		{"unknown model enables nothing", TierPro, nil, FeatureSmartLock, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(tt.tier)
			if got := g.Enabled(tt.model, tt.feature); got != tt.want {
				t.Errorf("Gate(%s).Enabled(%v, %s) = %v, want %v", tt.tier, tt.model, tt.feature, got, tt.want)
			}
		})
	}
}

func TestGateBadges(t *testing.T) {
	got := NewGate(TierPro).Badges(&proModel)
	want := []string{"GPS", "Speed", "Anti-Theft", "Solar", "Phone Charging", "Mobile App"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pro badges = %v, want %v", got, want)
	}

	got = NewGate(TierBasic).Badges(&proModel)
	want = []string{"GPS", "Mobile App"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("basic-tier badges = %v, want %v", got, want)
	}

	if badges := NewGate(TierPro).Badges(nil); badges != nil {
		t.Errorf("nil model badges = %v, want none", badges)
	}
}
