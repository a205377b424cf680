// Package bikemodel holds the static per-model capability table and the
// product-tier gate that decides which optional features are actionable.
package bikemodel

// Feature is an optional or core hardware capability of a bike model.
type Feature string

const (
	FeatureGPS           Feature = "hasGPS"
	FeatureMobileApp     Feature = "hasMobileApp"
	FeatureSmartLock     Feature = "smartLock"
	FeatureSpeedSensor   Feature = "hasSpeedSensor"
	FeatureAntiTheft     Feature = "hasAntiTheft"
	FeatureSolarPanel    Feature = "hasSolarPanel"
	FeaturePhoneCharging Feature = "hasPhoneCharging"
)

// BikeModel is a static capability record for a bike model.
type BikeModel struct {
	ID        string
	ModelName string `db:"model_name"`

	HasGPS           bool `db:"has_gps"`
	HasMobileApp     bool `db:"has_mobile_app"`
	SmartLock        bool `db:"smart_lock"`
	HasSpeedSensor   bool `db:"has_speed_sensor"`
	HasAntiTheft     bool `db:"has_anti_theft"`
	HasSolarPanel    bool `db:"has_solar_panel"`
	HasPhoneCharging bool `db:"has_phone_charging"`
}

func (m BikeModel) Has(f Feature) bool {
	switch f {
	case FeatureGPS:
		return m.HasGPS
	case FeatureMobileApp:
		return m.HasMobileApp
	case FeatureSmartLock:
		return m.SmartLock
	case FeatureSpeedSensor:
		return m.HasSpeedSensor
	case FeatureAntiTheft:
		return m.HasAntiTheft
	case FeatureSolarPanel:
		return m.HasSolarPanel
	case FeaturePhoneCharging:
		return m.HasPhoneCharging
	}
	return false
}
