package models

// SensorKind selects which threshold scale applies to a raw value.
type SensorKind string

const (
	KindSoilMoisture SensorKind = "soil_moisture"
	KindLight        SensorKind = "light"
)

// Condition is the qualitative bucket for a raw sensor value. It is never
// stored, always recomputed from the raw value on demand.
type Condition string

const (
	ConditionGood Condition = "good"
	ConditionOkay Condition = "okay"
	ConditionBad  Condition = "bad"
)

// Thresholds holds the per-sensor condition boundaries on the ADC scale.
// Soil moisture is inverted: lower raw values mean wetter soil.
type Thresholds struct {
	SoilGood  int `yaml:"soil_good" json:"soil_good"`
	SoilOkay  int `yaml:"soil_okay" json:"soil_okay"`
	LightOkay int `yaml:"light_okay" json:"light_okay"`
	LightGood int `yaml:"light_good" json:"light_good"`
}

// DefaultThresholds returns the calibration defaults for a 0..4095 scale.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SoilGood:  1500,
		SoilOkay:  2500,
		LightOkay: 1500,
		LightGood: 3000,
	}
}

// Classify maps a raw value to a Condition for the given sensor kind.
// Soil uses inclusive upper bounds (value == SoilGood is still Good); light
// uses an inclusive lower bound (value == LightOkay is already Okay). The
// asymmetry matches the device calibration sheet.
func Classify(kind SensorKind, value int, t Thresholds) Condition {
	switch kind {
	case KindSoilMoisture:
		if value <= t.SoilGood {
			return ConditionGood
		}
		if value <= t.SoilOkay {
			return ConditionOkay
		}
		return ConditionBad
	case KindLight:
		if value < t.LightOkay {
			return ConditionBad
		}
		if value < t.LightGood {
			return ConditionOkay
		}
		return ConditionGood
	default:
		return ConditionBad
	}
}
