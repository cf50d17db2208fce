package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// RoundingMode selects how an estimate's final TTC total is rounded to a
// multiple of the version's rounding step.
type RoundingMode string

const (
	RoundingModeNone    RoundingMode = "none"
	RoundingModeNearest RoundingMode = "nearest"
	RoundingModeUp      RoundingMode = "up"
	RoundingModeDown    RoundingMode = "down"
)

func (m RoundingMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known rounding mode.
func (m RoundingMode) IsValid() bool {
	switch m {
	case RoundingModeNone, RoundingModeNearest, RoundingModeUp, RoundingModeDown:
		return true
	}
	return false
}

func (m RoundingMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(m))
}

func (m *RoundingMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*m = RoundingMode(str)
	return nil
}

func (m RoundingMode) Value() (driver.Value, error) {
	return string(m), nil
}

func (m *RoundingMode) Scan(value interface{}) error {
	if value == nil {
		*m = RoundingModeNone
		return nil
	}
	switch v := value.(type) {
	case string:
		*m = RoundingMode(v)
	case []byte:
		*m = RoundingMode(string(v))
	}
	return nil
}
