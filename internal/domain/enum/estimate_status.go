package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// EstimateStatus represents the lifecycle status of an estimate version.
// Only draft versions are editable; all other statuses are read-only
// snapshots. Transitions are monotonic forward: draft -> sent ->
// accepted, and any non-archived status -> archived.
type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "draft"
	EstimateStatusSent     EstimateStatus = "sent"
	EstimateStatusAccepted EstimateStatus = "accepted"
	EstimateStatusArchived EstimateStatus = "archived"
)

func (s EstimateStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known estimate status.
func (s EstimateStatus) IsValid() bool {
	switch s {
	case EstimateStatusDraft, EstimateStatusSent, EstimateStatusAccepted, EstimateStatusArchived:
		return true
	}
	return false
}

// IsEditable reports whether the version's items and pricing context may
// still be mutated.
func (s EstimateStatus) IsEditable() bool {
	return s == EstimateStatusDraft
}

// CanTransitionTo reports whether the forward transition s -> target is
// allowed. No backward transition exists.
func (s EstimateStatus) CanTransitionTo(target EstimateStatus) bool {
	if target == EstimateStatusArchived {
		return s != EstimateStatusArchived
	}
	switch s {
	case EstimateStatusDraft:
		return target == EstimateStatusSent
	case EstimateStatusSent:
		return target == EstimateStatusAccepted
	}
	return false
}

func (s EstimateStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *EstimateStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = EstimateStatus(str)
	return nil
}

func (s EstimateStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *EstimateStatus) Scan(value interface{}) error {
	if value == nil {
		*s = EstimateStatusDraft
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = EstimateStatus(v)
	case []byte:
		*s = EstimateStatus(string(v))
	}
	return nil
}
