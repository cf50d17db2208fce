package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ItemType discriminates estimate tree nodes. A section groups children
// and carries no monetary fields; a line carries quantities and prices.
type ItemType string

const (
	ItemTypeSection ItemType = "section"
	ItemTypeLine    ItemType = "line"
)

func (t ItemType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known item type.
func (t ItemType) IsValid() bool {
	return t == ItemTypeSection || t == ItemTypeLine
}

func (t ItemType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *ItemType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*t = ItemType(str)
	return nil
}

func (t ItemType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *ItemType) Scan(value interface{}) error {
	if value == nil {
		*t = ItemTypeLine
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = ItemType(v)
	case []byte:
		*t = ItemType(string(v))
	}
	return nil
}
