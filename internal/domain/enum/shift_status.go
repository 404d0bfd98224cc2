package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ShiftStatus represents the lifecycle state of a cashier shift
type ShiftStatus int

const (
	ShiftStatusOpen        ShiftStatus = 0
	ShiftStatusClosed      ShiftStatus = 1
	ShiftStatusForceClosed ShiftStatus = 2
)

func (s ShiftStatus) String() string {
	return [...]string{"Open", "Closed", "ForceClosed"}[s]
}

// IsTerminal reports whether the shift can no longer change state
func (s ShiftStatus) IsTerminal() bool {
	return s == ShiftStatusClosed || s == ShiftStatusForceClosed
}

func (s ShiftStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ShiftStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ShiftStatus(i)
		return nil
	}
	switch str {
	case "Open":
		*s = ShiftStatusOpen
	case "Closed":
		*s = ShiftStatusClosed
	case "ForceClosed":
		*s = ShiftStatusForceClosed
	}
	return nil
}

func (s ShiftStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ShiftStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ShiftStatusOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ShiftStatus(v)
	case int:
		*s = ShiftStatus(v)
	}
	return nil
}
