package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TransferStatus represents the status of an inter-branch stock transfer
type TransferStatus int

const (
	TransferStatusPending   TransferStatus = 0
	TransferStatusApproved  TransferStatus = 1
	TransferStatusCompleted TransferStatus = 2
	TransferStatusCancelled TransferStatus = 3
)

func (s TransferStatus) String() string {
	return [...]string{"Pending", "Approved", "Completed", "Cancelled"}[s]
}

// IsTerminal reports whether the transfer can no longer change state
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusCancelled
}

func (s TransferStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TransferStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = TransferStatus(i)
		return nil
	}
	switch str {
	case "Pending":
		*s = TransferStatusPending
	case "Approved":
		*s = TransferStatusApproved
	case "Completed":
		*s = TransferStatusCompleted
	case "Cancelled":
		*s = TransferStatusCancelled
	}
	return nil
}

func (s TransferStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *TransferStatus) Scan(value interface{}) error {
	if value == nil {
		*s = TransferStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = TransferStatus(v)
	case int:
		*s = TransferStatus(v)
	}
	return nil
}
