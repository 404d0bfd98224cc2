package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// InvoiceStatus represents the status of a supplier purchase invoice
type InvoiceStatus int

const (
	InvoiceStatusDraft             InvoiceStatus = 0
	InvoiceStatusConfirmed         InvoiceStatus = 1
	InvoiceStatusPartiallyPaid     InvoiceStatus = 2
	InvoiceStatusPaid              InvoiceStatus = 3
	InvoiceStatusPartiallyReturned InvoiceStatus = 4
	InvoiceStatusReturned          InvoiceStatus = 5
	InvoiceStatusCancelled         InvoiceStatus = 6
)

func (s InvoiceStatus) String() string {
	return [...]string{
		"Draft", "Confirmed", "PartiallyPaid", "Paid",
		"PartiallyReturned", "Returned", "Cancelled",
	}[s]
}

// IsEditable reports whether invoice line items may still be changed
func (s InvoiceStatus) IsEditable() bool {
	return s == InvoiceStatusDraft
}

// AcceptsPayments reports whether new payments may be applied
func (s InvoiceStatus) AcceptsPayments() bool {
	switch s {
	case InvoiceStatusConfirmed, InvoiceStatusPartiallyPaid, InvoiceStatusPartiallyReturned:
		return true
	}
	return false
}

// AcceptsReturns reports whether received goods may still be sent back
func (s InvoiceStatus) AcceptsReturns() bool {
	switch s {
	case InvoiceStatusConfirmed, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusPartiallyReturned:
		return true
	}
	return false
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = InvoiceStatus(i)
		return nil
	}
	names := []string{
		"Draft", "Confirmed", "PartiallyPaid", "Paid",
		"PartiallyReturned", "Returned", "Cancelled",
	}
	for i, name := range names {
		if name == str {
			*s = InvoiceStatus(i)
			return nil
		}
	}
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InvoiceStatus(v)
	case int:
		*s = InvoiceStatus(v)
	}
	return nil
}
