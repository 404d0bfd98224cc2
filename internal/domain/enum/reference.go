package enum

// ReferenceType tags the polymorphic (referenceType, referenceId) link on a
// ledger entry back to the business record that caused it. Entries never
// hold typed back-references, only this forward lookup pair.
type ReferenceType string

const (
	ReferenceOrder           ReferenceType = "order"
	ReferenceShift           ReferenceType = "shift"
	ReferenceTransfer        ReferenceType = "transfer"
	ReferencePurchaseInvoice ReferenceType = "purchase_invoice"
	ReferenceManual          ReferenceType = "manual"
)

// PaymentMethod is how an invoice payment or order was settled
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
)
