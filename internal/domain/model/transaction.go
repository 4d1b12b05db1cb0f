package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Encrypted is an opaque ciphertext blob produced by the field codec
// (nonce || ciphertext || GCM tag). It carries no plaintext structure and
// cannot be queried, compared, or sorted at the storage layer. The only way
// back to a value is through the codec, which keeps plaintext out of the
// persistence types entirely.
type Encrypted []byte

// TxnType is the direction of a ledger entry. Stored lowercase; the amount
// itself is always positive, direction is carried here.
type TxnType string

const (
	TxnIncome  TxnType = "income"
	TxnExpense TxnType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TxnType) Valid() bool {
	return t == TxnIncome || t == TxnExpense
}

// Transaction is the persisted form of a ledger entry. Every sensitive field
// is an independently encrypted blob; there are no plaintext columns.
type Transaction struct {
	ID        int64
	CompanyID int64
	Date      Encrypted
	Type      Encrypted
	Category  Encrypted
	Amount    Encrypted
	Notes     Encrypted
	CreatedAt time.Time
}

// Entry is the decrypted, caller-facing view of a Transaction. Fields that
// fail to decrypt come back as their zero values (empty string, zero
// decimal) rather than erroring, so reports stay readable over partially
// corrupt history.
type Entry struct {
	ID        int64
	Date      string // ISO-8601 calendar date, e.g. "2024-03-01"
	Type      TxnType
	Category  string
	Amount    decimal.Decimal
	Notes     string
	CreatedAt time.Time
}
