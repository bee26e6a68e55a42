package taxlots

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransaction is returned by Validate for malformed transactions.
var ErrInvalidTransaction = errors.New("invalid transaction")

// TransactionType is a typed string identifying a transaction.
type TransactionType string

// Transaction types understood by the Accountant.
const (
	Buy  TransactionType = "BUY"
	Sell TransactionType = "SELL"
)

// Transaction is an immutable record of a purchase or a sale of the tracked
// security.
//
// It is a plain value: every Accountant receives its own copy, so nothing an
// Accountant does to its lots is ever visible to another one.
type Transaction struct {
	Type  TransactionType // Type is either Buy or Sell.
	Size  Quantity        // Size is the number of units bought or sold.
	Price Money           // Price is the unit price: the cost basis for a Buy, the sale price for a Sell.
	On    time.Time       // On is the transaction timestamp.
}

// NewBuy creates a purchase of size units at price per unit.
func NewBuy(on time.Time, size Quantity, price Money) Transaction {
	return Transaction{Type: Buy, Size: size, Price: price, On: on}
}

// NewSell creates a sale of size units at price per unit.
func NewSell(on time.Time, size Quantity, price Money) Transaction {
	return Transaction{Type: Sell, Size: size, Price: price, On: on}
}

// Validate reports the first reason why the transaction cannot be processed.
// Unknown types are not an error here: the Accountant ignores them.
func (t Transaction) Validate() error {
	if !t.Size.IsPositive() {
		return fmt.Errorf("%w: size %s must be positive", ErrInvalidTransaction, t.Size)
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("%w: price %s must not be negative", ErrInvalidTransaction, t.Price.Fixed(2))
	}
	if t.On.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidTransaction)
	}
	return nil
}

// String returns a short human readable form, like "BUY 10 @ 5.00 on 2024-01-01".
func (t Transaction) String() string {
	return fmt.Sprintf("%s %s @ %s on %s", t.Type, t.Size, t.Price.Fixed(2), t.On.Format(DateFormat))
}
