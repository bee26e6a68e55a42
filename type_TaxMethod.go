package taxlots

import (
	"errors"
	"fmt"
)

// ErrUnknownMethod is returned when a tax method name is not recognized.
var ErrUnknownMethod = errors.New("unknown tax method")

// TaxMethod defines the policy used to pick which open lots are debited first
// when a sale only partially covers the open position.
type TaxMethod int

const (
	// FIFO (First-In, First-Out) sells the oldest lots first.
	FIFO TaxMethod = iota
	// LIFO (Last-In, First-Out) sells the most recent lots first.
	LIFO
	// TaxOptimizer harvests losses before gains, realizes short-term losses
	// first and defers short-term gains.
	TaxOptimizer
	// HighCost sells the most expensive lots first.
	HighCost
	// LowCost sells the cheapest lots first.
	LowCost
)

// Methods returns all the tax methods in their reporting order.
func Methods() []TaxMethod {
	return []TaxMethod{FIFO, LIFO, TaxOptimizer, HighCost, LowCost}
}

func (m TaxMethod) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case TaxOptimizer:
		return "tax-optimizer"
	case HighCost:
		return "high-cost"
	case LowCost:
		return "low-cost"
	default:
		return "unknown"
	}
}

// Description returns a one line explanation of the lot ordering.
func (m TaxMethod) Description() string {
	switch m {
	case FIFO:
		return "oldest lots first"
	case LIFO:
		return "newest lots first"
	case TaxOptimizer:
		return "losses first (short-term before long-term), then break-even lots, then gains (long-term before short-term)"
	case HighCost:
		return "highest cost basis first"
	case LowCost:
		return "lowest cost basis first"
	default:
		return ""
	}
}

// ParseTaxMethod parses a string into a TaxMethod.
func ParseTaxMethod(s string) (TaxMethod, error) {
	for _, m := range Methods() {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m TaxMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *TaxMethod) UnmarshalText(text []byte) error {
	v, err := ParseTaxMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
