package exchange

import (
	"fmt"
	"strings"

	"arbfinder/internal/currency"
)

// MissingCurrenciesError reports input symbols not listed on the exchange.
type MissingCurrenciesError struct {
	Missing []currency.Currency
}

func (e *MissingCurrenciesError) Error() string {
	syms := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		syms[i] = string(c)
	}
	return fmt.Sprintf("currencies not listed on exchange: %s", strings.Join(syms, ", "))
}

// TransportError wraps a network failure or non-OK response from any
// exchange call. Aborts the analysis; no partial report is produced.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("exchange transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
