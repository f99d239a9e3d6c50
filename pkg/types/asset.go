package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

const maxSymbolCodeLen = 7

var (
	ErrInvalidSymbol  = errors.New("invalid symbol name")
	ErrSymbolMismatch = errors.New("symbol precision mismatch")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeResult = errors.New("amount below zero")
)

// Symbol identifies a currency: a short uppercase code plus its fixed-point
// precision. Two Amounts can only be combined when their Symbols are equal.
type Symbol struct {
	Code     string
	Decimals uint8
}

func NewSymbol(code string, decimals uint8) Symbol {
	return Symbol{Code: code, Decimals: decimals}
}

func (s Symbol) Valid() bool {
	if len(s.Code) == 0 || len(s.Code) > maxSymbolCodeLen {
		return false
	}
	for _, c := range s.Code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func (s Symbol) Equal(o Symbol) bool {
	return s.Code == o.Code && s.Decimals == o.Decimals
}

func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Decimals, s.Code)
}

// Amount is a signed fixed-point quantity: an integer magnitude scaled by
// 10^Symbol.Decimals.
type Amount struct {
	Value  *big.Int
	Symbol Symbol
}

func NewAmount(value int64, symbol Symbol) Amount {
	return Amount{Value: big.NewInt(value), Symbol: symbol}
}

func NewAmountFromBig(value *big.Int, symbol Symbol) Amount {
	return Amount{Value: new(big.Int).Set(value), Symbol: symbol}
}

func (a Amount) Valid() bool {
	return a.Value != nil && a.Symbol.Valid()
}

func (a Amount) Positive() bool {
	return a.Value != nil && a.Value.Sign() > 0
}

func (a Amount) Zero() bool {
	return a.Value != nil && a.Value.Sign() == 0
}

func (a Amount) Clone() Amount {
	return NewAmountFromBig(a.Value, a.Symbol)
}

func (a Amount) checkPair(b Amount) error {
	if !a.Valid() || !b.Valid() {
		return ErrInvalidAmount
	}
	if !a.Symbol.Equal(b.Symbol) {
		return ErrSymbolMismatch
	}
	return nil
}

func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkPair(b); err != nil {
		return Amount{}, err
	}
	return Amount{Value: new(big.Int).Add(a.Value, b.Value), Symbol: a.Symbol}, nil
}

// Sub rejects results below zero: balances and supplies never go negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkPair(b); err != nil {
		return Amount{}, err
	}
	v := new(big.Int).Sub(a.Value, b.Value)
	if v.Sign() < 0 {
		return Amount{}, ErrNegativeResult
	}
	return Amount{Value: v, Symbol: a.Symbol}, nil
}

// Cmp panics on symbol mismatch; callers must validate pairs first.
func (a Amount) Cmp(b Amount) int {
	if err := a.checkPair(b); err != nil {
		panic(err)
	}
	return a.Value.Cmp(b.Value)
}

func (a Amount) String() string {
	if !a.Valid() {
		return "<invalid amount>"
	}
	raw := a.Value.String()
	neg := strings.HasPrefix(raw, "-")
	if neg {
		raw = raw[1:]
	}
	d := int(a.Symbol.Decimals)
	for len(raw) <= d {
		raw = "0" + raw
	}
	out := raw
	if d > 0 {
		out = raw[:len(raw)-d] + "." + raw[len(raw)-d:]
	}
	if neg {
		out = "-" + out
	}
	return out + " " + a.Symbol.Code
}
