package kconfig

//go:generate go tool stringer --linecomment --type Type,Tristate --output value_string.go

import (
	"log/slog"
	"strconv"
	"strings"
)

// Type is the declared type of a symbol. It never changes after load.
type Type int

const (
	TypeUnknown  Type = iota // unknown
	TypeBool                 // bool
	TypeTristate             // tristate
	TypeString               // string
	TypeInt                  // int
	TypeHex                  // hex
)

// ParseType returns the Type named by s.
func ParseType(s string) (Type, bool) {
	for t := TypeBool; t <= TypeHex; t++ {
		if t.String() == s {
			return t, true
		}
	}

	return TypeUnknown, false
}

// IsTristate reports whether values of t are tristate values (bool or
// tristate), as opposed to literal text.
func (t Type) IsTristate() bool { return t == TypeBool || t == TypeTristate }

// Tristate is a three-valued setting ordered n < m < y.
type Tristate int

const (
	Off    Tristate = iota // n
	Module                 // m
	On                     // y
)

// ParseTristate parses "n", "m", or "y".
func ParseTristate(s string) (Tristate, bool) {
	for t := Off; t <= On; t++ {
		if t.String() == s {
			return t, true
		}
	}

	return Off, false
}

// Value is a resolved symbol value. Tri is meaningful for bool and tristate
// types; Text for string, int, and hex.
type Value struct {
	Text string
	Type Type
	Tri  Tristate
}

// Inert returns the value every symbol of type t takes when it is not
// visible.
func Inert(t Type) Value { return Value{Type: t} }

// TriValue returns a tristate-typed value.
func TriValue(t Tristate) Value { return Value{Type: TypeTristate, Tri: t} }

// String returns "y", "m", or "n" for bool and tristate values and the
// literal text otherwise.
func (v Value) String() string {
	if v.Type.IsTristate() {
		return v.Tri.String()
	}

	return v.Text
}

// Enabled reports whether v is a bool or tristate value other than n.
func (v Value) Enabled() bool { return v.Type.IsTristate() && v.Tri > Off }

// Number returns the numeric value of an int or hex value.
func (v Value) Number() (int64, bool) {
	switch v.Type {
	case TypeInt:
		return parseInt(v.Text)
	case TypeHex:
		return parseHex(v.Text)
	default:
		return 0, false
	}
}

// ParseValue validates s as the literal text of a value of type t.
//
// bool accepts y and n; tristate also accepts m. int accepts an optionally
// signed decimal number and hex accepts hex digits with an optional 0x or 0X
// prefix. Any text is a valid string.
func ParseValue(t Type, s string) (Value, error) {
	v := Value{Type: t}

	invalid := func() error {
		return ErrInvalidValue.With(
			slog.String("type", t.String()),
			slog.String("value", s),
		)
	}

	switch t {
	case TypeBool, TypeTristate:
		tri, ok := ParseTristate(s)
		if !ok || (t == TypeBool && tri == Module) {
			return v, invalid()
		}

		v.Tri = tri

	case TypeInt:
		if _, ok := parseInt(s); !ok {
			return v, invalid()
		}

		v.Text = s

	case TypeHex:
		if _, ok := parseHex(s); !ok {
			return v, invalid()
		}

		v.Text = s

	case TypeString:
		v.Text = s

	default:
		return v, invalid()
	}

	return v, nil
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)

	return n, err == nil
}

func parseHex(s string) (int64, bool) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" || strings.ContainsAny(digits, "+-") {
		return 0, false
	}

	n, err := strconv.ParseUint(digits, 16, 63)

	return int64(n), err == nil
}
