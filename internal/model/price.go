package model

import (
	"fmt"
	"strconv"
	"strings"
)

const maxPriceUnitDigits = 12

// ParsePrice parses a decimal amount such as "12.34" into minor units.
//
// The integer and fractional parts are parsed separately so no rounding ever
// happens: exactly one '.', exactly two fractional digits, at most 12 integer
// digits and no leading zero unless the integer part is "0".
func ParsePrice(s string) (int64, error) {
	units, cents, ok := strings.Cut(s, ".")
	if !ok {
		return 0, Errorf(CodeValidationFailed, "price %q has no decimal point", s)
	}
	if len(units) == 0 || len(units) > maxPriceUnitDigits || !allDigits(units) {
		return 0, Errorf(CodeValidationFailed, "price %q has a malformed integer part", s)
	}
	if len(units) > 1 && units[0] == '0' {
		return 0, Errorf(CodeValidationFailed, "price %q has a leading zero", s)
	}
	if len(cents) != 2 || !allDigits(cents) {
		return 0, Errorf(CodeValidationFailed, "price %q needs exactly two fractional digits", s)
	}
	u, err := strconv.ParseInt(units, 10, 64)
	if err != nil {
		return 0, Errorf(CodeValidationFailed, "price %q: %v", s, err)
	}
	c, err := strconv.ParseInt(cents, 10, 64)
	if err != nil {
		return 0, Errorf(CodeValidationFailed, "price %q: %v", s, err)
	}
	price := u*100 + c
	if err := ValidatePrice(price); err != nil {
		return 0, err
	}
	return price, nil
}

// FormatPrice renders minor units as "units.cc". Negative amounts keep their sign.
func FormatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// ParseCount parses a non-negative command-line integer: decimal digits only,
// no leading zero except "0" itself, at most MaxQuantity.
func ParseCount(s string) (int64, error) {
	if s == "" || len(s) > 10 || !allDigits(s) {
		return 0, Errorf(CodeValidationFailed, "%q is not a count", s)
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, Errorf(CodeValidationFailed, "%q has a leading zero", s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n > MaxQuantity {
		return 0, Errorf(CodeValidationFailed, "%q exceeds %d", s, MaxQuantity)
	}
	return n, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
