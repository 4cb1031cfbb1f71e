package payment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// cent → "20.00"
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// "20.00" → cent。小数3桁以上や数値でない文字列はエラー。
func ParseAmount(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, err
	}
	c := d.Mul(decimal.New(100, 0))
	if !c.IsInteger() {
		return 0, fmt.Errorf("amount %q has sub-cent precision", value)
	}
	return c.IntPart(), nil
}
