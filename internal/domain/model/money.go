package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Moneyは通貨の最小単位（セント）で持つ固定小数点の金額。
// 金額計算にfloatは使わない。
type Money int64

var ErrInvalidAmount = errors.New("invalid amount")

// ParseMoneyは "10" / "10.5" / "10.50" 形式の文字列を読む。
// 小数は2桁まで。
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if hasFrac && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if len(fracPart) > 2 {
		return 0, ErrInvalidAmount
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	units, err := strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents, err := strconv.ParseUint(fracPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	if units > (1<<62)/100 {
		return 0, ErrInvalidAmount
	}

	v := int64(units)*100 + int64(cents)
	if neg {
		v = -v
	}
	return Money(v), nil
}

// 数量を掛ける
func (m Money) Mul(qty int64) Money {
	return Money(int64(m) * qty)
}

func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// JSONでは "10.00" の文字列にする（クライアント側のfloat丸めを防ぐ）
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// 文字列か整数のみ受け付ける。小数のJSON数値はfloatになるので拒否。
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return ErrInvalidAmount
	}

	if s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return ErrInvalidAmount
		}
		v, err := ParseMoney(unquoted)
		if err != nil {
			return err
		}
		*m = v
		return nil
	}

	units, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	if units > (1<<62)/100 || units < -(1<<62)/100 {
		return ErrInvalidAmount
	}
	*m = Money(units * 100)
	return nil
}
