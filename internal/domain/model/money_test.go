package model_test

import (
	"encoding/json"
	"testing"

	"storefront/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want model.Money
	}{
		{"10.00", 1000},
		{"10.5", 1050},
		{"10", 1000},
		{"0.01", 1},
		{"0", 0},
		{"-3.25", -325},
		{"1999.99", 199999},
	}
	for _, c := range cases {
		got, err := model.ParseMoney(c.in)
		assert.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseMoney_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "1.2.3", "1,000", "--1", "."} {
		_, err := model.ParseMoney(in)
		assert.Error(t, err, in)
	}
}

func TestMoney_Mul(t *testing.T) {
	//19.99 * 3 = 59.97
	assert.Equal(t, model.Money(5997), model.Money(1999).Mul(3))
	assert.Equal(t, model.Money(0), model.Money(1999).Mul(0))
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "19.99", model.Money(1999).String())
	assert.Equal(t, "10.00", model.Money(1000).String())
	assert.Equal(t, "0.05", model.Money(5).String())
	assert.Equal(t, "-3.25", model.Money(-325).String())
}

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(model.Money(1999))
	assert.NoError(t, err)
	assert.Equal(t, `"19.99"`, string(b))

	var m model.Money
	assert.NoError(t, json.Unmarshal([]byte(`"19.99"`), &m))
	assert.Equal(t, model.Money(1999), m)

	//小数のJSON数値は受け付けない
	assert.Error(t, json.Unmarshal([]byte(`19.99`), &m))
}
