package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRocCalendar(t *testing.T) {
	assert.Equal(t, 2024, RocYear(113))

	date, ok := rocDate("113", "08", "24")
	assert.True(t, ok)
	assert.Equal(t, "2024-08-24", date.String())

	record, err := NewFubonCreditCard().Extract("帳單年月：113/08", modelMeta())
	assert.NoError(t, err)
	assert.Equal(t, RocYear(113), record.StatementPeriod.Year)
	assert.Equal(t, 8, record.StatementPeriod.Month)
}

func TestRocDateRejectsInvalid(t *testing.T) {
	tests := []struct {
		name             string
		year, month, day string
	}{
		{"month out of range", "113", "13", "01"},
		{"day overflow", "113", "02", "30"},
		{"zero day", "113", "02", "00"},
		{"not a number", "abc", "01", "01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := rocDate(tt.year, tt.month, tt.day)
			assert.False(t, ok)
		})
	}
}

func TestFlexibleDate(t *testing.T) {
	date, ok := flexibleDate("2024", "8", "1")
	assert.True(t, ok)
	assert.Equal(t, "2024-08-01", date.String())

	date, ok = flexibleDate("113", "8", "1")
	assert.True(t, ok)
	assert.Equal(t, "2024-08-01", date.String())
}

func TestNormalizeFullwidth(t *testing.T) {
	assert.Equal(t, "末4碼6317:(1/2期)", normalize("末４碼６３１７：（1／2期）"))
}

func TestParseAmount(t *testing.T) {
	d, ok := parseAmount(" 1,234.50 ")
	assert.True(t, ok)
	assert.Equal(t, "1234.5", d.String())

	_, ok = parseAmount(",")
	assert.False(t, ok)
	assert.Nil(t, amountPtr(""))
}

func TestMaskAccount(t *testing.T) {
	assert.Equal(t, "*********9012", maskAccount("0123-456-789012"))
	assert.Equal(t, "1234", maskAccount("1234"))
}

func TestDefaultsAreFresh(t *testing.T) {
	a := Defaults()
	b := Defaults()
	assert.Len(t, a, 2)
	assert.Equal(t, "fubon_credit_card", a[0].Name())
	assert.Equal(t, "bank_statement", a[1].Name())
	assert.NotSame(t, a[0], b[0])
}
