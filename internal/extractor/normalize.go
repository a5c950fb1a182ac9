package extractor

import (
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/ledgerguard/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

// rocEpochOffset converts a Republic of China (Minguo) year to a Gregorian year.
const rocEpochOffset = 1911

// normalize folds fullwidth digits and punctuation to their ASCII forms.
func normalize(text string) string {
	return width.Narrow.String(text)
}

// RocYear converts a ROC calendar year to the Gregorian year.
func RocYear(year int) int {
	return year + rocEpochOffset
}

// rocDate converts ROC year, month and day strings to a date.
func rocDate(year, month, day string) (model.Date, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return model.Date{}, false
	}
	return calendarDate(RocYear(y), month, day)
}

// flexibleDate accepts either a ROC or a Gregorian year.
func flexibleDate(year, month, day string) (model.Date, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return model.Date{}, false
	}
	if y < 1000 {
		y = RocYear(y)
	}
	return calendarDate(y, month, day)
}

func calendarDate(year int, month, day string) (model.Date, bool) {
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return model.Date{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 {
		return model.Date{}, false
	}

	date := model.NewDate(year, time.Month(m), d)
	if date.Day() != d {
		return model.Date{}, false
	}
	return date, true
}

// parseAmount reads a number that may carry thousands separators.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func amountPtr(s string) *model.Amount {
	d, ok := parseAmount(s)
	if !ok {
		return nil
	}
	return model.AmountPtr(d)
}

// maskAccount keeps the last four digits of an account number.
func maskAccount(account string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, account)
	if len(digits) <= 4 {
		return account
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}
