// Package privacy detects and masks personally identifiable information in
// statement text.
package privacy

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category identifiers.
const (
	CategoryCustomName  = "custom_name"
	CategoryTaiwanID    = "taiwan_id"
	CategoryPhone       = "phone"
	CategoryLandline    = "landline"
	CategoryCreditCard  = "credit_card"
	CategoryEmail       = "email"
	CategoryBankAccount = "bank_account"
	CategoryAddress     = "address"
	CategoryBirthDate   = "date_of_birth"
	CategoryAmount      = "amount"
	CategoryLongNumber  = "long_number"
)

// Category is a named detection rule paired with its masking function.
// Categories are immutable once built.
type Category struct {
	Pattern *regexp.Regexp
	Mask    func(string) string
	accept  func(text string, start, end int) bool
	ID      string
	Name    string
}

var (
	digitRunPattern = regexp.MustCompile(`\d{4,}`)

	builtins = []Category{
		{
			ID:      CategoryTaiwanID,
			Name:    "身分證字號",
			Pattern: regexp.MustCompile(`[A-Z][12]\d{8}`),
			Mask: func(s string) string {
				return s[:1] + strings.Repeat("*", 8) + s[len(s)-1:]
			},
			accept: digitBounded,
		},
		{
			ID:      CategoryPhone,
			Name:    "手機號碼",
			Pattern: regexp.MustCompile(`09\d{8}`),
			Mask: func(s string) string {
				return s[:4] + "****" + s[len(s)-2:]
			},
			accept: digitBounded,
		},
		{
			ID:      CategoryLandline,
			Name:    "市話",
			Pattern: regexp.MustCompile(`0\d{1,2}-?\d{6,8}`),
			Mask: func(s string) string {
				return digitRunPattern.ReplaceAllStringFunc(s, stars)
			},
			accept: digitBounded,
		},
		{
			ID:      CategoryCreditCard,
			Name:    "信用卡號",
			Pattern: regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`),
			Mask: func(s string) string {
				digits := onlyDigits(s)
				return "**** **** **** " + digits[len(digits)-4:]
			},
		},
		{
			ID:      CategoryEmail,
			Name:    "電子郵件",
			Pattern: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
			Mask: func(s string) string {
				at := strings.IndexByte(s, '@')
				return s[:1] + "***" + s[at:]
			},
		},
		{
			ID:      CategoryBankAccount,
			Name:    "銀行帳號",
			Pattern: regexp.MustCompile(`\b\d{10,16}\b`),
			Mask: func(s string) string {
				return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
			},
		},
		{
			ID:      CategoryAddress,
			Name:    "地址",
			Pattern: regexp.MustCompile(`[縣市][^縣市*]{0,3}[鄉鎮市區][^鄉鎮市區*]{0,10}[路街段巷弄號][\d\-之]*號?`),
			Mask:    maskAddress,
		},
		{
			ID:      CategoryBirthDate,
			Name:    "出生日期",
			Pattern: regexp.MustCompile(`\d{2,3}年\d{1,2}月\d{1,2}日|\d{4}[-/]\d{1,2}[-/]\d{1,2}`),
			Mask: func(string) string {
				return "****/**/**"
			},
		},
	}

	aggressive = []Category{
		{
			ID:      CategoryAmount,
			Name:    "金額",
			Pattern: regexp.MustCompile(`NT?\$?[ \t]*\d[\d,]*(?:\.\d+)?元?`),
			Mask: func(string) string {
				return "NT$ ***"
			},
		},
		{
			ID:      CategoryLongNumber,
			Name:    "長數字",
			Pattern: regexp.MustCompile(`\b\d{6,}\b`),
			Mask:    stars,
		},
	}
)

// Builtins returns the default categories in processing order.
func Builtins() []Category {
	return append([]Category(nil), builtins...)
}

// Aggressive returns the categories added by aggressive mode.
func Aggressive() []Category {
	return append([]Category(nil), aggressive...)
}

// Categories returns every registered category, built-ins first.
func Categories() []Category {
	all := make([]Category, 0, len(builtins)+len(aggressive))
	all = append(all, builtins...)
	return append(all, aggressive...)
}

func lookup(id string) (Category, bool) {
	for _, c := range builtins {
		if c.ID == id {
			return c, true
		}
	}
	for _, c := range aggressive {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func isAggressive(id string) bool {
	for _, c := range aggressive {
		if c.ID == id {
			return true
		}
	}
	return false
}

// maskAddress keeps the city and district and hides the street part. The
// kept prefix ends on the district rune and is followed by stars, so the
// output cannot match the address pattern again.
func maskAddress(s string) string {
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if strings.ContainsRune("鄉鎮市區", runes[i]) {
			return string(runes[:i+1]) + "***"
		}
	}
	return stars(s)
}

func stars(s string) string {
	return strings.Repeat("*", utf8.RuneCountInString(s))
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// digitBounded rejects matches glued to a neighbouring digit.
func digitBounded(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
