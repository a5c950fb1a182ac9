package privacy

import (
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coverageText = "身分證字號：A123456789\n" +
	"手機：0912345678\n" +
	"市話：02-23456789\n" +
	"卡號：1234-5678-9012-3456\n" +
	"信箱：test@example.com\n" +
	"帳號：0051234567890\n" +
	"地址：台北市中正區忠孝東路100號\n" +
	"生日：1990/01/15\n"

func newMasker(t *testing.T, opts Options) *Masker {
	t.Helper()
	m, err := New(opts, nil)
	require.NoError(t, err)
	return m
}

func TestMaskerCategoryCoverage(t *testing.T) {
	m := newMasker(t, Options{})

	findings := m.Detect(coverageText)

	byType := make(map[string][]Finding)
	for _, f := range findings {
		byType[f.Type] = append(byType[f.Type], f)
	}

	tests := []struct {
		id       string
		typeName string
		original string
		masked   string
	}{
		{CategoryTaiwanID, "身分證字號", "A123456789", "A********9"},
		{CategoryPhone, "手機號碼", "0912345678", "0912****78"},
		{CategoryLandline, "市話", "02-23456789", "02-********"},
		{CategoryCreditCard, "信用卡號", "1234-5678-9012-3456", "**** **** **** 3456"},
		{CategoryEmail, "電子郵件", "test@example.com", "t***@example.com"},
		{CategoryBankAccount, "銀行帳號", "0051234567890", "*********7890"},
		{CategoryAddress, "地址", "市中正區忠孝東路100號", "市中正區***"},
		{CategoryBirthDate, "出生日期", "1990/01/15", "****/**/**"},
	}

	require.Len(t, findings, len(tests))
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			require.Len(t, byType[tt.id], 1)
			f := byType[tt.id][0]
			assert.Equal(t, tt.typeName, f.TypeName)
			assert.Equal(t, tt.original, f.Original)
			assert.Equal(t, tt.masked, f.Masked)
		})
	}
}

func TestMaskerFindingOrder(t *testing.T) {
	m := newMasker(t, Options{})

	findings := m.Detect("信箱 a@b.com 手機 0911111111 手機 0922222222")

	require.Len(t, findings, 3)
	assert.Equal(t, CategoryPhone, findings[0].Type)
	assert.Equal(t, "0911111111", findings[0].Original)
	assert.Equal(t, CategoryPhone, findings[1].Type)
	assert.Equal(t, CategoryEmail, findings[2].Type)
}

func TestMaskerIdempotent(t *testing.T) {
	inputs := []string{
		coverageText,
		"客戶王小明 手機0987654321 帳號 12345678901234",
		"no sensitive data here",
		"",
		"地址：台北市大安區忠孝東路四段一二三號，近信義路",
		"台北市大安區忠孝東路四段100號 轉角巷口",
		"台中市西屯區文化路一段188巷44號之3號",
		"台北市大安區中路一段5號",
		"彰化縣彰化市中山路二段8號 旁邊",
	}

	m := newMasker(t, Options{CustomNames: []string{"王小明"}})
	for _, input := range inputs {
		once := m.Mask(input).Masked
		twice := m.Mask(once).Masked
		assert.Equal(t, once, twice, "input %q", input)
	}
}

func TestMaskAddressKeepsDistrict(t *testing.T) {
	m := newMasker(t, Options{Types: []string{CategoryAddress}})

	tests := []struct {
		input string
		want  string
	}{
		{"地址：台北市大安區忠孝東路四段一二三號，近信義路", "地址：台北市大安區***，近信義路"},
		{"台北市大安區忠孝東路四段100號 轉角巷口", "台北市大安區*** 轉角巷口"},
		{"彰化縣彰化市中山路二段8號", "彰化縣彰化市***"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Mask(tt.input).Masked)
		})
	}
}

func TestMaskerSpansIndexOriginal(t *testing.T) {
	m := newMasker(t, Options{Aggressive: true, CustomNames: []string{"Alice Chen"}})
	text := "Alice Chen 身分證 B234567890 電話 (02)2345-6789 02-27208889 卡號 4311 9522 1234 5678 金額 NT$ 12,345 參考號 88776655"

	result := m.Mask(text)
	require.NotEmpty(t, result.Findings)

	ordered := append([]Finding(nil), result.Findings...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	var rebuilt strings.Builder
	last := 0
	for i, f := range ordered {
		assert.Equal(t, f.Original, text[f.Start:f.End])
		if i > 0 {
			assert.LessOrEqual(t, ordered[i-1].End, f.Start, "findings must not overlap")
		}
		rebuilt.WriteString(text[last:f.Start])
		rebuilt.WriteString(f.Masked)
		last = f.End
	}
	rebuilt.WriteString(text[last:])

	assert.Equal(t, result.Masked, rebuilt.String())
	assert.Equal(t, len(result.Findings), result.Count)
	assert.Equal(t, text, result.Original)
}

func TestMaskerCustomNameBoundary(t *testing.T) {
	m := newMasker(t, Options{CustomNames: []string{"王小明"}})

	result := m.Mask("王小明的鄰居叫王小明志")

	// Han text has no word delimiters, so the prefix of 王小明志 is masked too.
	assert.Equal(t, "***的鄰居叫***志", result.Masked)
	require.Len(t, result.Findings, 2)
	assert.Equal(t, 0, result.Findings[0].Start)
	assert.Equal(t, len("王小明的鄰居叫"), result.Findings[1].Start)
	for _, f := range result.Findings {
		assert.Equal(t, CategoryCustomName, f.Type)
		assert.Equal(t, "姓名", f.TypeName)
	}
}

func TestMaskerLatinNameBoundary(t *testing.T) {
	m := newMasker(t, Options{CustomNames: []string{"Ann", "  ", "Ann"}})

	result := m.Mask("Ann met Annabel and 客戶Ann的帳戶")

	assert.Equal(t, "*** met Annabel and 客戶***的帳戶", result.Masked)
	assert.Equal(t, 2, result.Count)
}

func TestMaskerCustomNamesComeFirst(t *testing.T) {
	m := newMasker(t, Options{CustomNames: []string{"Agent 0912345678"}})

	result := m.Mask("contact Agent 0912345678 now")

	require.Len(t, result.Findings, 1)
	assert.Equal(t, CategoryCustomName, result.Findings[0].Type)
	assert.Equal(t, "contact **************** now", result.Masked)
}

func TestMaskerCustomNameEscaping(t *testing.T) {
	m := newMasker(t, Options{CustomNames: []string{"a.*b", "x\ty"}})

	result := m.Mask("a.*b axxb x\ty")

	assert.Equal(t, "**** axxb ***", result.Masked)
}

func TestMaskerAggressive(t *testing.T) {
	normal := newMasker(t, Options{})
	strict := newMasker(t, Options{Aggressive: true})

	text := "消費 NT$ 1,250元 參考編號 12345678"

	assert.Equal(t, text, normal.Mask(text).Masked)
	assert.Equal(t, "消費 NT$ *** 參考編號 ********", strict.Mask(text).Masked)
	assert.True(t, strict.Aggressive())
	assert.False(t, normal.Aggressive())
}

func TestMaskerDigitBoundaries(t *testing.T) {
	m := newMasker(t, Options{Types: []string{CategoryPhone}})

	assert.Empty(t, m.Detect("帳號 091234567890123"))
	assert.Len(t, m.Detect("手機 0912345678。"), 1)
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := New(Options{Types: []string{"passport"}}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnknownCategory)
	assert.True(t, common.IsConfigError(err))
}

func TestMaskerTypesFilterAndOrder(t *testing.T) {
	m := newMasker(t, Options{
		Types:       []string{CategoryEmail, CategoryTaiwanID},
		CustomNames: []string{"陳大文"},
	})

	assert.Equal(t, []string{CategoryCustomName, CategoryTaiwanID, CategoryEmail}, m.Types())

	result := m.Mask("陳大文 A123456789 0912345678 a@b.co")
	assert.Equal(t, "*** A********9 0912345678 a***@b.co", result.Masked)
}

func TestWithCustomNamesDoesNotMutate(t *testing.T) {
	base := newMasker(t, Options{})
	before := len(Categories())

	extended := base.WithCustomNames("林志玲")

	assert.NotContains(t, base.Types(), CategoryCustomName)
	assert.Equal(t, CategoryCustomName, extended.Types()[0])
	assert.Equal(t, "林志玲", base.Mask("林志玲").Masked)
	assert.Equal(t, "***", extended.Mask("林志玲").Masked)
	assert.Len(t, Categories(), before)
}

func TestForContext(t *testing.T) {
	m := newMasker(t, Options{Aggressive: true})

	statement := m.ForContext("本期帳單 消費明細")
	assert.NotContains(t, statement.Types(), CategoryAmount)
	assert.Contains(t, statement.Types(), CategoryLongNumber)
	assert.Contains(t, m.Types(), CategoryAmount)

	plain := newMasker(t, Options{})
	identity := plain.ForContext("身分證影本")
	assert.Contains(t, identity.Types(), CategoryAmount)
	assert.NotContains(t, plain.Types(), CategoryAmount)

	assert.Same(t, plain, plain.ForContext("hello"))
}

func TestMaskFields(t *testing.T) {
	m := newMasker(t, Options{})
	data := map[string]any{
		"phone": "0912345678",
		"count": 3,
		"owner": map[string]any{"email": "test@example.com"},
		"notes": []any{"A123456789", 42, map[string]any{"id": "B234567890"}},
		"tags":  []string{"0922222222"},
	}

	masked := m.MaskFields(data)

	assert.Equal(t, "0912****78", masked["phone"])
	assert.Equal(t, 3, masked["count"])
	assert.Equal(t, "t***@example.com", masked["owner"].(map[string]any)["email"])
	notes := masked["notes"].([]any)
	assert.Equal(t, "A********9", notes[0])
	assert.Equal(t, 42, notes[1])
	assert.Equal(t, "B********0", notes[2].(map[string]any)["id"])
	assert.Equal(t, []string{"0922****22"}, masked["tags"])
	assert.Equal(t, "0912345678", data["phone"], "input must not change")
	assert.Nil(t, m.MaskFields(nil))
}

func TestMaskerConcurrentUse(t *testing.T) {
	m := newMasker(t, Options{CustomNames: []string{"王小明"}})
	want := m.Mask(coverageText).Masked

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, m.Mask(coverageText).Masked)
		}()
	}
	wg.Wait()
}

func TestParseNames(t *testing.T) {
	assert.Equal(t, []string{"王小明", "Alice"}, ParseNames(" 王小明, ,Alice,王小明"))
	assert.Empty(t, ParseNames(""))
}

func TestCountByType(t *testing.T) {
	m := newMasker(t, Options{})
	counts := m.Mask("0911111111 0922222222 a@b.com").CountByType()
	assert.Equal(t, map[string]int{CategoryPhone: 2, CategoryEmail: 1}, counts)
}

func TestResultWithoutOriginals(t *testing.T) {
	result := newMasker(t, Options{}).Mask("手機 0912345678")
	require.Equal(t, 1, result.Count)

	stripped := result.WithoutOriginals()

	assert.Empty(t, stripped.Original)
	assert.Empty(t, stripped.Findings[0].Original)
	assert.Equal(t, result.Findings[0].Masked, stripped.Findings[0].Masked)
	assert.Equal(t, "0912345678", result.Findings[0].Original)
}
