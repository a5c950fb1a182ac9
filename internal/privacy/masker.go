package privacy

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/ledgerguard/internal/common"
)

// Options configures which categories a Masker applies.
type Options struct {
	// Types restricts masking to these category ids. Empty means every built-in.
	Types       []string
	CustomNames []string
	Aggressive  bool
}

// Finding is one masked occurrence. Start and End are byte offsets into the
// original text.
type Finding struct {
	Type     string `json:"type"`
	TypeName string `json:"type_name"`
	Original string `json:"original"`
	Masked   string `json:"masked"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

// Result is the outcome of one masking pass.
type Result struct {
	Original string    `json:"-"`
	Masked   string    `json:"masked"`
	Findings []Finding `json:"findings"`
	Count    int       `json:"mask_count"`
}

// WithoutOriginals returns a copy of r whose findings no longer carry the
// unmasked values, for writing reports to disk.
func (r Result) WithoutOriginals() Result {
	findings := make([]Finding, len(r.Findings))
	copy(findings, r.Findings)
	for i := range findings {
		findings[i].Original = ""
	}
	r.Original = ""
	r.Findings = findings
	return r
}

// CountByType tallies findings per category id.
func (r Result) CountByType() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Findings {
		counts[f.Type]++
	}
	return counts
}

// Masker applies an immutable snapshot of categories to text.
// It is safe for concurrent use.
type Masker struct {
	logger     *slog.Logger
	categories []Category
	opts       Options
}

// New compiles the category set described by opts.
func New(opts Options, logger *slog.Logger) (*Masker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, id := range opts.Types {
		if _, ok := lookup(id); !ok {
			return nil, fmt.Errorf("%w: %s", common.ErrUnknownCategory, id)
		}
	}

	opts.Types = append([]string(nil), opts.Types...)
	opts.CustomNames = normalizeNames(opts.CustomNames)

	m := &Masker{
		opts:       opts,
		categories: compile(opts),
		logger:     logger,
	}

	logger.Debug("privacy masker initialized",
		"categories", m.Types(),
		"aggressive", opts.Aggressive,
		"custom_names", len(opts.CustomNames))

	return m, nil
}

// compile builds the active category list: custom names, then built-ins, then
// aggressive categories, filtered by opts.Types.
func compile(opts Options) []Category {
	wanted := make(map[string]bool, len(opts.Types))
	for _, id := range opts.Types {
		wanted[id] = true
	}

	active := make([]Category, 0, len(builtins)+len(aggressive)+1)
	if len(opts.CustomNames) > 0 {
		active = append(active, customNameCategory(opts.CustomNames))
	}

	for _, c := range builtins {
		if len(wanted) == 0 || wanted[c.ID] {
			active = append(active, c)
		}
	}
	for _, c := range aggressive {
		if opts.Aggressive || wanted[c.ID] {
			active = append(active, c)
		}
	}

	return active
}

// WithCustomNames returns a new Masker that also masks names.
// The receiver is left unchanged.
func (m *Masker) WithCustomNames(names ...string) *Masker {
	opts := m.opts
	opts.CustomNames = normalizeNames(append(append([]string(nil), m.opts.CustomNames...), names...))
	return m.derive(opts)
}

var (
	financialKeywords = []string{"帳單", "消費", "交易"}
	identityKeywords  = []string{"身分證", "戶籍"}
)

// ForContext returns a Masker tuned to the document: statements keep their
// amounts readable, identity documents are masked aggressively.
func (m *Masker) ForContext(text string) *Masker {
	opts := m.opts

	switch {
	case containsAny(text, financialKeywords):
		types := opts.Types
		if len(types) == 0 {
			types = m.Types()
		}
		filtered := make([]string, 0, len(types))
		for _, id := range types {
			if id != CategoryAmount && id != CategoryCustomName {
				filtered = append(filtered, id)
			}
		}
		opts.Types = filtered
		opts.Aggressive = false
	case containsAny(text, identityKeywords):
		opts.Aggressive = true
	default:
		return m
	}

	return m.derive(opts)
}

func (m *Masker) derive(opts Options) *Masker {
	return &Masker{
		opts:       opts,
		categories: compile(opts),
		logger:     m.logger,
	}
}

// Types returns the active category ids in processing order.
func (m *Masker) Types() []string {
	ids := make([]string, len(m.categories))
	for i, c := range m.categories {
		ids[i] = c.ID
	}
	return ids
}

// Aggressive reports whether aggressive categories are active.
func (m *Masker) Aggressive() bool {
	for _, c := range m.categories {
		if isAggressive(c.ID) {
			return true
		}
	}
	return false
}

type span struct {
	start, end int
}

// Mask finds every category's matches against the original text, drops any
// match that overlaps one claimed by an earlier category, and rewrites the
// text in a single pass.
func (m *Masker) Mask(text string) Result {
	findings := make([]Finding, 0)
	claimed := make([]span, 0)

	for i := range m.categories {
		category := &m.categories[i]
		for _, loc := range category.Pattern.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if start == end {
				continue
			}
			if category.accept != nil && !category.accept(text, start, end) {
				continue
			}

			pos, free := vacancy(claimed, start, end)
			if !free {
				continue
			}
			claimed = append(claimed, span{})
			copy(claimed[pos+1:], claimed[pos:])
			claimed[pos] = span{start: start, end: end}

			original := text[start:end]
			findings = append(findings, Finding{
				Type:     category.ID,
				TypeName: category.Name,
				Original: original,
				Masked:   category.Mask(original),
				Start:    start,
				End:      end,
			})
		}
	}

	masked := rewrite(text, findings)

	if len(findings) > 0 {
		m.logger.Debug("masked sensitive text", "findings", len(findings))
	}

	return Result{
		Original: text,
		Masked:   masked,
		Findings: findings,
		Count:    len(findings),
	}
}

// Detect reports findings without rewriting the text.
func (m *Masker) Detect(text string) []Finding {
	return m.Mask(text).Findings
}

// vacancy returns the insertion index for [start,end) in the sorted claimed
// list and whether the range is free.
func vacancy(claimed []span, start, end int) (int, bool) {
	pos := sort.Search(len(claimed), func(i int) bool {
		return claimed[i].start >= start
	})
	if pos > 0 && claimed[pos-1].end > start {
		return pos, false
	}
	if pos < len(claimed) && claimed[pos].start < end {
		return pos, false
	}
	return pos, true
}

func rewrite(text string, findings []Finding) string {
	if len(findings) == 0 {
		return text
	}

	ordered := append([]Finding(nil), findings...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, f := range ordered {
		b.WriteString(text[last:f.Start])
		b.WriteString(f.Masked)
		last = f.End
	}
	b.WriteString(text[last:])
	return b.String()
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
