package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/blackwell-systems/deltalens/internal/analyze"
)

// Answer is one distinct response and how often it was given.
type Answer struct {
	Value string
	Count int
}

// Responses is the answer histogram for one question column.
type Responses struct {
	Name   string
	order  []string
	counts map[string]int
	total  int
}

// Total returns the number of non-empty answers, the percentage denominator.
func (r *Responses) Total() int {
	return r.total
}

// Count returns how many times value was given.
func (r *Responses) Count(value string) int {
	return r.counts[value]
}

// Answers returns the answers by descending count. Ties keep the order the
// answers were first seen.
func (r *Responses) Answers() []Answer {
	out := make([]Answer, 0, len(r.order))
	for _, v := range r.order {
		out = append(out, Answer{Value: v, Count: r.Count(v)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Percent returns 100*count/total rounded to one decimal place.
func (r *Responses) Percent(count int) decimal.Decimal {
	if r.total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(r.total))).
		Round(1)
}

// ResponseHistogram maps question column to its answer histogram.
type ResponseHistogram struct {
	order  []string
	byName map[string]*Responses
}

// BuildHistogram counts every non-empty column value in one pass.
func BuildHistogram(list *analyze.NormChangeList) *ResponseHistogram {
	h := &ResponseHistogram{byName: make(map[string]*Responses)}
	list.Each(func(item analyze.NormDelta) {
		item.Each(func(column, value string) {
			if value == "" {
				return
			}
			r, ok := h.byName[column]
			if !ok {
				r = &Responses{Name: column, counts: make(map[string]int)}
				h.byName[column] = r
				h.order = append(h.order, column)
			}
			if _, seen := r.counts[value]; !seen {
				r.order = append(r.order, value)
			}
			r.counts[value]++
			r.total++
		})
	})
	return h
}

// Questions returns the histograms in first-seen column order.
func (h *ResponseHistogram) Questions() []*Responses {
	out := make([]*Responses, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.byName[name])
	}
	return out
}

// Get returns the histogram for column, or nil.
func (h *ResponseHistogram) Get(column string) *Responses {
	return h.byName[column]
}

// renderHistogram writes one panel per question with an
// Answer/Count/Percent table and a TOTAL row.
func renderHistogram(root *Element, h *ResponseHistogram) {
	for _, q := range h.Questions() {
		body := root.AddPanel(q.Name)
		tw := NewTableWriter(body, "Answer", "Count", "Percent")
		for _, a := range q.Answers() {
			tw.WriteRow(NewRow().
				Set("Answer", a.Value).
				Set("Count", a.Count).
				Set("Percent", q.Percent(a.Count).StringFixed(1)+"%"))
		}
		tw.WriteRow(NewRow().
			Set("Answer", "TOTAL").
			Set("Count", q.Total()))
	}
}
