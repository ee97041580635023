package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/m3rciful/intakebot/intake/validate"
)

// FallbackReport replaces the quote whenever it cannot be computed.
const FallbackReport = "❌ Не удалось рассчитать стоимость. Мы свяжемся с вами для уточнения деталей."

const (
	reportFooter = "_Окончательная стоимость может быть уточнена после обсуждения деталей_"
	manualNote   = "Стоимость определит специалист после изучения задачи."
)

// Line is one row of the breakdown.
type Line struct {
	Label  string
	Value  string
	Factor float64
	Amount int
}

// Quote is the computed breakdown. Total is before the promo discount, Final after it.
type Quote struct {
	Title    string
	Base     int
	Lines    []Line
	Urgency  Urgency
	Total    int
	Discount int
	Rate     float64
	Final    int
	Manual   bool
}

// Engine prices a finished questionnaire.
type Engine struct {
	Promo Promo
	// Escape quotes user-supplied values for the markup the report is sent with; nil leaves them as is.
	Escape func(string) string
}

func (e Engine) esc(s string) string {
	if e.Escape == nil {
		return s
	}
	return e.Escape(s)
}

// Quote computes round(base × Πcoefficients × urgency) + Σsurcharges, then the promo discount.
func (e Engine) Quote(rule Rule, in Input) (Quote, error) {
	urgency, ok := UrgencyFactor(in.Urgency)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownUrgency, in.Urgency)
	}
	q := Quote{Title: rule.Title, Urgency: Urgency{Label: in.Urgency, Factor: urgency}}
	if rule.Manual {
		q.Manual = true
		return q, nil
	}

	base := rule.Base
	if p, ok := rule.SubBase[in.SubCategory]; ok {
		base = p
	}
	if rule.Tiers != nil {
		line, p, err := rule.Tiers.base(in)
		if err != nil {
			return Quote{}, err
		}
		base = p
		q.Lines = append(q.Lines, line)
	}
	if base <= 0 {
		return Quote{}, &FieldError{Field: "base", Reason: "no base price"}
	}
	q.Base = base

	product := 1.0
	for _, c := range rule.Coefficients {
		line, f, err := c.factor(in)
		if err != nil {
			return Quote{}, err
		}
		product *= f
		q.Lines = append(q.Lines, line)
	}
	q.Total = int(math.Round(float64(base) * product * urgency))

	for _, s := range rule.Surcharges {
		v, ok := in.Flags[s.Flag]
		if !ok || v != s.When {
			continue
		}
		q.Total += s.Amount
		q.Lines = append(q.Lines, Line{Label: s.Label, Amount: s.Amount})
	}

	q.Rate = e.Promo.Rate()
	q.Discount = e.Promo.Apply(q.Total)
	q.Final = q.Total - q.Discount
	return q, nil
}

// Render formats q for the user and the staff summary.
func (e Engine) Render(q Quote) string {
	var b strings.Builder
	title := q.Title
	if title == "" {
		title = "Предварительный расчёт стоимости"
	}
	fmt.Fprintf(&b, "🔧 *%s:*\n", title)
	if q.Manual {
		fmt.Fprintf(&b, "- Срочность выполнения: %s (x%s)\n", q.Urgency.Label, validate.FormatNumber(q.Urgency.Factor))
		fmt.Fprintf(&b, "- %s\n", manualNote)
		return strings.TrimRight(b.String(), "\n")
	}

	fmt.Fprintf(&b, "- Базовая стоимость: %s\n", Money(q.Base))
	for _, l := range q.Lines {
		switch {
		case l.Amount != 0:
			fmt.Fprintf(&b, "- %s: +%s\n", l.Label, Money(l.Amount))
		case l.Factor != 0:
			fmt.Fprintf(&b, "- %s: %s (x%s)\n", l.Label, e.esc(l.Value), validate.FormatNumber(round3(l.Factor)))
		default:
			fmt.Fprintf(&b, "- %s: %s\n", l.Label, e.esc(l.Value))
		}
	}
	fmt.Fprintf(&b, "- Срочность выполнения: %s (x%s)\n", q.Urgency.Label, validate.FormatNumber(q.Urgency.Factor))
	fmt.Fprintf(&b, "- Ориентировочная стоимость: %s\n", Money(q.Total))
	if q.Discount > 0 {
		fmt.Fprintf(&b, "- Акция: скидка %s%% (-%s)\n", validate.FormatNumber(round3(q.Rate*100)), Money(q.Discount))
		fmt.Fprintf(&b, "- Стоимость со скидкой: %s\n", Money(q.Final))
	}
	b.WriteString("\n" + reportFooter)
	return b.String()
}

// Report computes the quote and renders it, substituting FallbackReport on any error.
// The error is returned for logging only.
func (e Engine) Report(rule Rule, in Input) (string, Quote, error) {
	q, err := e.Quote(rule, in)
	if err != nil {
		return FallbackReport, Quote{}, err
	}
	return e.Render(q), q, nil
}

// Money formats an amount with space-separated thousands, e.g. "12 500 руб.".
func Money(v int) string {
	return Thousands(v) + " руб."
}

// Thousands groups digits by three with a plain space.
func Thousands(v int) string {
	s := strconv.Itoa(v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
