// Package pricing computes the indicative quote shown before a request is confirmed.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Input is the flattened view of a finished questionnaire.
type Input struct {
	SubCategory string
	// Fields maps question ids to canonical answers.
	Fields  map[string]string
	Flags   map[string]bool
	Urgency string
}

// FieldError reports a field that was missing or could not be parsed.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("pricing field %q: %s", e.Field, e.Reason)
}

// ErrUnknownUrgency is returned for an urgency label outside the fixed tiers.
var ErrUnknownUrgency = errors.New("pricing: unknown urgency")

func (in Input) number(field string) (float64, error) {
	raw, ok := in.Fields[field]
	if !ok {
		return 0, &FieldError{Field: field, Reason: "missing"}
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FieldError{Field: field, Reason: "not a number"}
	}
	return v, nil
}

// Coefficient is a multiplicative factor derived from one answer.
// Implementations are Lookup and Clamp.
type Coefficient interface {
	factor(in Input) (Line, float64, error)
}

// Lookup maps the leading word of an answer to a factor. Unmatched answers,
// including custom "Другое (...)" descriptions, take the Default arm.
type Lookup struct {
	Field   string
	Label   string
	Table   map[string]float64
	Default float64
}

func (l Lookup) factor(in Input) (Line, float64, error) {
	raw, ok := in.Fields[l.Field]
	if !ok {
		return Line{}, 0, &FieldError{Field: l.Field, Reason: "missing"}
	}
	key, _, _ := strings.Cut(strings.TrimSpace(raw), " ")
	f, ok := l.Table[key]
	if !ok {
		f = l.Default
	}
	return Line{Label: l.Label, Value: raw, Factor: f}, f, nil
}

// Clamp yields 1 + min(value, Cap)/Divisor.
type Clamp struct {
	Field   string
	Label   string
	Unit    string
	Cap     float64
	Divisor float64
}

func (c Clamp) factor(in Input) (Line, float64, error) {
	v, err := in.number(c.Field)
	if err != nil {
		return Line{}, 0, err
	}
	if v < 0 {
		return Line{}, 0, &FieldError{Field: c.Field, Reason: "negative"}
	}
	if c.Divisor <= 0 {
		return Line{}, 0, &FieldError{Field: c.Field, Reason: "clamp divisor not positive"}
	}
	f := 1 + math.Min(v, c.Cap)/c.Divisor
	return Line{Label: c.Label, Value: withUnit(in.Fields[c.Field], c.Unit), Factor: f}, f, nil
}

// Tier is an upper-inclusive bound on a numeric field; UpTo == 0 closes the table.
type Tier struct {
	UpTo  float64
	Price int
}

// Tiered picks the base price from the first tier whose bound holds the field value.
type Tiered struct {
	Field string
	Label string
	Unit  string
	Tiers []Tier
}

func (t Tiered) base(in Input) (Line, int, error) {
	v, err := in.number(t.Field)
	if err != nil {
		return Line{}, 0, err
	}
	for _, tier := range t.Tiers {
		if tier.UpTo == 0 || v <= tier.UpTo {
			return Line{Label: t.Label, Value: withUnit(in.Fields[t.Field], t.Unit)}, tier.Price, nil
		}
	}
	return Line{}, 0, &FieldError{Field: t.Field, Reason: "no tier covers value"}
}

// Surcharge adds Amount when flag Flag equals When.
type Surcharge struct {
	Flag   string
	When   bool
	Amount int
	Label  string
}

// Rule is the pricing configuration of one category.
type Rule struct {
	Title string
	// Base applies when neither SubBase nor Tiers select a price.
	Base         int
	SubBase      map[string]int
	Tiers        *Tiered
	Coefficients []Coefficient
	Surcharges   []Surcharge
	// Manual rules skip computation; a specialist sets the price.
	Manual bool
}

// Urgency is one of the fixed delivery tiers.
type Urgency struct {
	Label  string
	Factor float64
}

// Urgencies lists the tiers from fastest to slowest.
var Urgencies = []Urgency{
	{Label: "Срочно 24 часа", Factor: 1.5},
	{Label: "В течении 3-5 дней", Factor: 1.2},
	{Label: "Стандартно 7 дней", Factor: 1.0},
}

// UrgencyLabels returns the tier labels in display order.
func UrgencyLabels() []string {
	out := make([]string, len(Urgencies))
	for i, u := range Urgencies {
		out[i] = u.Label
	}
	return out
}

// UrgencyFactor returns the multiplier for label.
func UrgencyFactor(label string) (float64, bool) {
	for _, u := range Urgencies {
		if u.Label == label {
			return u.Factor, true
		}
	}
	return 0, false
}

// Promo is the optional promotional discount.
type Promo struct {
	Enabled  bool
	Fraction float64
}

// MaxPromoFraction bounds the discount.
const MaxPromoFraction = 0.9

// Rate returns the effective discount fraction clamped to [0, MaxPromoFraction].
func (p Promo) Rate() float64 {
	if !p.Enabled || math.IsNaN(p.Fraction) || p.Fraction <= 0 {
		return 0
	}
	return math.Min(p.Fraction, MaxPromoFraction)
}

// Apply returns the discount taken off total. A positive rate on a positive total
// always takes at least one unit.
func (p Promo) Apply(total int) int {
	rate := p.Rate()
	if rate == 0 || total <= 0 {
		return 0
	}
	d := int(math.Round(float64(total) * rate))
	if d < 1 {
		d = 1
	}
	if d > total {
		d = total
	}
	return d
}

func withUnit(v, unit string) string {
	if unit == "" {
		return v
	}
	return v + " " + unit
}
