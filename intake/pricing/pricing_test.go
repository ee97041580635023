package pricing_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/intakebot/intake/catalog"
	"github.com/m3rciful/intakebot/intake/pricing"
)

const standard = "Стандартно 7 дней"

func fullConsultation(t *testing.T) catalog.Category {
	t.Helper()
	cat, ok := catalog.Default().ByID("full")
	require.True(t, ok)
	return cat
}

func TestPromoShowsOriginalAndDiscounted(t *testing.T) {
	e := pricing.Engine{Promo: pricing.Promo{Enabled: true, Fraction: 0.2}}
	q, err := e.Quote(pricing.Rule{Title: "Тест", Base: 1000}, pricing.Input{Urgency: standard})
	require.NoError(t, err)
	assert.Equal(t, 1000, q.Total)
	assert.Equal(t, 200, q.Discount)
	assert.Equal(t, 800, q.Final)

	report := e.Render(q)
	assert.Contains(t, report, "- Ориентировочная стоимость: 1 000 руб.")
	assert.Contains(t, report, "- Стоимость со скидкой: 800 руб.")
	assert.Contains(t, report, "скидка 20%")
}

func TestPromoBound(t *testing.T) {
	cases := []struct {
		name     string
		promo    pricing.Promo
		total    int
		discount int
	}{
		{"disabled", pricing.Promo{Fraction: 0.5}, 1000, 0},
		{"zero fraction", pricing.Promo{Enabled: true}, 1000, 0},
		{"negative fraction", pricing.Promo{Enabled: true, Fraction: -0.3}, 1000, 0},
		{"clamped", pricing.Promo{Enabled: true, Fraction: 5}, 1000, 900},
		{"at least one unit", pricing.Promo{Enabled: true, Fraction: 0.001}, 10, 1},
		{"zero total", pricing.Promo{Enabled: true, Fraction: 0.5}, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.promo.Apply(tc.total)
			assert.Equal(t, tc.discount, d)
			assert.GreaterOrEqual(t, tc.total-d, 0)
			assert.LessOrEqual(t, tc.total-d, tc.total)
		})
	}
}

func TestZeroPromoLeavesTotal(t *testing.T) {
	e := pricing.Engine{Promo: pricing.Promo{Enabled: true, Fraction: 0}}
	q, err := e.Quote(pricing.Rule{Base: 4321}, pricing.Input{Urgency: standard})
	require.NoError(t, err)
	assert.Equal(t, q.Total, q.Final)
	assert.NotContains(t, e.Render(q), "Акция")
}

func TestUrgencyOrdering(t *testing.T) {
	cat := fullConsultation(t)
	var e pricing.Engine
	totals := make([]int, 0, len(pricing.Urgencies))
	for _, u := range pricing.UrgencyLabels() {
		q, err := e.Quote(cat.Pricing, pricing.Input{
			Fields:  map[string]string{catalog.FieldObjectType: "Жилое", catalog.FieldArea: "75", catalog.FieldRooms: "3"},
			Urgency: u,
		})
		require.NoError(t, err)
		totals = append(totals, q.Total)
	}
	require.Len(t, totals, 3)
	assert.Greater(t, totals[0], totals[1])
	assert.Greater(t, totals[1], totals[2])
}

func TestFullConsultationQuote(t *testing.T) {
	cat := fullConsultation(t)
	in := pricing.Input{
		Fields:  map[string]string{catalog.FieldObjectType: "Жилое", catalog.FieldArea: "75", catalog.FieldRooms: "3"},
		Flags:   map[string]bool{"mount_scheme": false},
		Urgency: standard,
	}
	var e pricing.Engine
	q, err := e.Quote(cat.Pricing, in)
	require.NoError(t, err)
	// 8000 × 1.0 × 1.075 × 1.0
	assert.Equal(t, 8600, q.Total)

	in.Flags["mount_scheme"] = true
	q, err = e.Quote(cat.Pricing, in)
	require.NoError(t, err)
	assert.Equal(t, 10600, q.Total)
	assert.Contains(t, e.Render(q), "- Схема монтажа: +2 000 руб.")
}

func TestQuoteIsDeterministic(t *testing.T) {
	cat, ok := catalog.Default().ByID("draft")
	require.True(t, ok)
	in := pricing.Input{
		SubCategory: "Схема щита",
		Fields:      map[string]string{catalog.FieldObjectType: "Коммерческое", catalog.FieldArea: "120.5", catalog.FieldGroups: "12"},
		Flags:       map[string]bool{"has_group_list": false},
		Urgency:     "В течении 3-5 дней",
	}
	e := pricing.Engine{Promo: pricing.Promo{Enabled: true, Fraction: 0.1}}
	first, _, err := e.Report(cat.Pricing, in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, _, err := e.Report(cat.Pricing, in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestLookupDefaultArm(t *testing.T) {
	cat, ok := catalog.Default().ByID("tech")
	require.True(t, ok)
	base := map[string]string{catalog.FieldArea: "60", catalog.FieldRooms: "2"}
	quote := func(object string) pricing.Quote {
		fields := map[string]string{catalog.FieldObjectType: object}
		for k, v := range base {
			fields[k] = v
		}
		q, err := pricing.Engine{}.Quote(cat.Pricing, pricing.Input{Fields: fields, Urgency: standard})
		require.NoError(t, err)
		return q
	}
	assert.Equal(t, 12500, quote("Жилое").Total)
	assert.Equal(t, 15000, quote("Другое (склад)").Total)
	assert.Equal(t, 15000, quote("Гараж").Total)
}

func TestTiersAndClampCap(t *testing.T) {
	cat, ok := catalog.Default().ByID("study")
	require.True(t, ok)
	var e pricing.Engine
	for pages, want := range map[string]int{"20": 3000, "21": 6500, "40": 6500, "41": 9600, "500": 9600} {
		q, err := e.Quote(cat.Pricing, pricing.Input{Fields: map[string]string{catalog.FieldPages: pages}, Urgency: standard})
		require.NoError(t, err)
		assert.Equal(t, want, q.Total, "pages=%s", pages)
	}

	loads, ok := catalog.Default().ByID("loads")
	require.True(t, ok)
	q, err := e.Quote(loads.Pricing, pricing.Input{
		SubCategory: "Расчёт мощности",
		Fields:      map[string]string{catalog.FieldGroups: "1000"},
		Urgency:     standard,
	})
	require.NoError(t, err)
	// groups clamp at 30 → ×1.3
	assert.Equal(t, 3900, q.Total)
}

func TestFallbackOnBadInput(t *testing.T) {
	cat := fullConsultation(t)
	e := pricing.Engine{}

	report, _, err := e.Report(cat.Pricing, pricing.Input{Fields: map[string]string{catalog.FieldObjectType: "Жилое"}, Urgency: standard})
	var fe *pricing.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, catalog.FieldArea, fe.Field)
	assert.Equal(t, pricing.FallbackReport, report)

	report, _, err = e.Report(cat.Pricing, pricing.Input{
		Fields:  map[string]string{catalog.FieldObjectType: "Жилое", catalog.FieldArea: "75"},
		Urgency: "вчера",
	})
	assert.ErrorIs(t, err, pricing.ErrUnknownUrgency)
	assert.Equal(t, pricing.FallbackReport, report)
}

func TestManualRule(t *testing.T) {
	cat, ok := catalog.Default().ByID("other")
	require.True(t, ok)
	report, q, err := pricing.Engine{}.Report(cat.Pricing, pricing.Input{Urgency: "Срочно 24 часа"})
	require.NoError(t, err)
	assert.True(t, q.Manual)
	assert.Contains(t, report, "Стоимость определит специалист")
	assert.Contains(t, report, "(x1.5)")
}

func TestRenderEscapesUserValues(t *testing.T) {
	e := pricing.Engine{Escape: func(s string) string { return strings.ReplaceAll(s, "_", `\_`) }}
	q, err := e.Quote(fullConsultation(t).Pricing, pricing.Input{
		Fields:  map[string]string{catalog.FieldObjectType: "Другое (my_shed)", catalog.FieldArea: "10"},
		Urgency: standard,
	})
	require.NoError(t, err)
	assert.Contains(t, e.Render(q), `Другое (my\_shed)`)
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "0", pricing.Thousands(0))
	assert.Equal(t, "999", pricing.Thousands(999))
	assert.Equal(t, "1 000", pricing.Thousands(1000))
	assert.Equal(t, "12 500", pricing.Thousands(12500))
	assert.Equal(t, "1 234 567", pricing.Thousands(1234567))
	assert.Equal(t, "-31 250", pricing.Thousands(-31250))
	assert.Equal(t, "31 250 руб.", pricing.Money(31250))
}
