package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArea(t *testing.T) {
	for raw, want := range map[string]float64{"75": 75, " 75.5 ": 75.5, "75,5": 75.5, "0.1": 0.1} {
		got, err := Area(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"abc", "", "0", "-3", "NaN", "Inf", "1,2,3", "12 м²"} {
		_, err := Area(raw)
		var rej *Rejection
		require.True(t, errors.As(err, &rej), raw)
		assert.Contains(t, rej.Message, "положительным числом")
	}
}

func TestCount(t *testing.T) {
	got, err := Count(" 007 ")
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	got, err = Count("0")
	require.NoError(t, err)
	assert.Zero(t, got)

	for _, raw := range []string{"-1", "3.5", "три", "", "99999999999999999999999"} {
		_, err := Count(raw)
		assert.Error(t, err, raw)
	}
}

func TestChoiceListsSameOptions(t *testing.T) {
	opts := []string{"Жилое", "Коммерческое"}
	got, err := Choice("Жилое", opts)
	require.NoError(t, err)
	assert.Equal(t, "Жилое", got)

	_, err = Choice("жилое", opts)
	require.Error(t, err)
	assert.Equal(t, "Пожалуйста, используйте кнопки для выбора: Жилое, Коммерческое.", err.Error())
}

func TestAnswerCanonicalForms(t *testing.T) {
	cases := []struct {
		kind Kind
		raw  string
		want string
	}{
		{KindArea, "75,50", "75.5"},
		{KindCount, "03", "3"},
		{KindText, "  щит на 24 модуля ", "щит на 24 модуля"},
		{KindText, "   ", ""},
		{KindChoice, "Промышленное", "Промышленное"},
	}
	for _, tc := range cases {
		got, err := Answer(tc.kind, tc.raw, []string{"Промышленное"})
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}
