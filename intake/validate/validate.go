// Package validate turns raw user input into canonical answer strings.
package validate

import (
	"math"
	"strconv"
	"strings"
)

// Kind selects the validation rule for a question.
type Kind int

const (
	KindText Kind = iota
	KindArea
	KindCount
	KindChoice
)

func (k Kind) String() string {
	switch k {
	case KindArea:
		return "area"
	case KindCount:
		return "count"
	case KindChoice:
		return "choice"
	default:
		return "text"
	}
}

// Rejection carries the message shown to the user when input is not accepted.
type Rejection struct {
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

const (
	msgArea   = "🔢 Введите площадь положительным числом, например 75 или 75,5."
	msgCount  = "🔢 Введите целое число (только цифры)."
	msgChoice = "Пожалуйста, используйте кнопки для выбора"
)

// Area accepts a positive decimal number with either '.' or ',' as separator.
func Area(raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return 0, &Rejection{Message: msgArea}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, &Rejection{Message: msgArea}
	}
	return v, nil
}

// Count accepts a non-negative integer written with digits only.
func Count(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, &Rejection{Message: msgCount}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &Rejection{Message: msgCount}
	}
	return v, nil
}

// Choice accepts only an exact match of one of the offered options.
func Choice(raw string, options []string) (string, error) {
	for _, o := range options {
		if raw == o {
			return o, nil
		}
	}
	return "", &Rejection{Message: ChoiceMessage(options)}
}

// ChoiceMessage lists the options the user may pick from.
func ChoiceMessage(options []string) string {
	if len(options) == 0 {
		return msgChoice + "."
	}
	return msgChoice + ": " + strings.Join(options, ", ") + "."
}

// Text accepts anything, trimmed. Empty input is a valid answer.
func Text(raw string) string {
	return strings.TrimSpace(raw)
}

// Answer validates raw for a question of the given kind and returns the canonical stored form:
// areas and counts are normalized, choices and text are stored as given.
func Answer(kind Kind, raw string, options []string) (string, error) {
	switch kind {
	case KindArea:
		v, err := Area(raw)
		if err != nil {
			return "", err
		}
		return FormatNumber(v), nil
	case KindCount:
		v, err := Count(raw)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(v), nil
	case KindChoice:
		return Choice(raw, options)
	default:
		return Text(raw), nil
	}
}

// FormatNumber renders v without trailing zeros, e.g. 75 or 75.5.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
