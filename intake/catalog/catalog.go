// Package catalog declares the closed set of service categories: their buttons, questions,
// side flags and pricing rules.
package catalog

import (
	"github.com/m3rciful/intakebot/intake/pricing"
	"github.com/m3rciful/intakebot/intake/session"
	"github.com/m3rciful/intakebot/intake/validate"
)

// Question is one step of a category's linear questionnaire.
type Question struct {
	ID     string
	Prompt string
	// Label titles the answer in the staff summary.
	Label   string
	Unit    string
	Kind    validate.Kind
	Options []string
	// Custom is the option that asks for a free-text description instead of being stored as is.
	Custom string
}

// State returns the dialogue state that collects this question.
func (q Question) State() session.State {
	switch {
	case q.ID == FieldObjectType:
		return session.StateObjectTypeSelect
	case q.Kind == validate.KindArea:
		return session.StateAreaInput
	default:
		return session.StateCategoryField
	}
}

// Flag is a yes/no side question asked once, right after the question named by After.
type Flag struct {
	Name   string
	After  string
	Prompt string
	Yes    string
	No     string
	// Summary titles the flag in the staff summary; YesText/NoText render its value.
	Summary string
	YesText string
	NoText  string
}

// Category is one selectable service.
type Category struct {
	ID     string
	Button string
	// Title names the service in the staff summary.
	Title         string
	SubPrompt     string
	SubCategories []string
	Questions     []Question
	Flags         []Flag
	Pricing       pricing.Rule
}

// HasSubCategories reports whether a sub-option must be chosen first.
func (c Category) HasSubCategories() bool {
	return len(c.SubCategories) > 0
}

// Question returns question i, or false when the questionnaire is exhausted.
func (c Category) Question(i int) (Question, bool) {
	if i < 0 || i >= len(c.Questions) {
		return Question{}, false
	}
	return c.Questions[i], true
}

// FlagAfter returns the side flag triggered by question id.
func (c Category) FlagAfter(id string) (Flag, bool) {
	for _, f := range c.Flags {
		if f.After == id {
			return f, true
		}
	}
	return Flag{}, false
}

// Flag returns the side flag by name.
func (c Category) Flag(name string) (Flag, bool) {
	for _, f := range c.Flags {
		if f.Name == name {
			return f, true
		}
	}
	return Flag{}, false
}

// Fields maps question ids to the answers collected so far.
func (c Category) Fields(answers []string) map[string]string {
	out := make(map[string]string, len(answers))
	for i, a := range answers {
		if i < len(c.Questions) {
			out[c.Questions[i].ID] = a
		}
	}
	return out
}

// Catalog is an ordered, immutable set of categories.
type Catalog struct {
	categories []Category
}

// New builds a catalog from categories in display order.
func New(categories ...Category) *Catalog {
	return &Catalog{categories: append([]Category(nil), categories...)}
}

// ByButton resolves a category from its keyboard label.
func (c *Catalog) ByButton(label string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.Button == label {
			return cat, true
		}
	}
	return Category{}, false
}

// ByID resolves a category from its identifier.
func (c *Catalog) ByID(id string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// Buttons lists category labels in display order.
func (c *Catalog) Buttons() []string {
	out := make([]string, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cat.Button
	}
	return out
}

// Categories returns a copy of the categories in display order.
func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}
