package catalog

import (
	"github.com/m3rciful/intakebot/intake/pricing"
	"github.com/m3rciful/intakebot/intake/validate"
)

// Question ids shared by pricing rules and the dialogue.
const (
	FieldObjectType   = "object_type"
	FieldArea         = "area"
	FieldGroups       = "groups"
	FieldRooms        = "rooms"
	FieldPages        = "pages"
	FieldTopic        = "topic"
	FieldWishes       = "wishes"
	FieldRequirements = "requirements"
	FieldDescription  = "description"
)

// ObjectOther opens the free-text object type prompt.
const ObjectOther = "Другое"

// ObjectTypes are the offered building types.
var ObjectTypes = []string{"Жилое", "Коммерческое", "Промышленное", ObjectOther}

// ObjectFactors is shared by every category priced by building type; other answers use
// DefaultObjectFactor.
var ObjectFactors = map[string]float64{
	"Жилое":        1.0,
	"Коммерческое": 1.15,
	"Промышленное": 1.3,
}

// DefaultObjectFactor applies to custom object types.
const DefaultObjectFactor = 1.2

func objectType() Question {
	return Question{
		ID:      FieldObjectType,
		Prompt:  "🏢 Выберите тип объекта:",
		Label:   "🏢 Тип объекта",
		Kind:    validate.KindChoice,
		Options: ObjectTypes,
		Custom:  ObjectOther,
	}
}

func area() Question {
	return Question{ID: FieldArea, Prompt: "Укажите площадь объекта (м²):", Label: "📏 Площадь", Unit: "м²", Kind: validate.KindArea}
}

func objectLookup() pricing.Lookup {
	return pricing.Lookup{Field: FieldObjectType, Label: "Тип объекта", Table: ObjectFactors, Default: DefaultObjectFactor}
}

// Default returns the production catalog.
func Default() *Catalog {
	return New(draft(), loads(), full(), study(), tech(), other())
}

func draft() Category {
	return Category{
		ID:            "draft",
		Button:        "📐 Чертежи и схемы",
		Title:         "Чертежи и схемы",
		SubPrompt:     "Выберите вид чертежа:",
		SubCategories: []string{"Однолинейная схема", "План розеток и освещения", "Схема щита"},
		Questions: []Question{
			objectType(),
			area(),
			{ID: FieldGroups, Prompt: "Количество групп (линий) в щите:", Label: "🔌 Групп", Kind: validate.KindCount},
			{ID: FieldWishes, Prompt: "Дополнительные пожелания:", Label: "💡 Пожелания", Kind: validate.KindText},
		},
		Flags: []Flag{{
			Name:    "has_group_list",
			After:   FieldGroups,
			Prompt:  "Есть ли у вас готовый перечень групп потребителей?",
			Yes:     "✅ Есть перечень",
			No:      "Нет перечня",
			Summary: "📋 Перечень групп",
			YesText: "есть",
			NoText:  "нет",
		}},
		Pricing: pricing.Rule{
			Title: "Предварительный расчёт стоимости чертежа",
			SubBase: map[string]int{
				"Однолинейная схема":       4000,
				"План розеток и освещения": 5000,
				"Схема щита":               3500,
			},
			Coefficients: []pricing.Coefficient{
				objectLookup(),
				pricing.Clamp{Field: FieldArea, Label: "Площадь", Unit: "м²", Cap: 300, Divisor: 1000},
			},
			Surcharges: []pricing.Surcharge{
				{Flag: "has_group_list", When: false, Amount: 1500, Label: "Составление перечня групп"},
			},
		},
	}
}

func loads() Category {
	return Category{
		ID:            "loads",
		Button:        "⚡ Расчёт нагрузок",
		Title:         "Расчёт нагрузок",
		SubPrompt:     "Что нужно рассчитать?",
		SubCategories: []string{"Расчёт мощности", "Подбор автоматов", "Расчёт сечения кабеля"},
		Questions: []Question{
			objectType(),
			area(),
			{ID: FieldGroups, Prompt: "Количество групп (линий):", Label: "🔌 Групп", Kind: validate.KindCount},
			{ID: FieldRequirements, Prompt: "Перечислите мощные потребители и особые требования:", Label: "💼 Требования", Kind: validate.KindText},
		},
		Flags: []Flag{{
			Name:    "inrush",
			After:   FieldGroups,
			Prompt:  "Учитывать пусковые токи двигателей и компрессоров?",
			Yes:     "⚙️ Учитывать",
			No:      "Не нужно",
			Summary: "⚙️ Пусковые токи",
			YesText: "учитывать",
			NoText:  "не учитывать",
		}},
		Pricing: pricing.Rule{
			Title: "Предварительный расчёт стоимости расчёта нагрузок",
			SubBase: map[string]int{
				"Расчёт мощности":       3000,
				"Подбор автоматов":      3500,
				"Расчёт сечения кабеля": 4000,
			},
			Coefficients: []pricing.Coefficient{
				pricing.Clamp{Field: FieldGroups, Label: "Групп", Cap: 30, Divisor: 100},
			},
			Surcharges: []pricing.Surcharge{
				{Flag: "inrush", When: true, Amount: 1000, Label: "Учёт пусковых токов"},
			},
		},
	}
}

func full() Category {
	return Category{
		ID:     "full",
		Button: "🏠 Полная консультация",
		Title:  "Полная консультация",
		Questions: []Question{
			objectType(),
			area(),
			{ID: FieldRooms, Prompt: "Количество помещений:", Label: "🚪 Помещений", Kind: validate.KindCount},
		},
		Flags: []Flag{{
			Name:    "mount_scheme",
			After:   FieldRooms,
			Prompt:  "Нужна ли *схема монтажа* электропроводки?",
			Yes:     "📐 Нужна схема",
			No:      "Без схемы",
			Summary: "📐 Схема монтажа",
			YesText: "нужна",
			NoText:  "не требуется",
		}},
		Pricing: pricing.Rule{
			Title: "Предварительный расчёт стоимости консультации",
			Base:  8000,
			Coefficients: []pricing.Coefficient{
				objectLookup(),
				pricing.Clamp{Field: FieldArea, Label: "Площадь", Unit: "м²", Cap: 250, Divisor: 1000},
			},
			Surcharges: []pricing.Surcharge{
				{Flag: "mount_scheme", When: true, Amount: 2000, Label: "Схема монтажа"},
			},
		},
	}
}

func drawingFlag(after string) Flag {
	return Flag{
		Name:    "need_drawing",
		After:   after,
		Prompt:  "Нужна ли консультация с подготовкой *чертежа схемы щита*?",
		Yes:     "📐 Нужен чертёж",
		No:      "Без чертежа",
		Summary: "📐 Чертёж схемы щита",
		YesText: "нужен",
		NoText:  "не требуется",
	}
}

func study() Category {
	return Category{
		ID:     "study",
		Button: "📚 Учебная консультация",
		Title:  "Учебная консультация",
		Questions: []Question{
			{ID: FieldTopic, Prompt: "Укажите тему учебного вопроса:", Label: "📖 Тема", Kind: validate.KindText},
			{ID: FieldPages, Prompt: "Требуемый объем консультации (страниц):", Label: "📄 Объём", Unit: "стр.", Kind: validate.KindCount},
			{ID: FieldWishes, Prompt: "Дополнительные пожелания:", Label: "💡 Пожелания", Kind: validate.KindText},
		},
		Flags: []Flag{drawingFlag(FieldPages)},
		Pricing: pricing.Rule{
			Title: "Стоимость учебной консультации",
			Tiers: &pricing.Tiered{
				Field: FieldPages,
				Label: "Объём",
				Unit:  "стр.",
				Tiers: []pricing.Tier{{UpTo: 20, Price: 3000}, {UpTo: 40, Price: 6500}, {Price: 9600}},
			},
		},
	}
}

func tech() Category {
	return Category{
		ID:     "tech",
		Button: "🏗️ Рабочая консультация",
		Title:  "Рабочая консультация",
		Questions: []Question{
			area(),
			{ID: FieldRooms, Prompt: "Количество помещений:", Label: "🚪 Помещений", Kind: validate.KindCount},
			objectType(),
			{ID: FieldRequirements, Prompt: "Особые требования к консультации:", Label: "💼 Требования", Kind: validate.KindText},
		},
		Flags: []Flag{drawingFlag(FieldRooms)},
		Pricing: pricing.Rule{
			Title: "Предварительный расчёт стоимости консультации",
			Tiers: &pricing.Tiered{
				Field: FieldArea,
				Label: "Площадь объекта",
				Unit:  "м²",
				Tiers: []pricing.Tier{{UpTo: 50, Price: 7500}, {UpTo: 100, Price: 12500}, {UpTo: 200, Price: 20000}, {Price: 31250}},
			},
			Coefficients: []pricing.Coefficient{objectLookup()},
		},
	}
}

func other() Category {
	return Category{
		ID:     "other",
		Button: "✍️ Другое",
		Title:  "Другое",
		Questions: []Question{
			{ID: FieldDescription, Prompt: "Опишите задачу в свободной форме:", Label: "📝 Описание", Kind: validate.KindText},
		},
		Pricing: pricing.Rule{Title: "Стоимость", Manual: true},
	}
}
