package dialogue

import (
	"fmt"

	"github.com/m3rciful/intakebot/intake/catalog"
	"github.com/m3rciful/intakebot/intake/gateway"
	"github.com/m3rciful/intakebot/intake/pricing"
)

// Buttons and commands recognized in free text.
const (
	CancelButton     = "Отмена заявки"
	CancelCommand    = "/cancel"
	StartCommand     = "/start"
	HelpCommand      = "/help"
	NewRequestButton = "📝 Новая заявка!"
	DoneButton       = "Готово"
)

// Callback payloads.
const (
	CallbackFlagYes    = "flag_yes"
	CallbackFlagNo     = "flag_no"
	CallbackConfirmYes = "confirm_yes"
	CallbackConfirmNo  = "confirm_no"
)

// DefaultWelcome is used when no phrases are configured.
var DefaultWelcome = []string{
	"Снова к нам? Отлично! Давайте новую заявку!",
	"Рады видеть вас снова! Готовы начать?",
	"Новая заявка — новые возможности! Поехали!",
}

const msgIntro = "🔌 Добро пожаловать в сервис консультаций *VoltHome (Бета)*!\n\n" +
	"Функция находится в тестировании — интерфейс и скорость отклика могут меняться.\n\n" +
	"Выберите тип консультации:"

const (
	msgCancelled         = "❌ Заявка отменена"
	msgNoSession         = "Чтобы оформить заявку, нажмите «📝 Новая заявка!»."
	msgUseButtons        = "Пожалуйста, используйте кнопки для выбора."
	msgCustomObject      = "📝 Введите свой вариант типа объекта:"
	msgAttachPrompt      = "Прикрепите фото/документы (план, ТЗ, скриншоты) — по одному сообщению.\nКогда закончите, нажмите «Готово»."
	msgAttachLimit       = "Достаточно вложений. Нажмите «Готово», чтобы продолжить."
	msgAttachOther       = "Пришлите фото/документ или нажмите «Готово»."
	msgAttachNotExpect   = "Вложения принимаются после ответов на вопросы анкеты."
	msgUrgencyPrompt     = "⏱️ Выберите срочность выполнения консультации:"
	msgUrgencyInvalid    = "Пожалуйста, выберите вариант срочности из предложенных кнопок."
	msgConfirmQuestion   = "Подтвердить заявку на консультацию?"
	msgFlagUseButtons    = "Ответьте, пожалуйста, кнопкой под вопросом."
	msgRetry             = "⚠️ Что-то пошло не так. Попробуйте ещё раз чуть позже."
	msgSubmitUndelivered = "⚠️ Не удалось подтвердить заявку. Пожалуйста, отправьте её ещё раз позже."
)

func msgAttachAdded(n int) string {
	return fmt.Sprintf("Добавлено вложений: %d. Можно отправить ещё или нажать «Готово».", n)
}

func msgSubmitted(number int) string {
	return fmt.Sprintf("✅ Ваша заявка на консультацию принята! Номер заявки №%d\n"+
		"Наш специалист свяжется с вами в ближайшее время.\n"+
		"Помните, консультация не заменяет проектирования!", number)
}

func newRequestKeyboard() *gateway.Keyboard {
	return gateway.Reply(NewRequestButton)
}

func cancelKeyboard() *gateway.Keyboard {
	return gateway.Reply(CancelButton)
}

func servicesKeyboard(cat *catalog.Catalog) *gateway.Keyboard {
	return gateway.Reply(append(cat.Buttons(), CancelButton)...)
}

func optionsKeyboard(options []string) *gateway.Keyboard {
	var rows [][]string
	for i := 0; i < len(options); i += 2 {
		end := min(i+2, len(options))
		rows = append(rows, options[i:end])
	}
	rows = append(rows, []string{CancelButton})
	return gateway.ReplyRows(rows...)
}

func attachmentsKeyboard() *gateway.Keyboard {
	return gateway.Reply(DoneButton, CancelButton)
}

func urgencyKeyboard() *gateway.Keyboard {
	return gateway.Reply(append(pricing.UrgencyLabels(), CancelButton)...)
}

func flagKeyboard(f catalog.Flag) *gateway.Keyboard {
	return gateway.Inline(
		gateway.Button{Text: f.Yes, Data: CallbackFlagYes},
		gateway.Button{Text: f.No, Data: CallbackFlagNo},
	)
}

func confirmKeyboard() *gateway.Keyboard {
	return gateway.Inline(
		gateway.Button{Text: "✅ Подтвердить", Data: CallbackConfirmYes},
		gateway.Button{Text: "❌ Отменить", Data: CallbackConfirmNo},
	)
}

func questionKeyboard(q catalog.Question) *gateway.Keyboard {
	if len(q.Options) > 0 {
		return optionsKeyboard(q.Options)
	}
	return cancelKeyboard()
}
