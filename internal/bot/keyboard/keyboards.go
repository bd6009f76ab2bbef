package keyboard

import (
	"fmt"

	"telegram_booking_bot/internal/scheduling"

	"github.com/go-telegram/bot/models"
)

// CreateServiceKeyboard создает клавиатуру с пресетами услуг
func CreateServiceKeyboard(presets []string) *models.ReplyKeyboardMarkup {
	var rows [][]models.KeyboardButton
	for _, p := range presets {
		rows = append(rows, []models.KeyboardButton{{Text: p}})
	}

	return &models.ReplyKeyboardMarkup{
		Keyboard:        rows,
		OneTimeKeyboard: true,
		ResizeKeyboard:  true,
	}
}

// CreateRemoveKeyboard создает объект для удаления клавиатуры
func CreateRemoveKeyboard() *models.ReplyKeyboardRemove {
	return &models.ReplyKeyboardRemove{
		RemoveKeyboard: true,
	}
}

// CreateAdminDecisionKeyboard создает inline клавиатуру подтверждения заявки
func CreateAdminDecisionKeyboard(requestID string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{
					Text:         "✅ Подтвердить",
					CallbackData: "adm:confirm:" + requestID,
				},
				{
					Text:         "❌ Отклонить",
					CallbackData: "adm:cancel:" + requestID,
				},
			},
		},
	}
}

// CreateSlotSuggestionKeyboard создает inline клавиатуру с предложенными слотами
func CreateSlotSuggestionKeyboard(slots []scheduling.Slot) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	for _, s := range slots {
		btn := models.InlineKeyboardButton{
			Text:         fmt.Sprintf("%s %s", s.Date, s.Time),
			CallbackData: fmt.Sprintf("slot:%s:%s", s.Date, s.Time),
		}
		rows = append(rows, []models.InlineKeyboardButton{btn})
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}
