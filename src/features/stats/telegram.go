package stats

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler handles Telegram commands for the stats feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the stats feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes stats-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "stats":
		stats, err := h.service.Get(context.Background())
		if err != nil {
			bot.Send(tgbotapi.NewMessage(chatID, "❌ Could not reach the workspace: "+err.Error()))
			return nil
		}
		message := "📊 *Catalog stats*\n\n"
		message += fmt.Sprintf("💿 Albums: %d\n", stats.Total)
		message += fmt.Sprintf("🎧 Listened: %d (%d ranked, %d unranked)\n", stats.Listened, stats.Ranked, stats.Unranked)
		message += fmt.Sprintf("🖼 Covers: %d set, %d missing\n", stats.WithCover, stats.NoCover)
		message += fmt.Sprintf("🔖 Icons: %d set, %d missing\n", stats.WithIcon, stats.NoIcon)
		msg := tgbotapi.NewMessage(chatID, message)
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	default:
		msg := tgbotapi.NewMessage(chatID, "❌ Unknown command. Use /stats")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"stats": "Show catalog statistics",
	}
}

// HandleCallback handles callback queries for this feature (stats has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}
