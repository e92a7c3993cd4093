package artwork

import (
	"waxwing/src/features/jobs"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler handles Telegram commands for the artwork feature
type TelegramHandler struct {
	service *Service
	jobs    jobs.JobService
}

// NewTelegramHandler creates a new Telegram handler for the artwork feature
func NewTelegramHandler(service *Service, jobService jobs.JobService) *TelegramHandler {
	return &TelegramHandler{service: service, jobs: jobService}
}

// HandleCommand processes artwork-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "covers":
		metadata := map[string]any{}
		if args == "all" {
			metadata["updateExisting"] = true
		}
		jobID, err := h.jobs.StartJob("update_covers", "Update covers", metadata)
		if err != nil {
			msg := tgbotapi.NewMessage(chatID, "❌ Could not start cover update: "+err.Error())
			bot.Send(msg)
			return nil
		}
		msg := tgbotapi.NewMessage(chatID, "🖼 *Cover update started*\nJob `"+jobID+"` is running. Use /jobs to follow it.")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	default:
		msg := tgbotapi.NewMessage(chatID, "❌ Unknown command. Use /covers")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"covers": "Fetch missing album covers (use 'covers all' to refresh existing)",
	}
}

// HandleCallback handles callback queries for this feature (artwork has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}
