package sorting

import (
	"strings"

	"waxwing/src/features/jobs"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler handles Telegram commands for the sorting feature
type TelegramHandler struct {
	service *Service
	jobs    jobs.JobService
}

// NewTelegramHandler creates a new Telegram handler for the sorting feature
func NewTelegramHandler(service *Service, jobService jobs.JobService) *TelegramHandler {
	return &TelegramHandler{service: service, jobs: jobService}
}

// HandleCommand processes sorting-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "sort":
		metadata := map[string]any{}
		for _, arg := range strings.Fields(args) {
			switch arg {
			case "title", "artist", "position":
				metadata["key"] = arg
			case "desc":
				metadata["descending"] = true
			case "compact":
				metadata["compact"] = true
			}
		}
		jobID, err := h.jobs.StartJob("sort_albums", "Sort albums", metadata)
		if err != nil {
			bot.Send(tgbotapi.NewMessage(chatID, "❌ Could not start sort: "+err.Error()))
			return nil
		}
		msg := tgbotapi.NewMessage(chatID, "🔢 *Sort started*\nJob `"+jobID+"` is running. Use /jobs to follow it.")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	case "cleanup":
		jobID, err := h.jobs.StartJob("cleanup_positions", "Clean up position options", nil)
		if err != nil {
			bot.Send(tgbotapi.NewMessage(chatID, "❌ Could not start cleanup: "+err.Error()))
			return nil
		}
		msg := tgbotapi.NewMessage(chatID, "🧹 *Cleanup started*\nJob `"+jobID+"` is running.")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	default:
		msg := tgbotapi.NewMessage(chatID, "❌ Unknown command. Use /sort or /cleanup")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"sort":    "Sort the album catalog (args: title|artist|position, desc, compact)",
		"cleanup": "Remove stale position options from the workspace",
	}
}

// HandleCallback handles callback queries for this feature (sorting has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}
