package jobs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler answers the /jobs command with the current run queue.
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the jobs feature.
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes jobs-related Telegram commands.
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "jobs":
		return h.handleJobs(bot, chatID)
	default:
		msg := tgbotapi.NewMessage(chatID, "❌ Unknown jobs command. Use /jobs")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}
}

// GetCommands returns the available commands for this handler.
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"jobs": "Show sort and cover runs",
	}
}

// HandleCallback handles callback queries for this feature (jobs has no callbacks).
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}

// handleJobs lists running jobs with their progress, then the most
// recent finished runs with the counters their task reported.
func (h *TelegramHandler) handleJobs(bot *tgbotapi.BotAPI, chatID int64) error {
	all := h.service.GetJobs()
	if len(all) == 0 {
		msg := tgbotapi.NewMessage(chatID, "📋 *No runs yet*")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	var active, finished []*Job
	for _, job := range all {
		if terminal(job.Status) {
			finished = append(finished, job)
		} else {
			active = append(active, job)
		}
	}
	if len(finished) > 5 {
		finished = finished[:5]
	}

	var b strings.Builder
	if len(active) > 0 {
		b.WriteString("🔄 *Running*\n")
		for _, job := range active {
			fmt.Fprintf(&b, "%s `%s` %d%% %s\n", statusEmoji(job.Status), job.Name, job.Progress, job.Message)
		}
	}
	if len(finished) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("📋 *Recent runs*\n")
		for _, job := range finished {
			fmt.Fprintf(&b, "%s `%s` (%s)", statusEmoji(job.Status), job.Name, job.UpdatedAt.Format(time.Kitchen))
			if stats := runStats(job); stats != "" {
				fmt.Fprintf(&b, " · %s", stats)
			}
			b.WriteString("\n")
		}
	}

	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
	return nil
}

// runStats renders the counters a task merged into the job metadata,
// in a fixed order so sort and cover runs read alike.
func runStats(job *Job) string {
	var parts []string
	for _, key := range []string{"total", "changed", "written", "updated", "skipped", "missing", "removed", "failed"} {
		if v, ok := job.Metadata[key]; ok {
			parts = append(parts, fmt.Sprintf("%s %v", key, v))
		}
	}
	return strings.Join(parts, ", ")
}

func statusEmoji(status JobStatus) string {
	switch status {
	case JobStatusPending:
		return "⏳"
	case JobStatusRunning:
		return "🔄"
	case JobStatusCompleted:
		return "✅"
	case JobStatusFailed:
		return "❌"
	case JobStatusCancelled:
		return "🚫"
	default:
		return "❓"
	}
}
