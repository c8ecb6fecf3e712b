package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"health-ai/internal/apperr"
	"health-ai/internal/assistant"
	"health-ai/internal/models"
	"health-ai/pkg/logger"
)

const (
	helpText = "I'm your nutrition assistant. Link your profile with /link <user id>, " +
		"then ask me for a diet plan, tell me what you ate, or just chat."
	notLinkedText = "Please link your profile first: /link <user id>"
	failureText   = "Sorry, something went wrong. Please try again later."
)

// Dispatcher is satisfied by *assistant.Dispatcher.
type Dispatcher interface {
	Handle(ctx context.Context, rawUserID, message string) (assistant.Response, error)
}

// TelegramBot is a chat front end over the same dispatcher as POST /ai.
// Links from Telegram users to profile ids live in memory only.
type TelegramBot struct {
	bot        *tgbotapi.BotAPI
	dispatcher Dispatcher
	profiles   *assistant.Profiles
	logger     *logger.Logger
	links      map[int64]models.UserID
	linksMutex sync.RWMutex
	handlers   sync.WaitGroup
}

func NewTelegramBot(token string, dispatcher Dispatcher, profiles *assistant.Profiles, logger *logger.Logger) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	logger.Info("Authorized on Telegram", "username", bot.Self.UserName)

	return &TelegramBot{
		bot:        bot,
		dispatcher: dispatcher,
		profiles:   profiles,
		logger:     logger,
		links:      make(map[int64]models.UserID),
	}, nil
}

// Start begins receiving updates from Telegram via polling
func (t *TelegramBot) Start(ctx context.Context) error {
	_, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: true,
	})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := t.bot.GetUpdatesChan(updateConfig)
	t.logger.Info("Started receiving Telegram updates")

	go t.handleUpdates(ctx, updates)

	return nil
}

func (t *TelegramBot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		t.handlers.Add(1)
		go func(message *tgbotapi.Message) {
			defer t.handlers.Done()
			defer func() {
				if r := recover(); r != nil {
					t.logger.Error("Recovered from panic while processing update", "error", r)
				}
			}()

			reply := t.reply(ctx, message.From.ID, message.Text, message.IsCommand(), message.Command(), message.CommandArguments())
			if _, err := t.bot.Send(tgbotapi.NewMessage(message.Chat.ID, reply)); err != nil {
				t.logger.Error("Failed to send reply", "chat_id", message.Chat.ID, "error", err)
			}
		}(update.Message)
	}
}

// reply computes the text answer for one incoming message.
func (t *TelegramBot) reply(ctx context.Context, telegramID int64, text string, isCommand bool, command, args string) string {
	if isCommand {
		switch command {
		case "start", "help":
			return helpText
		case "link":
			return t.link(ctx, telegramID, args)
		case "unlink":
			t.linksMutex.Lock()
			delete(t.links, telegramID)
			t.linksMutex.Unlock()
			return "Profile unlinked."
		default:
			return "Unknown command. " + helpText
		}
	}

	t.linksMutex.RLock()
	userID, ok := t.links[telegramID]
	t.linksMutex.RUnlock()
	if !ok {
		return notLinkedText
	}

	resp, err := t.dispatcher.Handle(ctx, userID.String(), text)
	if err != nil {
		return describeError(err)
	}
	return FormatResponse(resp)
}

func (t *TelegramBot) link(ctx context.Context, telegramID int64, rawID string) string {
	profile, err := t.profiles.Lookup(ctx, rawID)
	if err != nil {
		return describeError(err)
	}

	t.linksMutex.Lock()
	t.links[telegramID] = profile.ID
	t.linksMutex.Unlock()

	t.logger.Info("Linked Telegram user", "telegram_id", telegramID, "user_id", profile.ID)
	return fmt.Sprintf("Hi %s, your profile is linked.", profile.Name)
}

func describeError(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidIdentifier:
		return "That doesn't look like a valid user id."
	case apperr.KindNotFound:
		return "I couldn't find a completed profile for that user id."
	case apperr.KindUnknownResponseType, apperr.KindMalformedResponse:
		return "I didn't understand the assistant's answer. Please rephrase and try again."
	default:
		return failureText
	}
}

// FormatResponse renders a dispatcher response as plain chat text.
func FormatResponse(resp assistant.Response) string {
	switch r := resp.(type) {
	case *assistant.DietPlan:
		var b strings.Builder
		b.WriteString(r.Message)
		if n, ok := r.Plan["dailyNutrition"].(map[string]interface{}); ok {
			fmt.Fprintf(&b, "\n\nDaily target: %v kcal, protein %v, carbs %v, fats %v",
				n["calories"], n["protein"], n["carbs"], n["fats"])
		}
		if goal, ok := r.Plan["goal"].(string); ok && goal != "" {
			fmt.Fprintf(&b, "\nGoal: %s", goal)
		}
		b.WriteString("\nThe full 7-day plan is saved to your profile.")
		return b.String()
	case *assistant.MealLog:
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n\n%s:", r.Message, r.MealType)
		for _, item := range r.Items {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "\n- %v (%v kcal)", m["name"], m["calories"])
		}
		if total, ok := r.Payload["totalCalories"]; ok {
			fmt.Fprintf(&b, "\nTotal: %v kcal", total)
		}
		return b.String()
	case *assistant.Conversation:
		return r.Message
	default:
		return failureText
	}
}

// Stop stops polling and waits for in-flight replies until ctx is done.
func (t *TelegramBot) Stop(ctx context.Context) error {
	t.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		t.handlers.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
