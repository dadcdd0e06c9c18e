package notifier

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) string

type update struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// StartPolling long-polls getUpdates and answers commands from the configured chat.
// Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	t.poll(ctx, handler, 30, 5*time.Second)
}

func (t *TelegramNotifier) poll(ctx context.Context, handler CommandHandler, timeoutSec int, pause time.Duration) {
	client := &http.Client{Timeout: time.Duration(timeoutSec+5) * time.Second, Transport: t.Client.Transport}
	offset := 0

	for ctx.Err() == nil {
		var updates []update
		err := t.call(ctx, client, "getUpdates", map[string]interface{}{
			"offset":          offset,
			"timeout":         timeoutSec,
			"allowed_updates": []string{"message"},
		}, &updates)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			t.log.Warn().Err(err).Msg("polling request failed")
			select {
			case <-ctx.Done():
			case <-time.After(pause):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil {
				continue
			}
			if chat := strconv.FormatInt(u.Message.Chat.ID, 10); chat != t.ChatID {
				t.log.Warn().Str("chat", chat).Msg("ignoring message from unknown chat")
				continue
			}
			cmd := normalizeCommand(u.Message.Text)
			if cmd == "" {
				continue
			}
			t.log.Info().Str("command", cmd).Msg("received command")
			if reply := handler(ctx, cmd); reply != "" {
				if err := t.Send(ctx, reply); err != nil {
					t.log.Error().Err(err).Msg("send reply")
				}
			}
		}
	}
	t.log.Info().Msg("telegram polling stopped")
}

// normalizeCommand trims text and drops the @botname suffix Telegram adds in groups.
func normalizeCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	if strings.HasPrefix(fields[0], "/") {
		if at := strings.IndexByte(fields[0], '@'); at > 0 {
			fields[0] = fields[0][:at]
		}
	}
	return strings.Join(fields, " ")
}
