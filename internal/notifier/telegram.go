package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	// maxMessageRunes is the Bot API limit for one sendMessage text.
	maxMessageRunes = 4096
)

// APIError is a Bot API reply with ok=false or a non-200 status.
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// Temporary reports whether repeating the call may succeed.
func (e *APIError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// TelegramNotifier sends analysis reports to one chat and reads its commands.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *http.Client
	log      zerolog.Logger
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, apiBase, proxyURL string, log zerolog.Logger) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  strings.TrimRight(apiBase, "/"),
		Client:   &http.Client{Timeout: 30 * time.Second, Transport: transport},
		log:      log.With().Str("component", "telegram").Logger(),
	}
}

// call posts payload as JSON to a Bot API method and decodes the result into out.
func (t *TelegramNotifier) call(ctx context.Context, client *http.Client, method string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/%s", t.APIBase, t.BotToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var res apiResponse
	if jsonErr := json.Unmarshal(raw, &res); jsonErr != nil || resp.StatusCode != http.StatusOK || !res.OK {
		apiErr := &APIError{Method: method, Code: resp.StatusCode, Description: res.Description}
		if res.ErrorCode != 0 {
			apiErr.Code = res.ErrorCode
		}
		if apiErr.Description == "" {
			apiErr.Description = strings.TrimSpace(string(raw))
		}
		if res.Parameters != nil {
			apiErr.RetryAfter = time.Duration(res.Parameters.RetryAfter) * time.Second
		}
		return apiErr
	}
	if out != nil && len(res.Result) > 0 {
		if err := json.Unmarshal(res.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// Send delivers text as HTML, split on line breaks into messages the API accepts.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	for _, chunk := range splitMessage(text, maxMessageRunes) {
		payload := map[string]string{
			"chat_id":    t.ChatID,
			"text":       chunk,
			"parse_mode": "HTML",
		}
		if err := t.call(ctx, t.Client, "sendMessage", payload, nil); err != nil {
			return err
		}
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	return t.sendWithBackoff(ctx, text, maxRetries, time.Second)
}

// sendWithBackoff doubles the wait after each failure unless the API names one.
// Permanent API errors (bad token, unknown chat) stop at once.
func (t *TelegramNotifier) sendWithBackoff(ctx context.Context, text string, maxRetries int, base time.Duration) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return err
		}
		if i == maxRetries {
			break
		}
		backoff := base << uint(i)
		if apiErr != nil && apiErr.RetryAfter > 0 {
			backoff = apiErr.RetryAfter
		}
		t.log.Warn().Err(err).Int("attempt", i+1).Int("max", maxRetries+1).Dur("backoff", backoff).Msg("send failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// splitMessage cuts text into pieces of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var (
		chunks []string
		cur    strings.Builder
		n      int
	)
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			n = 0
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			r := []rune(line)
			chunks = append(chunks, string(r[:limit]))
			line = string(r[limit:])
		}
		if ln := utf8.RuneCountInString(line); n+ln > limit {
			flush()
		}
		cur.WriteString(line)
		n += utf8.RuneCountInString(line)
	}
	flush()
	return chunks
}
