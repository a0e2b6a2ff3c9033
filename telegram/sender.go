package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// APIError is a non-2xx answer from the Bot API
type APIError struct {
	Method      string
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("telegram API error: %s %d %s", e.Method, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

type sendMessageRequest struct {
	ChatID      int64                          `json:"chat_id"`
	Text        string                         `json:"text"`
	ParseMode   string                         `json:"parse_mode"`
	ReplyMarkup *tgbotapi.InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
}

type setWebhookRequest struct {
	URL            string   `json:"url"`
	SecretToken    string   `json:"secret_token,omitempty"`
	AllowedUpdates []string `json:"allowed_updates"`
}

type setMyCommandsRequest struct {
	Commands []tgbotapi.BotCommand `json:"commands"`
}

// Sender talks to the Bot API with JSON bodies
type Sender struct {
	token    string
	endpoint string // tgbotapi.APIEndpoint style format: token, method
	client   *http.Client
	metrics  *Metrics
	logger   logrus.FieldLogger
}

type SenderConfig func(s *Sender)

// WithEndpoint overrides the Bot API endpoint format (for testing or a local Bot API server)
func WithEndpoint(endpoint string) SenderConfig {
	return func(s *Sender) {
		s.endpoint = endpoint
	}
}

func WithTimeout(timeout time.Duration) SenderConfig {
	return func(s *Sender) {
		s.client.Timeout = timeout
	}
}

func WithSenderMetrics(m *Metrics) SenderConfig {
	return func(s *Sender) {
		s.metrics = m
	}
}

func NewSender(token string, configs ...SenderConfig) *Sender {
	s := &Sender{
		token:    token,
		endpoint: tgbotapi.APIEndpoint,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
		},
		logger: GetModuleLogger("sender"),
	}
	for i := range configs {
		configs[i](s)
	}
	return s
}

func (s *Sender) observe(method string, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.TelegramRequests.WithLabelValues(method, result).Inc()
}

// call posts payload to method and returns the raw response body
func (s *Sender) call(ctx context.Context, method string, payload interface{}) (raw json.RawMessage, err error) {
	defer func() { s.observe(method, err) }()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("telegram %s: encode: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf(s.endpoint, s.token, method), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("telegram %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		// the url error embeds the token
		return nil, fmt.Errorf("telegram %s: request failed: %w", method, unwrapURLError(err))
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telegram %s: read body: %w", method, err)
	}
	if resp.StatusCode/100 != 2 {
		var apiResp tgbotapi.APIResponse
		if jsonErr := json.Unmarshal(raw, &apiResp); jsonErr != nil {
			apiResp.Description = string(raw)
		}
		s.logger.WithFields(logrus.Fields{
			"method":      method,
			"status":      resp.StatusCode,
			"error_code":  apiResp.ErrorCode,
			"description": apiResp.Description,
		}).Error("telegram API error")
		return nil, &APIError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			Description: apiResp.Description,
		}
	}
	return raw, nil
}

// Send posts a Markdown message to chatID, with an inline keyboard when markup is not nil.
// The Bot API's JSON answer is returned untouched.
func (s *Sender) Send(ctx context.Context, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) (json.RawMessage, error) {
	return s.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   tgbotapi.ModeMarkdown,
		ReplyMarkup: markup,
	})
}

// Acknowledge answers a callback query so the client stops showing the loading state.
// Failures are logged and dropped.
func (s *Sender) Acknowledge(ctx context.Context, callbackQueryID string) {
	_, err := s.call(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: callbackQueryID})
	if err != nil {
		s.logger.WithField("callback_query_id", callbackQueryID).WithError(err).Warn("answer callback query failed")
	}
}

// SetWebhook points the bot at webhookURL, secret is echoed back by Telegram in every webhook call
func (s *Sender) SetWebhook(ctx context.Context, webhookURL, secret string) error {
	_, err := s.call(ctx, "setWebhook", setWebhookRequest{
		URL:            webhookURL,
		SecretToken:    secret,
		AllowedUpdates: []string{"message", "callback_query"},
	})
	return err
}

func (s *Sender) SetMyCommands(ctx context.Context, commands []tgbotapi.BotCommand) error {
	_, err := s.call(ctx, "setMyCommands", setMyCommandsRequest{Commands: commands})
	return err
}
