// Package telegramtest runs an in-process Bot API that records what the bot sends.
package telegramtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Call is one request received by the fake API
type Call struct {
	Token  string
	Method string
	Body   []byte
}

func (c Call) Decode(v interface{}) error {
	return json.Unmarshal(c.Body, v)
}

// SentMessage is the sendMessage body as the bot encodes it
type SentMessage struct {
	ChatID      int64                          `json:"chat_id"`
	Text        string                         `json:"text"`
	ParseMode   string                         `json:"parse_mode"`
	ReplyMarkup *tgbotapi.InlineKeyboardMarkup `json:"reply_markup"`
}

// Buttons flattens the inline keyboard into "text=data" strings, row by row
func (m SentMessage) Buttons() [][]string {
	if m.ReplyMarkup == nil {
		return nil
	}
	var rows [][]string
	for _, row := range m.ReplyMarkup.InlineKeyboard {
		var r []string
		for _, btn := range row {
			data := ""
			if btn.CallbackData != nil {
				data = *btn.CallbackData
			}
			r = append(r, btn.Text+"="+data)
		}
		rows = append(rows, r)
	}
	return rows
}

type failure struct {
	status      int
	description string
}

type API struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []Call
	failures  map[string]failure
	messageID int
}

func NewAPI(t testing.TB) *API {
	a := &API{failures: make(map[string]failure)}
	a.Server = httptest.NewServer(http.HandlerFunc(a.handle))
	t.Cleanup(a.Close)
	return a
}

// Endpoint is the tgbotapi.APIEndpoint style format pointing at the fake
func (a *API) Endpoint() string {
	return a.URL + "/bot%s/%s"
}

// Fail makes every later call to method answer with status and description
func (a *API) Fail(method string, status int, description string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[method] = failure{status: status, description: description}
}

func (a *API) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.calls...)
}

func (a *API) CallsTo(method string) []Call {
	var out []Call
	for _, c := range a.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Messages decodes every sendMessage call in arrival order
func (a *API) Messages() []SentMessage {
	var out []SentMessage
	for _, c := range a.CallsTo("sendMessage") {
		var m SentMessage
		if err := c.Decode(&m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func (a *API) handle(w http.ResponseWriter, r *http.Request) {
	// /bot<token>/<method>
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "bot") {
		http.NotFound(w, r)
		return
	}
	body, _ := io.ReadAll(r.Body)
	call := Call{
		Token:  strings.TrimPrefix(parts[0], "bot"),
		Method: parts[1],
		Body:   body,
	}

	a.mu.Lock()
	a.calls = append(a.calls, call)
	fail, failing := a.failures[call.Method]
	a.messageID++
	id := a.messageID
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		w.WriteHeader(fail.status)
		_ = json.NewEncoder(w).Encode(tgbotapi.APIResponse{
			Ok:          false,
			ErrorCode:   fail.status,
			Description: fail.description,
		})
		return
	}
	result := json.RawMessage("true")
	if call.Method == "sendMessage" {
		result = json.RawMessage(fmt.Sprintf(`{"message_id":%d}`, id))
	}
	_ = json.NewEncoder(w).Encode(tgbotapi.APIResponse{Ok: true, Result: result})
}
