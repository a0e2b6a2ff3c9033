package telegram

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yangrq1018/safemoney-bot/util"
)

// maxUpdateBytes bounds a single webhook body, Telegram updates are a few KiB at most
const maxUpdateBytes = 1 << 20

type webhookReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func writeReply(w http.ResponseWriter, status int, reply webhookReply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(reply)
}

// ServeHTTP is the webhook endpoint. Telegram retries anything but a 2xx, so updates the
// bot does not handle are still answered with 200.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := b.logger.WithField("request_id", uuid.NewString())

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeReply(w, http.StatusMethodNotAllowed, webhookReply{Error: "method not allowed"})
		return
	}
	if ok, reason := b.authorizer.Validate(r); !ok {
		logger.WithField("remote", r.RemoteAddr).Warnf("webhook rejected: %s", reason)
		writeReply(w, http.StatusUnauthorized, webhookReply{Error: "unauthorized"})
		return
	}

	var raw tgbotapi.Update
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUpdateBytes)).Decode(&raw); err != nil {
		logger.WithError(err).Warn("invalid update body")
		writeReply(w, http.StatusBadRequest, webhookReply{Error: "invalid JSON"})
		return
	}
	if b.debug {
		logger.Debugf("update: %s", util.IndentedJSON(raw))
	}
	u, err := DecodeUpdate(raw)
	if err != nil {
		logger.WithError(err).Warn("malformed update")
		writeReply(w, http.StatusBadRequest, webhookReply{Error: ErrMalformedUpdate.Error()})
		return
	}

	logger = logger.WithFields(logrus.Fields{
		"update_id": u.ID,
		"kind":      u.Kind(),
	})
	if err = b.HandleUpdate(r.Context(), u); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			logger = logger.WithField("telegram_status", apiErr.StatusCode)
		}
		logger.WithError(err).Error("handle update")
		writeReply(w, http.StatusInternalServerError, webhookReply{Error: "internal error"})
		return
	}
	logger.Debug("update handled")
	writeReply(w, http.StatusOK, webhookReply{OK: true})
}
