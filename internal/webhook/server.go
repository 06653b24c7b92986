// Package webhook is the HTTP surface: one POST route receiving Telegram
// updates and a health check. Every webhook call is acknowledged with
// 200 regardless of outcome, so Telegram never retry-storms the bot.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"srtbot/internal/bot"
	"srtbot/internal/dedup"
	"srtbot/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v4"
)

// Pipeline processes one inbound message end to end.
type Pipeline interface {
	Process(ctx context.Context, msg *tele.Message) error
}

type Server struct {
	store     dedup.Store
	pipeline  Pipeline
	messenger bot.Messenger
}

func NewServer(store dedup.Store, pipeline Pipeline, messenger bot.Messenger) *Server {
	return &Server{
		store:     store,
		pipeline:  pipeline,
		messenger: messenger,
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleHealth)
	r.Post("/webhook", s.handleWebhook)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("SRT Bot Running!"))
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	defer ack(w)

	var update tele.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logger.Warn("Failed to decode update", zap.Error(err))
		return
	}

	// Mark before processing so a redelivery racing this request
	// cannot run the pipeline twice.
	seen, err := s.store.Seen(r.Context(), update.ID)
	if err != nil {
		// Dedup degrades to best-effort when the backing store is down.
		logger.Error("Dedup check failed", zap.Int("update_id", update.ID), zap.Error(err))
	}
	if seen {
		logger.Debug("Skipping duplicate update", zap.Int("update_id", update.ID))
		return
	}

	if update.Message == nil {
		return
	}

	// The pipeline must run to completion even if Telegram drops the
	// inbound connection early.
	ctx := context.WithoutCancel(r.Context())

	if err := s.pipeline.Process(ctx, update.Message); err != nil {
		s.reportFailure(update.Message.Chat.ID, err)
	}
}

// reportFailure maps a pipeline error to its chat message: stage errors
// carry their own text, anything else gets the generic failure line.
func (s *Server) reportFailure(chatID int64, err error) {
	logger.Error("Pipeline failed", zap.Int64("chat_id", chatID), zap.Error(err))

	msg := fmt.Sprintf("🛑 Error: %v", err)
	var perr *bot.Error
	if errors.As(err, &perr) {
		msg = perr.UserMsg
	}

	if sendErr := s.messenger.SendText(chatID, msg); sendErr != nil {
		logger.Warn("Failed to report failure to chat",
			zap.Int64("chat_id", chatID),
			zap.Error(sendErr))
	}
}

func ack(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
