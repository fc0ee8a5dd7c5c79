// Package sink contains event consumers fed by the broadcast engine.
package sink

import (
	"context"
	"devhub/domain"
	"devhub/domain/event"
	apperrors "devhub/errors"
	"devhub/repositories"
	"errors"
	"fmt"
	"log/slog"
)

// ArchiveSink is the bridge between live chat and durable storage.
//
// The write is opportunistic: when the session or the author has no
// durable record -- anonymous participation, or a room that was never
// durably created -- the write is skipped entirely. That is expected,
// not an error. A storage failure abandons the single attempt.
type ArchiveSink struct {
	sessions repositories.ISessionRepository
	users    repositories.IUserRepository
	messages repositories.IMessageRepository
	log      *slog.Logger
}

func NewArchiveSink(sessions repositories.ISessionRepository, users repositories.IUserRepository,
	messages repositories.IMessageRepository, log *slog.Logger) ArchiveSink {
	return ArchiveSink{sessions: sessions, users: users, messages: messages, log: log}
}

func (s ArchiveSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ChatMessage:
		return s.archive(evt)
	default:
		s.log.Debug(fmt.Sprintf("Not archived event : %v", evt))
		return nil
	}
}

func (s ArchiveSink) archive(evt event.ChatMessage) error {
	if evt.Author == domain.AnonLabel || evt.Content == "" {
		s.log.Debug("skipping chat write", "code", evt.Code, "author", evt.Author)
		return nil
	}

	session, err := s.sessions.GetSessionByCode(evt.Code)
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		s.log.Debug("no durable session for room, skipping chat write", "code", evt.Code)
		return nil
	}
	if err != nil {
		return err
	}

	user, err := s.users.GetUserByEmail(evt.Author)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		s.log.Debug("no durable user for author, skipping chat write", "author", evt.Author)
		return nil
	}
	if err != nil {
		return err
	}

	return s.messages.AppendMessage(repositories.DiskMessage{
		ID:        evt.ID,
		SessionID: session.ID,
		UserID:    user.ID,
		Content:   evt.Content,
		At:        evt.At,
	})
}
