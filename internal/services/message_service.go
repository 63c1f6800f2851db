package services

import (
	"context"
	"database/sql"
	"time"

	"chatwave/internal/auth"
	"chatwave/internal/domain/channel"
	"chatwave/internal/events"
	"chatwave/internal/repository"
	chatwave_errors "chatwave/pkg/errors"
	"chatwave/pkg/logger"

	"github.com/google/uuid"
)

// MessageService drives the message mutation that feeds the notification
// pipeline. The committed message is announced after commit with its channel
// and author denormalized, so relay consumers need no further lookups.
type MessageService struct {
	db       *sql.DB
	messages repository.MessageRepository
	channels repository.ChannelRepository
	users    repository.UserRepository
	bus      *events.Bus
	log      *logger.Logger
}

func NewMessageService(db *sql.DB, messages repository.MessageRepository, channels repository.ChannelRepository, users repository.UserRepository, bus *events.Bus, log *logger.Logger) *MessageService {
	return &MessageService{db: db, messages: messages, channels: channels, users: users, bus: bus, log: log}
}

func (s *MessageService) Send(ctx context.Context, channelID uuid.UUID, content string) (channel.Message, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return channel.Message{}, chatwave_errors.ErrUnauthorized
	}
	if content == "" {
		return channel.Message{}, chatwave_errors.ErrInvalidInput
	}

	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return channel.Message{}, err
	}
	author, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return channel.Message{}, err
	}

	m := channel.Message{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		ChannelID: channelID,
		AuthorID:  author.ID,
		Content:   content,
	}

	uowCtx, uow := s.bus.Begin(ctx)
	err = repository.WithTx(uowCtx, s.db, func(tx repository.DBTX) error {
		if err := s.messages.Create(uowCtx, tx, &m); err != nil {
			return err
		}
		s.bus.PublishAfterCommit(uowCtx, events.NewNewMessageEvent(events.MessageView{
			ID:          m.ID,
			CreatedAt:   m.CreatedAt,
			ChannelID:   ch.ID,
			ChannelName: ch.Name,
			ChannelType: ch.Type,
			AuthorID:    author.ID,
			AuthorName:  author.Username,
			Content:     m.Content,
		}))
		return nil
	})
	if err != nil {
		uow.Rollback()
		return channel.Message{}, err
	}
	uow.Commit()

	return m, nil
}
