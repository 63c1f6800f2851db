package services

import (
	"context"
	"database/sql"
	"time"

	"chatwave/internal/domain/channel"
	"chatwave/internal/events"
	"chatwave/internal/repository"
	chatwave_errors "chatwave/pkg/errors"
	"chatwave/pkg/logger"

	"github.com/google/uuid"
)

// ChannelService drives the channel mutations that feed the refresh push
// events. Private channel creation carries its participant set; public
// mutations are announced by channel id only, recipients re-fetch.
type ChannelService struct {
	db       *sql.DB
	channels repository.ChannelRepository
	bus      *events.Bus
	log      *logger.Logger
}

func NewChannelService(db *sql.DB, channels repository.ChannelRepository, bus *events.Bus, log *logger.Logger) *ChannelService {
	return &ChannelService{db: db, channels: channels, bus: bus, log: log}
}

func (s *ChannelService) CreatePrivate(ctx context.Context, participantIDs []uuid.UUID) (channel.Channel, error) {
	if len(participantIDs) == 0 {
		return channel.Channel{}, chatwave_errors.ErrInvalidInput
	}

	ch := channel.Channel{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Type:      channel.TypePrivate,
	}

	uowCtx, uow := s.bus.Begin(ctx)
	err := repository.WithTx(uowCtx, s.db, func(tx repository.DBTX) error {
		if err := s.channels.Create(uowCtx, tx, &ch); err != nil {
			return err
		}
		s.bus.PublishAfterCommit(uowCtx, events.NewPrivateChannelCreatedEvent(ch, participantIDs))
		return nil
	})
	if err != nil {
		uow.Rollback()
		return channel.Channel{}, err
	}
	uow.Commit()

	return ch, nil
}

func (s *ChannelService) CreatePublic(ctx context.Context, name string) (channel.Channel, error) {
	if name == "" {
		return channel.Channel{}, chatwave_errors.ErrInvalidInput
	}

	ch := channel.Channel{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Name:      name,
		Type:      channel.TypePublic,
	}

	uowCtx, uow := s.bus.Begin(ctx)
	err := repository.WithTx(uowCtx, s.db, func(tx repository.DBTX) error {
		if err := s.channels.Create(uowCtx, tx, &ch); err != nil {
			return err
		}
		s.bus.PublishAfterCommit(uowCtx, events.NewPublicChannelMutationEvent(ch.ID))
		return nil
	})
	if err != nil {
		uow.Rollback()
		return channel.Channel{}, err
	}
	uow.Commit()

	return ch, nil
}
