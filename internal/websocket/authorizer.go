package websocket

import (
	"context"
	"regexp"

	"chatwave/internal/domain/channel"
	"chatwave/internal/repository"

	"github.com/google/uuid"
)

var messageStreamPattern = regexp.MustCompile(`^channels\.([0-9a-fA-F-]{36})\.messages$`)

// StreamAuthorizer gates stream subscriptions. Public channel streams are
// open to any authenticated user; private channel streams require
// membership.
type StreamAuthorizer struct {
	channels     repository.ChannelRepository
	readStatuses repository.ReadStatusRepository
}

func NewStreamAuthorizer(channels repository.ChannelRepository, readStatuses repository.ReadStatusRepository) *StreamAuthorizer {
	return &StreamAuthorizer{channels: channels, readStatuses: readStatuses}
}

func (a *StreamAuthorizer) CanSubscribe(ctx context.Context, userID uuid.UUID, stream string) (bool, error) {
	match := messageStreamPattern.FindStringSubmatch(stream)
	if match == nil {
		return false, nil
	}
	channelID, err := uuid.Parse(match[1])
	if err != nil {
		return false, nil
	}

	ch, err := a.channels.GetByID(ctx, channelID)
	if err != nil {
		return false, nil
	}
	if ch.Type == channel.TypePublic {
		return true, nil
	}
	return a.readStatuses.IsMember(ctx, userID, channelID)
}
