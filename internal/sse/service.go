package sse

import (
	"context"
	"encoding/json"
	"time"

	"chatwave/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const connectionBufferSize = 64

// Service owns the live connection registry and the replay log. Delivery is
// per-connection best effort: a connection that cannot accept a frame is
// torn down without affecting its siblings.
type Service struct {
	registry *Registry
	replay   *ReplayLog
	timeout  time.Duration
	log      *logger.Logger
}

func NewService(replayCapacity int, idleTimeout time.Duration, log *logger.Logger) *Service {
	return &Service{
		registry: NewRegistry(),
		replay:   NewReplayLog(replayCapacity),
		timeout:  idleTimeout,
		log:      log,
	}
}

// Connect opens a stream for receiverID. When lastEventID is set, retained
// events newer than it are queued onto the connection before it is handed
// to the transport. The connection is registered before replay runs, so a
// push racing with Connect can be queued ahead of older replayed events and
// an event delivered during replay can arrive twice; nothing is lost.
func (s *Service) Connect(ctx context.Context, receiverID uuid.UUID, lastEventID *uuid.UUID) *Connection {
	conn := newConnection(receiverID, s.timeout, connectionBufferSize, func(c *Connection) {
		s.registry.Remove(c)
	})
	s.registry.Add(conn)
	s.log.WithContext(ctx).Info("sse connected",
		zap.String("connection_id", conn.ID.String()),
		zap.String("receiver_id", receiverID.String()),
	)
	if lastEventID != nil {
		for _, m := range s.replay.After(*lastEventID, receiverID) {
			if err := conn.push(m.frame()); err != nil {
				conn.Fail(err)
				break
			}
		}
	}
	return conn
}

// Send pushes one event to every open connection of receiverID. The event
// is retained for replay even when no connection is open.
func (s *Service) Send(ctx context.Context, receiverID uuid.UUID, eventName string, data any) {
	m, err := s.record(eventName, data, false, receiverID)
	if err != nil {
		s.log.WithContext(ctx).Error("sse payload encode failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	s.deliver(ctx, m, s.registry.ByReceiver(receiverID))
}

// SendMulti pushes one event, as a single retained entry, to a set of
// recipients.
func (s *Service) SendMulti(ctx context.Context, receiverIDs []uuid.UUID, eventName string, data any) {
	m, err := s.record(eventName, data, false, receiverIDs...)
	if err != nil {
		s.log.WithContext(ctx).Error("sse payload encode failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	s.deliver(ctx, m, s.registry.ByReceivers(receiverIDs))
}

// Broadcast pushes one event to every open connection.
func (s *Service) Broadcast(ctx context.Context, eventName string, data any) {
	m, err := s.record(eventName, data, true)
	if err != nil {
		s.log.WithContext(ctx).Error("sse payload encode failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	s.deliver(ctx, m, s.registry.All())
}

// RunKeepAlive pings every open connection on each interval tick until ctx
// is cancelled. A connection that fails the ping is torn down.
func (s *Service) RunKeepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ping(ctx)
		}
	}
}

func (s *Service) ping(ctx context.Context) {
	frame := Frame{Event: "ping"}
	for _, conn := range s.registry.All() {
		if err := conn.push(frame); err != nil {
			s.log.WithContext(ctx).Warn("sse ping failed, dropping connection",
				zap.String("connection_id", conn.ID.String()),
				zap.Error(err),
			)
			conn.Fail(err)
		}
	}
}

func (s *Service) record(eventName string, data any, broadcast bool, receiverIDs ...uuid.UUID) (Message, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	receivers := make(map[uuid.UUID]struct{}, len(receiverIDs))
	for _, id := range receiverIDs {
		receivers[id] = struct{}{}
	}
	m := Message{
		EventID:    uuid.New(),
		EventName:  eventName,
		Payload:    payload,
		Broadcast:  broadcast,
		Receivers:  receivers,
		EnqueuedAt: time.Now(),
	}
	s.replay.Append(m)
	return m, nil
}

func (s *Service) deliver(ctx context.Context, m Message, conns []*Connection) {
	frame := m.frame()
	for _, conn := range conns {
		if err := conn.push(frame); err != nil {
			s.log.WithContext(ctx).Warn("sse delivery failed, dropping connection",
				zap.String("connection_id", conn.ID.String()),
				zap.String("receiver_id", conn.ReceiverID.String()),
				zap.Error(err),
			)
			conn.Fail(err)
		}
	}
}

// ConnectionCount reports the number of open streams.
func (s *Service) ConnectionCount() int {
	return s.registry.Count()
}
