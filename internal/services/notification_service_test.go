package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"chatwave/internal/async"
	"chatwave/internal/auth"
	"chatwave/internal/domain/chatuser"
	"chatwave/internal/domain/notification"
	"chatwave/internal/events"
	"chatwave/internal/redis"
	"chatwave/internal/repository"
	chatwave_errors "chatwave/pkg/errors"
	"chatwave/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, tx repository.DBTX, n *notification.Notification) error {
	args := m.Called(ctx, tx, n)
	return args.Error(0)
}

func (m *mockNotificationRepo) CreateAll(ctx context.Context, tx repository.DBTX, notifications []notification.Notification) error {
	args := m.Called(ctx, tx, notifications)
	return args.Error(0)
}

func (m *mockNotificationRepo) FindAllByReceiverID(ctx context.Context, receiverID uuid.UUID) ([]notification.Notification, error) {
	args := m.Called(ctx, receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.Notification), args.Error(1)
}

func (m *mockNotificationRepo) DeleteByIDAndReceiverID(ctx context.Context, notificationID, receiverID uuid.UUID) (int64, error) {
	args := m.Called(ctx, notificationID, receiverID)
	return args.Get(0).(int64), args.Error(1)
}

type fakeCache struct {
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, val interface{}) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.data, key)
		c.deleted = append(c.deleted, key)
	}
	return nil
}

func newNotificationService(t *testing.T, repo repository.NotificationRepository, cache ListCache) *NotificationService {
	t.Helper()
	log := logger.New(logger.DevelopmentMode)
	pool := async.NewPool("events", 1, 8, log)
	t.Cleanup(pool.Close)
	return NewNotificationService(nil, repo, events.NewBus(pool, log), cache, log)
}

func principalCtx(userID uuid.UUID) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{
		UserID:   userID,
		Username: "mina",
		Role:     chatuser.RoleUser,
	})
}

func TestFindAllRequiresPrincipal(t *testing.T) {
	s := newNotificationService(t, &mockNotificationRepo{}, newFakeCache())

	_, err := s.FindAllByReceiver(context.Background(), uuid.New())
	assert.ErrorIs(t, err, chatwave_errors.ErrUnauthorized)
}

func TestFindAllRejectsForeignReceiver(t *testing.T) {
	s := newNotificationService(t, &mockNotificationRepo{}, newFakeCache())

	_, err := s.FindAllByReceiver(principalCtx(uuid.New()), uuid.New())
	assert.ErrorIs(t, err, chatwave_errors.ErrForbidden)
}

func TestFindAllReadsThroughAndFillsCache(t *testing.T) {
	receiver := uuid.New()
	stored := []notification.Notification{
		notification.New(receiver, "title", "content", notification.TypeNewMessage, nil),
	}

	repo := &mockNotificationRepo{}
	repo.On("FindAllByReceiverID", mock.Anything, receiver).Return(stored, nil).Once()
	cache := newFakeCache()
	s := newNotificationService(t, repo, cache)

	got, err := s.FindAllByReceiver(principalCtx(receiver), receiver)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stored[0].ID, got[0].ID)

	// Second read is served from cache; the repo expectation is Once.
	got, err = s.FindAllByReceiver(principalCtx(receiver), receiver)
	require.NoError(t, err)
	require.Len(t, got, 1)
	repo.AssertExpectations(t)
}

func TestDeleteRequiresPrincipal(t *testing.T) {
	s := newNotificationService(t, &mockNotificationRepo{}, newFakeCache())
	assert.ErrorIs(t, s.Delete(context.Background(), uuid.New()), chatwave_errors.ErrUnauthorized)
}

func TestDeleteReportsNotFoundForZeroRows(t *testing.T) {
	receiver := uuid.New()
	notificationID := uuid.New()

	repo := &mockNotificationRepo{}
	repo.On("DeleteByIDAndReceiverID", mock.Anything, notificationID, receiver).Return(int64(0), nil)
	s := newNotificationService(t, repo, newFakeCache())

	err := s.Delete(principalCtx(receiver), notificationID)
	assert.ErrorIs(t, err, chatwave_errors.ErrNotFound)
}

func TestDeleteEvictsReceiverCache(t *testing.T) {
	receiver := uuid.New()
	notificationID := uuid.New()

	repo := &mockNotificationRepo{}
	repo.On("DeleteByIDAndReceiverID", mock.Anything, notificationID, receiver).Return(int64(1), nil)
	cache := newFakeCache()
	s := newNotificationService(t, repo, cache)

	require.NoError(t, s.Delete(principalCtx(receiver), notificationID))
	assert.Contains(t, cache.deleted, redis.NotificationsKey(receiver))
}

func TestCreateAllEmptyBatchIsNoop(t *testing.T) {
	repo := &mockNotificationRepo{}
	s := newNotificationService(t, repo, newFakeCache())

	require.NoError(t, s.CreateAll(context.Background(), nil))
	repo.AssertNotCalled(t, "CreateAll", mock.Anything, mock.Anything, mock.Anything)
}

type fakeConnector struct {
	conn *fakeConn
}

func (c *fakeConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c *fakeConnector) Driver() driver.Driver                        { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return &fakeConn{}, nil }

type fakeConn struct {
	commits   int
	rollbacks int
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c *fakeConn) Close() error                        { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) { return &fakeTx{conn: c}, nil }

type fakeTx struct {
	conn *fakeConn
}

func (t *fakeTx) Commit() error   { t.conn.commits++; return nil }
func (t *fakeTx) Rollback() error { t.conn.rollbacks++; return nil }

func newFakeDB(t *testing.T) (*sql.DB, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	db := sql.OpenDB(&fakeConnector{conn: conn})
	t.Cleanup(func() { _ = db.Close() })
	return db, conn
}

func TestCreateAllPersistsBatchAndAnnouncesOnce(t *testing.T) {
	receivers := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	batch := make([]notification.Notification, 0, len(receivers))
	for _, receiver := range receivers {
		batch = append(batch, notification.New(receiver, "title", "content", notification.TypeNewMessage, nil))
	}

	repo := &mockNotificationRepo{}
	repo.On("CreateAll", mock.Anything, mock.Anything, batch).Return(nil).Once()

	log := logger.New(logger.DevelopmentMode)
	pool := async.NewPool("events", 1, 8, log)
	t.Cleanup(pool.Close)
	bus := events.NewBus(pool, log)

	announced := make(chan events.MultipleNotificationCreatedEvent, 4)
	bus.Subscribe(events.EventMultipleNotificationCreated, func(ctx context.Context, e events.Event) {
		announced <- e.(events.MultipleNotificationCreatedEvent)
	})

	db, conn := newFakeDB(t)
	cache := newFakeCache()
	s := NewNotificationService(db, repo, bus, cache, log)

	require.NoError(t, s.CreateAll(context.Background(), batch))

	select {
	case e := <-announced:
		assert.ElementsMatch(t, receivers, e.ReceiverIDs())
	case <-time.After(time.Second):
		t.Fatal("batch was never announced")
	}
	select {
	case <-announced:
		t.Fatal("batch announced more than once")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, 1, conn.commits)
	assert.Zero(t, conn.rollbacks)
	repo.AssertExpectations(t)
	for _, receiver := range receivers {
		assert.Contains(t, cache.deleted, redis.NotificationsKey(receiver))
	}
}

func TestCreateAllRollsBackAndStaysSilentOnError(t *testing.T) {
	batch := []notification.Notification{
		notification.New(uuid.New(), "title", "content", notification.TypeNewMessage, nil),
	}

	repo := &mockNotificationRepo{}
	repo.On("CreateAll", mock.Anything, mock.Anything, batch).Return(errors.New("insert failed"))

	log := logger.New(logger.DevelopmentMode)
	pool := async.NewPool("events", 1, 8, log)
	t.Cleanup(pool.Close)
	bus := events.NewBus(pool, log)

	announced := make(chan struct{}, 1)
	bus.Subscribe(events.EventMultipleNotificationCreated, func(ctx context.Context, e events.Event) {
		announced <- struct{}{}
	})

	db, conn := newFakeDB(t)
	cache := newFakeCache()
	s := NewNotificationService(db, repo, bus, cache, log)

	assert.Error(t, s.CreateAll(context.Background(), batch))
	assert.Equal(t, 1, conn.rollbacks)
	assert.Zero(t, conn.commits)
	assert.Empty(t, cache.deleted)

	select {
	case <-announced:
		t.Fatal("rolled back batch must not be announced")
	case <-time.After(50 * time.Millisecond):
	}
}
