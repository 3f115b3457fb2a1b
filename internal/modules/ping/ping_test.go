package ping

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/typograph/core/internal/database"
	"github.com/typograph/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeTransport records every attempted target and fails the ones listed in
// failures.
type fakeTransport struct {
	attempts []string
	failures map[string]error
}

func (f *fakeTransport) Send(_ context.Context, target, _, _ string) error {
	f.attempts = append(f.attempts, target)
	if err, ok := f.failures[target]; ok {
		return err
	}
	return nil
}

func newTestService(t *testing.T, transport Transport) (*Service, *gorm.DB, *models.ArticleModel) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	published := true
	a := &models.ArticleModel{Title: "pinged", Published: &published, GUID: "abc123"}
	require.NoError(t, db.Create(a).Error)

	return NewService(db, transport, nil, zap.NewNop()), db, a
}

func TestDispatchIsolatesFailures(t *testing.T) {
	transport := &fakeTransport{failures: map[string]error{
		"http://b.example/rpc": errors.New("connection refused"),
	}}
	svc, db, a := newTestService(t, transport)

	targets := []string{"http://a.example/rpc", "http://b.example/rpc", "http://c.example/rpc"}
	results, err := svc.Dispatch(context.Background(), a.ID, "http://blog.example/articles/2020/02/15/pinged", targets)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Empty(t, results[0].Error)
	assert.Equal(t, "connection refused", results[1].Error)
	assert.Empty(t, results[2].Error)
	assert.Equal(t, targets, transport.attempts, "one dead endpoint never aborts the batch")

	var pings []models.PingModel
	require.NoError(t, db.Order("url ASC").Find(&pings).Error)
	require.Len(t, pings, 2, "only successful sends are recorded")
	assert.Equal(t, "http://a.example/rpc", pings[0].URL)
	assert.Equal(t, "http://c.example/rpc", pings[1].URL)
}

func TestDispatchRetriesOnlyFailedURLs(t *testing.T) {
	transport := &fakeTransport{failures: map[string]error{
		"http://b.example/rpc": errors.New("timeout"),
	}}
	svc, _, a := newTestService(t, transport)

	targets := []string{"http://a.example/rpc", "http://b.example/rpc", "http://c.example/rpc"}
	_, err := svc.Dispatch(context.Background(), a.ID, "http://blog.example/x", targets)
	require.NoError(t, err)

	transport.attempts = nil
	transport.failures = nil

	results, err := svc.Dispatch(context.Background(), a.ID, "http://blog.example/x", targets)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Skipped)
	assert.False(t, results[1].Skipped)
	assert.Empty(t, results[1].Error)
	assert.True(t, results[2].Skipped)
	assert.Equal(t, []string{"http://b.example/rpc"}, transport.attempts, "already-notified URLs stay off the wire")
}

func TestDispatchSkipsBlankTargets(t *testing.T) {
	transport := &fakeTransport{}
	svc, _, a := newTestService(t, transport)

	results, err := svc.Dispatch(context.Background(), a.ID, "http://blog.example/x", []string{"  ", "", "http://a.example/rpc  "})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "http://a.example/rpc", results[0].URL)
}

func TestDispatchUnknownArticle(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeTransport{})

	_, err := svc.Dispatch(context.Background(), "no-such-id", "http://blog.example/x", []string{"http://a.example/rpc"})
	assert.Error(t, err)
}

func TestDispatchAsyncWithoutQueue(t *testing.T) {
	svc, _, a := newTestService(t, &fakeTransport{})

	_, err := svc.DispatchAsync(context.Background(), a.ID, "http://blog.example/x", nil)
	assert.Error(t, err)
}
