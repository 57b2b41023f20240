package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/brandlink/engine/internal/models"
	appErr "github.com/brandlink/engine/pkg/errors"
	"github.com/brandlink/engine/pkg/logger"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Load(ctx context.Context) (*models.Document, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*models.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) Save(ctx context.Context, doc *models.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *mockBackend) Close() error { return m.Called().Error(0) }

func (m *mockBackend) Name() string { return "mock" }

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })
	return logs
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestOpenMissingFileCreatesEmptyDocument(t *testing.T) {
	logs := observeLogs(t)
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	e, err := Open(context.Background(), NewFileBackend(path))
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, key := range []string{"users", "campaigns", "campaign_platforms", "collaborators",
		"conversations", "messages", "attachments", "ratings", "audit_log"} {
		assert.Contains(t, string(raw), `"`+key+`": []`)
	}
	assert.Equal(t, 1, logs.FilterMessage("no stored document, initializing an empty one").Len())

	require.NoError(t, e.View(context.Background(), func(doc *models.Document) error {
		assert.Equal(t, models.SchemaVersion, doc.SchemaVersion)
		assert.Empty(t, doc.Users)
		return nil
	}))
}

func TestOpenCorruptFileQuarantinesAndLogs(t *testing.T) {
	logs := observeLogs(t)
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"users": [`), 0o644))

	e, err := Open(context.Background(), NewFileBackend(path))
	require.NoError(t, err)

	moved, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, moved, 1)
	kept, err := os.ReadFile(moved[0])
	require.NoError(t, err)
	assert.Equal(t, `{"users": [`, string(kept))

	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.NotEmpty(t, errs)
	assert.Equal(t, "stored document is corrupt, starting from an empty document", errs[0].Message)

	require.NoError(t, e.View(context.Background(), func(doc *models.Document) error {
		assert.Empty(t, doc.Users)
		return nil
	}))
	_, err = NewFileBackend(path).Load(context.Background())
	require.NoError(t, err)
}

func TestOpenPropagatesUnexpectedLoadError(t *testing.T) {
	b := &mockBackend{}
	b.On("Load", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := Open(context.Background(), b)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodePersistence))
	b.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestMutatePersistsAfterEveryChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	e, err := Open(context.Background(), NewFileBackend(path), WithClock(fixedClock()))
	require.NoError(t, err)

	err = e.Mutate(context.Background(), func(doc *models.Document) error {
		doc.Campaigns = append(doc.Campaigns, models.Campaign{
			ID:              "c1",
			OwnerUserID:     "u1",
			BrandName:       "Acme",
			RevenueAmount:   decimal.RequireFromString("1000.50"),
			RevenueCurrency: "EUR",
			Status:          models.CampaignActive,
			Lifecycle:       models.NewLifecycle(e.Now()),
		})
		return nil
	})
	require.NoError(t, err)

	doc, err := NewFileBackend(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Campaigns, 1)
	assert.True(t, decimal.RequireFromString("1000.5").Equal(doc.Campaigns[0].RevenueAmount))
	assert.Equal(t, e.Now(), doc.Campaigns[0].CreatedAt)
}

func TestMutateErrorSkipsPersist(t *testing.T) {
	b := &mockBackend{}
	b.On("Load", mock.Anything).Return(models.NewDocument(), nil)

	e, err := Open(context.Background(), b)
	require.NoError(t, err)

	err = e.Mutate(context.Background(), func(doc *models.Document) error {
		return appErr.Invalid("name is required")
	})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	b.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPersistFailureKeepsInMemoryMutation(t *testing.T) {
	b := &mockBackend{}
	b.On("Load", mock.Anything).Return(models.NewDocument(), nil)
	b.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	e, err := Open(context.Background(), b)
	require.NoError(t, err)

	err = e.Mutate(context.Background(), func(doc *models.Document) error {
		doc.Users = append(doc.Users, models.User{ID: "u1", Name: "Lina"})
		return nil
	})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodePersistence))

	// No rollback: later reads observe the unpersisted change.
	require.NoError(t, e.View(context.Background(), func(doc *models.Document) error {
		require.Len(t, doc.Users, 1)
		assert.Equal(t, "Lina", doc.Users[0].Name)
		return nil
	}))

	b.On("Save", mock.Anything, mock.MatchedBy(func(doc *models.Document) bool {
		return len(doc.Users) == 1
	})).Return(nil).Once()
	require.NoError(t, e.Flush(context.Background()))
	b.AssertExpectations(t)
}

func TestCloseFlushesAndRejectsLaterCalls(t *testing.T) {
	b := &mockBackend{}
	b.On("Load", mock.Anything).Return(models.NewDocument(), nil)
	b.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	b.On("Close").Return(nil).Once()

	e, err := Open(context.Background(), b)
	require.NoError(t, err)
	require.NoError(t, e.Close(context.Background()))
	require.NoError(t, e.Close(context.Background()))

	err = e.View(context.Background(), func(*models.Document) error { return nil })
	assert.True(t, appErr.IsCode(err, appErr.CodeInternal))
	b.AssertExpectations(t)
}

func TestAbandonSkipsFlush(t *testing.T) {
	b := &mockBackend{}
	b.On("Load", mock.Anything).Return(models.NewDocument(), nil)
	b.On("Close").Return(nil).Once()

	e, err := Open(context.Background(), b)
	require.NoError(t, err)
	require.NoError(t, e.Abandon())
	require.NoError(t, e.Close(context.Background()))

	err = e.Mutate(context.Background(), func(doc *models.Document) error {
		doc.Users = append(doc.Users, models.User{ID: "late"})
		return nil
	})
	assert.True(t, appErr.IsCode(err, appErr.CodeInternal))
	b.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	b.AssertExpectations(t)
}
