package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"school-bot/internal/access"
	"school-bot/internal/model"
)

func newOverrideEnv(t *testing.T) (*memStore, *OverrideService) {
	t.Helper()
	store := newMemStore()
	return store, NewOverrideService(store, lessonStoreAdapter{store}, zap.NewNop())
}

func TestSetOverride_UpsertReplacesPriorState(t *testing.T) {
	store, svc := newOverrideEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, testUserID, lessons[0].ID, access.ForceLocked))
	locked, unlocked, err := store.GetSetsByUser(ctx, testUserID)
	require.NoError(t, err)
	assert.Contains(t, locked, lessons[0].ID)

	// Повторный Set заменяет состояние, строка остаётся одна
	require.NoError(t, svc.Set(ctx, testUserID, lessons[0].ID, access.ForceUnlocked))
	locked, unlocked, err = store.GetSetsByUser(ctx, testUserID)
	require.NoError(t, err)
	assert.NotContains(t, locked, lessons[0].ID)
	assert.Contains(t, unlocked, lessons[0].ID)
}

func TestSetOverride_UnknownLesson(t *testing.T) {
	_, svc := newOverrideEnv(t)

	err := svc.Set(context.Background(), testUserID, uuid.New(), access.ForceLocked)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetOverride_InvalidMode(t *testing.T) {
	store, svc := newOverrideEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true)

	err := svc.Set(context.Background(), testUserID, lessons[0].ID, access.OverrideNone)
	require.Error(t, err)
}

func TestClearOverride(t *testing.T) {
	store, svc := newOverrideEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, testUserID, lessons[0].ID, access.ForceUnlocked))
	require.NoError(t, svc.Clear(ctx, testUserID, lessons[0].ID))

	locked, unlocked, err := store.GetSetsByUser(ctx, testUserID)
	require.NoError(t, err)
	assert.Empty(t, locked)
	assert.Empty(t, unlocked)

	// Исключения больше нет
	require.ErrorIs(t, svc.Clear(ctx, testUserID, lessons[0].ID), ErrNotFound)
}

func TestBulkSetOverride(t *testing.T) {
	store, svc := newOverrideEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true, true, true)
	ctx := context.Background()

	ids := []uuid.UUID{lessons[0].ID, lessons[1].ID, lessons[2].ID}
	failures, err := svc.BulkSet(ctx, testUserID, ids, access.ForceUnlocked)
	require.NoError(t, err)
	assert.Empty(t, failures)

	_, unlocked, err := store.GetSetsByUser(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(t, unlocked, 3)
}

func TestBulkSetOverride_PartialFailureReported(t *testing.T) {
	store, svc := newOverrideEnv(t)
	_, lessons := store.addModule(1, model.TariffStandard, true, true, true)
	ctx := context.Background()

	storeErr := errors.New("connection reset")
	store.failedOv[lessons[1].ID] = storeErr

	ids := []uuid.UUID{lessons[0].ID, lessons[1].ID, lessons[2].ID}
	failures, err := svc.BulkSet(ctx, testUserID, ids, access.ForceLocked)
	require.NoError(t, err)

	// Частичное применение допустимо, но должно быть отражено в отчёте
	require.Len(t, failures, 1)
	assert.Equal(t, lessons[1].ID, failures[0].LessonID)
	assert.ErrorIs(t, failures[0].Err, storeErr)

	locked, _, err := store.GetSetsByUser(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(t, locked, 2)
}

func TestSetModuleOverride(t *testing.T) {
	store, svc := newOverrideEnv(t)
	mod, _ := store.addModule(1, model.TariffStandard, true, true, true)
	ctx := context.Background()

	applied, failures, err := svc.SetModule(ctx, testUserID, mod.ID, access.ForceLocked)
	require.NoError(t, err)
	assert.Equal(t, 3, applied)
	assert.Empty(t, failures)

	locked, _, err := store.GetSetsByUser(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(t, locked, 3)
}

func TestSetModuleOverride_UnknownModule(t *testing.T) {
	_, svc := newOverrideEnv(t)

	_, _, err := svc.SetModule(context.Background(), testUserID, uuid.New(), access.ForceUnlocked)
	require.ErrorIs(t, err, ErrNotFound)
}
