package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/models"
)

var dbSeq int

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared", dbSeq)
	db, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func customerStore(t *testing.T) *Store[models.Customer] {
	t.Helper()
	return New(setupDB(t), common.FamilyCustomers, models.ValidateCustomer)
}

func customer(id, client string) models.Customer {
	return models.Customer{
		ID:              id,
		CreatedAt:       "01/02/2021",
		CustomerRequest: models.CustomerRequest{Client: client},
	}
}

func TestPut_DirtyRecordAppearsInUnsavedChanges(t *testing.T) {
	s := customerStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, customer("c1", "PT A"), false))

	synced, err := s.GetIsSynced(ctx)
	require.NoError(t, err)
	assert.False(t, synced)

	toDelete, toAdd, err := s.UnsavedChanges(ctx)
	require.NoError(t, err)
	assert.Empty(t, toDelete)
	require.Len(t, toAdd, 1)
	assert.Equal(t, "c1", toAdd[0].ID)
}

func TestPut_SyncedWriteClearsDirtyRecord(t *testing.T) {
	s := customerStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, customer("c1", "PT A"), false))
	require.NoError(t, s.Put(ctx, customer("c1", "PT A"), true))

	_, toAdd, err := s.UnsavedChanges(ctx)
	require.NoError(t, err)
	assert.Empty(t, toAdd)
}

func TestPut_RejectsInvalidRecord(t *testing.T) {
	s := customerStore(t)
	ctx := context.Background()

	err := s.Put(ctx, customer("c1", ""), false)
	require.ErrorIs(t, err, common.ErrorValidation)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDelete_NeverSyncedRecordIsRemovedOutright(t *testing.T) {
	s := customerStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, customer("c1", "PT A"), false))
	require.NoError(t, s.Delete(ctx, "c1", false))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	toDelete, toAdd, err := s.UnsavedChanges(ctx)
	require.NoError(t, err)
	assert.Empty(t, toDelete)
	assert.Empty(t, toAdd)
}

func TestDelete_SyncedRecordIsFlaggedAndRetained(t *testing.T) {
	s := customerStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, customer("c1", "PT A"), true))
	require.NoError(t, s.Delete(ctx, "c1", false))

	// Still retrievable until the remote delete is confirmed.
	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Contains(t, all, "c1")

	toDelete, _, err := s.UnsavedChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, toDelete)

	synced, err := s.GetIsSynced(ctx)
	require.NoError(t, err)
	assert.False(t, synced)
}

func TestDelete_ConfirmedRemoteDeleteRemovesFlaggedRecord(t *testing.T) {
	s := customerStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, customer("c1", "PT A"), true))
	require.NoError(t, s.Delete(ctx, "c1", false))
	require.NoError(t, s.Delete(ctx, "c1", true))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDelete_MissingRecordReturnsNotFound(t *testing.T) {
	s := customerStore(t)
	err := s.Delete(context.Background(), "nope", false)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRefresh_IsIdempotentAndMarksSynced(t *testing.T) {
	s := customerStore(t)
	ctx := context.Background()

	// A stale but clean record is replaced by the pull.
	require.NoError(t, s.Put(ctx, customer("old", "PT Old"), true))

	snapshot := map[string]models.Customer{
		"c1": customer("c1", "PT A"),
		"c2": customer("c2", "PT B"),
	}

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Refresh(ctx, snapshot))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
		assert.Equal(t, "PT A", all["c1"].Client)

		synced, err := s.GetIsSynced(ctx)
		require.NoError(t, err)
		assert.True(t, synced)

		toDelete, toAdd, err := s.UnsavedChanges(ctx)
		require.NoError(t, err)
		assert.Empty(t, toDelete)
		assert.Empty(t, toAdd)
	}
}

func TestRefresh_PreservesDirtyRows(t *testing.T) {
	s := customerStore(t)
	ctx := context.Background()

	// c1 exists only locally, c2 is a pending offline delete of a record
	// the snapshot still carries.
	require.NoError(t, s.Put(ctx, customer("c1", "PT A"), false))
	require.NoError(t, s.Put(ctx, customer("c2", "PT B"), true))
	require.NoError(t, s.Delete(ctx, "c2", false))

	require.NoError(t, s.Refresh(ctx, map[string]models.Customer{
		"c2": customer("c2", "PT B"),
		"c3": customer("c3", "PT C"),
	}))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Contains(t, all, "c1", "unsaved record must survive the pull")
	assert.Contains(t, all, "c3")

	toDelete, toAdd, err := s.UnsavedChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, toDelete, "pending delete must survive the pull")
	require.Len(t, toAdd, 1)
	assert.Equal(t, "c1", toAdd[0].ID)

	// The family stays dirty until reconciliation drains the survivors.
	synced, err := s.GetIsSynced(ctx)
	require.NoError(t, err)
	assert.False(t, synced)
}

func TestSyncStateListener_FiresOnTransitionsOnly(t *testing.T) {
	s := customerStore(t)
	ctx := context.Background()

	var events []bool
	s.OnSyncStateChange(func(v bool) { events = append(events, v) })

	require.NoError(t, s.SetSynced(ctx))               // false -> true
	require.NoError(t, s.Put(ctx, customer("c1", "PT A"), false)) // true -> false
	require.NoError(t, s.Put(ctx, customer("c2", "PT B"), false)) // already false, no event
	require.NoError(t, s.SetSynced(ctx))               // false -> true

	assert.Equal(t, []bool{true, false, true}, events)
}

func TestStoresShareDBWithoutInterference(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	customers := New(db, common.FamilyCustomers, models.ValidateCustomer)
	items := New(db, common.FamilyItems, models.ValidateItem)

	require.NoError(t, customers.Put(ctx, customer("c1", "PT A"), false))
	require.NoError(t, items.Put(ctx, models.Item{
		ID:          "i1",
		ItemRequest: models.ItemRequest{Name: "marble", Rate: 20000},
	}, true))

	itemsSynced, err := items.GetIsSynced(ctx)
	require.NoError(t, err)
	assert.False(t, itemsSynced, "sync state starts dirty until first refresh")

	all, err := items.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, toAdd, err := items.UnsavedChanges(ctx)
	require.NoError(t, err)
	assert.Empty(t, toAdd, "customer dirt must not leak into items")
}
