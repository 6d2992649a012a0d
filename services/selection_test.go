package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-system/internal/status"
)

func setupSelectionService() (*SelectionService, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return NewSelectionService(db, 5*time.Minute), mock
}

func TestSelect_HoldsFreeNumbers(t *testing.T) {
	service, mock := setupSelectionService()
	defer mock.ClearExpect()

	mock.ExpectSetNX("selection:5", "session-1", 5*time.Minute).SetVal(true)
	mock.ExpectSetNX("selection:6", "session-1", 5*time.Minute).SetVal(true)

	err := service.Select(context.Background(), "session-1", []int{5, 6})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_ForeignHoldConflicts(t *testing.T) {
	service, mock := setupSelectionService()
	defer mock.ClearExpect()

	mock.ExpectSetNX("selection:5", "session-1", 5*time.Minute).SetVal(false)
	mock.ExpectGet("selection:5").SetVal("session-2")

	err := service.Select(context.Background(), "session-1", []int{5})

	var conflict *status.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []int{5}, conflict.Numbers)
}

func TestSelect_OwnHoldRefreshesTTL(t *testing.T) {
	service, mock := setupSelectionService()
	defer mock.ClearExpect()

	mock.ExpectSetNX("selection:5", "session-1", 5*time.Minute).SetVal(false)
	mock.ExpectGet("selection:5").SetVal("session-1")
	mock.ExpectExpire("selection:5", 5*time.Minute).SetVal(true)

	err := service.Select(context.Background(), "session-1", []int{5})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_OnlyDropsOwnHolds(t *testing.T) {
	service, mock := setupSelectionService()
	defer mock.ClearExpect()

	mock.ExpectGet("selection:5").SetVal("session-1")
	mock.ExpectDel("selection:5").SetVal(1)
	mock.ExpectGet("selection:6").SetVal("session-2")
	// No delete expected for the foreign hold.

	err := service.Release(context.Background(), "session-1", []int{5, 6})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_MissingHoldIgnored(t *testing.T) {
	service, mock := setupSelectionService()
	defer mock.ClearExpect()

	mock.ExpectGet("selection:5").RedisNil()

	err := service.Release(context.Background(), "session-1", []int{5})

	assert.NoError(t, err)
}

func TestSelections_ListsHolds(t *testing.T) {
	service, mock := setupSelectionService()
	defer mock.ClearExpect()

	mock.ExpectKeys("selection:*").SetVal([]string{"selection:3", "selection:17"})
	mock.ExpectGet("selection:3").SetVal("session-1")
	mock.ExpectGet("selection:17").SetVal("session-2")

	selections, err := service.Selections(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[int]string{3: "session-1", 17: "session-2"}, selections)
}
