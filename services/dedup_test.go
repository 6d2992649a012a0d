package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-system/models"
)

func TestSaleIdentityKey_NormalizesBuyerAndNumbers(t *testing.T) {
	guard := NewDuplicationGuard()

	a := models.Sale{
		Numbers: []int{42, 7, 13},
		Buyer:   models.Buyer{Name: "  Maria ", LastName: "GARCIA", Phone: "+1 (555) 123-4567"},
		Total:   decimal.NewFromInt(30),
	}
	b := models.Sale{
		Numbers: []int{7, 13, 42},
		Buyer:   models.Buyer{Name: "maria", LastName: "garcia", Phone: "15551234567"},
		Total:   decimal.NewFromInt(30),
	}

	assert.Equal(t, guard.SaleIdentityKey(a), guard.SaleIdentityKey(b))
}

func TestSaleIdentityKey_DifferentTransactionsDiffer(t *testing.T) {
	guard := NewDuplicationGuard()

	base := models.Sale{
		Numbers: []int{1, 2},
		Buyer:   models.Buyer{Name: "Ana", Phone: "555"},
		Total:   decimal.NewFromInt(20),
	}

	otherNumbers := base
	otherNumbers.Numbers = []int{1, 3}
	otherBuyer := base
	otherBuyer.Buyer.Phone = "556"
	otherTotal := base
	otherTotal.Total = decimal.NewFromInt(25)

	assert.NotEqual(t, guard.SaleIdentityKey(base), guard.SaleIdentityKey(otherNumbers))
	assert.NotEqual(t, guard.SaleIdentityKey(base), guard.SaleIdentityKey(otherBuyer))
	assert.NotEqual(t, guard.SaleIdentityKey(base), guard.SaleIdentityKey(otherTotal))
}

func TestMergeSales_RemoteEchoReplacesLocal(t *testing.T) {
	guard := NewDuplicationGuard()

	local := []models.Sale{
		{ID: "srv_1", LocalID: "local_1", Numbers: []int{5}, Buyer: models.Buyer{Name: "Ana", Phone: "555"}, Total: decimal.NewFromInt(10), Pending: true},
	}
	// The remote snapshot caught up and now carries the echo of local_1.
	remote := []models.Sale{
		{ID: "srv_1", LocalID: "local_1", Numbers: []int{5}, Buyer: models.Buyer{Name: "Ana", Phone: "555"}, Total: decimal.NewFromInt(10)},
	}

	merged := guard.MergeSales(local, remote)

	require.Len(t, merged, 1)
	assert.Equal(t, "srv_1", merged[0].ID)
	assert.False(t, merged[0].Pending)
}

func TestMergeSales_MatchesByLocalID(t *testing.T) {
	guard := NewDuplicationGuard()

	// Remote row got a fresh server id but carries our local id.
	local := []models.Sale{
		{ID: "", LocalID: "local_9", Numbers: []int{3}, Buyer: models.Buyer{Name: "Ana", Phone: "555"}, Total: decimal.NewFromInt(10)},
	}
	remote := []models.Sale{
		{ID: "srv_9", LocalID: "local_9", Numbers: []int{3}, Buyer: models.Buyer{Name: "Ana Maria", Phone: "555-0"}, Total: decimal.NewFromInt(10)},
	}

	merged := guard.MergeSales(local, remote)

	require.Len(t, merged, 1)
	assert.Equal(t, "srv_9", merged[0].ID)
}

func TestMergeSales_MatchesByIdentityKey(t *testing.T) {
	guard := NewDuplicationGuard()

	// No shared id at all: a different terminal pushed the same real-world
	// sale. The identity key is the only link.
	local := []models.Sale{
		{LocalID: "local_2", Numbers: []int{8, 9}, Buyer: models.Buyer{Name: "Luis", Phone: "777"}, Total: decimal.NewFromInt(20)},
	}
	remote := []models.Sale{
		{ID: "srv_2", Numbers: []int{9, 8}, Buyer: models.Buyer{Name: "LUIS", Phone: "(777)"}, Total: decimal.NewFromInt(20)},
	}

	merged := guard.MergeSales(local, remote)

	require.Len(t, merged, 1)
	assert.Equal(t, "srv_2", merged[0].ID)
}

func TestMergeSales_UnmatchedLocalSurvivesAsPending(t *testing.T) {
	guard := NewDuplicationGuard()

	local := []models.Sale{
		{LocalID: "local_3", Numbers: []int{11}, Buyer: models.Buyer{Name: "Eva", Phone: "888"}, Total: decimal.NewFromInt(10)},
	}
	remote := []models.Sale{
		{ID: "srv_4", Numbers: []int{12}, Buyer: models.Buyer{Name: "Otro", Phone: "999"}, Total: decimal.NewFromInt(10)},
	}

	merged := guard.MergeSales(local, remote)

	require.Len(t, merged, 2)
	assert.Equal(t, "srv_4", merged[0].ID)
	assert.Equal(t, "local_3", merged[1].LocalID)
	assert.True(t, merged[1].Pending)
}

func TestMergeSales_Idempotent(t *testing.T) {
	guard := NewDuplicationGuard()

	local := []models.Sale{
		{LocalID: "local_5", Numbers: []int{1}, Buyer: models.Buyer{Name: "Ana", Phone: "555"}, Total: decimal.NewFromInt(10)},
	}
	remote := []models.Sale{
		{ID: "srv_5", Numbers: []int{2}, Buyer: models.Buyer{Name: "Eva", Phone: "666"}, Total: decimal.NewFromInt(10)},
	}

	once := guard.MergeSales(local, remote)
	// Feeding the survivors back in with the same snapshot must not grow
	// the set.
	var pending []models.Sale
	for _, sale := range once {
		if sale.Pending {
			pending = append(pending, sale)
		}
	}
	twice := guard.MergeSales(pending, remote)

	assert.Len(t, twice, len(once))
}

func TestMergeReservations_RemoteWins(t *testing.T) {
	guard := NewDuplicationGuard()

	local := []models.Reservation{
		{LocalID: "local_r1", Numbers: []int{4}, Buyer: models.Buyer{Name: "Ana", Phone: "555"}, Total: decimal.NewFromInt(10), Status: models.ReservationStatusActive},
		{LocalID: "local_r2", Numbers: []int{6}, Buyer: models.Buyer{Name: "Eva", Phone: "666"}, Total: decimal.NewFromInt(10), Status: models.ReservationStatusActive},
	}
	remote := []models.Reservation{
		{ID: "srv_r1", LocalID: "local_r1", Numbers: []int{4}, Buyer: models.Buyer{Name: "Ana", Phone: "555"}, Total: decimal.NewFromInt(10), Status: models.ReservationStatusActive},
	}

	merged := guard.MergeReservations(local, remote)

	require.Len(t, merged, 2)
	assert.Equal(t, "srv_r1", merged[0].ID)
	assert.False(t, merged[0].Pending)
	assert.Equal(t, "local_r2", merged[1].LocalID)
	assert.True(t, merged[1].Pending)
}

func TestDuplicateSaleGroups(t *testing.T) {
	guard := NewDuplicationGuard()

	sales := []models.Sale{
		{ID: "s1", Numbers: []int{1}, Buyer: models.Buyer{Name: "Ana", Phone: "555"}, Total: decimal.NewFromInt(10)},
		{ID: "s2", Numbers: []int{1}, Buyer: models.Buyer{Name: "ana", Phone: "(555)"}, Total: decimal.NewFromInt(10)},
		{ID: "s3", Numbers: []int{2}, Buyer: models.Buyer{Name: "Eva", Phone: "666"}, Total: decimal.NewFromInt(10)},
	}

	groups := guard.DuplicateSaleGroups(sales)

	require.Len(t, groups, 1)
	for _, group := range groups {
		assert.Len(t, group, 2)
	}
}
