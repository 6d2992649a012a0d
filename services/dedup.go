package services

import (
	"fmt"
	"sort"
	"strings"

	"raffle-system/models"

	"github.com/shopspring/decimal"
)

// DuplicationGuard is the single authority for recognizing "the same
// real-world transaction" across the local working set and the remote
// snapshot. The double-insert failure mode it kills: an optimistic local
// push and its remote echo both landing in the working set as two rows.
type DuplicationGuard struct{}

func NewDuplicationGuard() *DuplicationGuard {
	return &DuplicationGuard{}
}

// identityKey combines normalized buyer name, phone digits, the sorted
// number list and the total amount. Two transactions with equal keys are
// the same event no matter which side generated the row.
func identityKey(buyer models.Buyer, numbers []int, total decimal.Decimal) string {
	sorted := make([]int, len(numbers))
	copy(sorted, numbers)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, n := range sorted {
		parts[i] = fmt.Sprintf("%d", n)
	}

	return strings.Join([]string{
		normalizeName(buyer.Name + " " + buyer.LastName),
		normalizePhone(buyer.Phone),
		strings.Join(parts, ","),
		total.String(),
	}, "|")
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func normalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

func (g *DuplicationGuard) SaleIdentityKey(sale models.Sale) string {
	return identityKey(sale.Buyer, sale.Numbers, sale.Total)
}

func (g *DuplicationGuard) ReservationIdentityKey(reservation models.Reservation) string {
	return identityKey(reservation.Buyer, reservation.Numbers, reservation.Total)
}

// MergeSales merges local optimistic sales with a remote snapshot. A local
// entry matching a remote one — by id, by recorded local id, or by identity
// key — is dropped: the remote row is authoritative for id and timestamp.
// Locals with no remote match survive as pending confirmation. The result
// is a complete replacement for the working set, so repeated merges with an
// unchanged snapshot never grow it.
func (g *DuplicationGuard) MergeSales(local, remote []models.Sale) []models.Sale {
	remoteIDs := make(map[string]bool, len(remote))
	remoteLocalIDs := make(map[string]bool, len(remote))
	remoteKeys := make(map[string]bool, len(remote))
	for _, sale := range remote {
		remoteIDs[sale.ID] = true
		if sale.LocalID != "" {
			remoteLocalIDs[sale.LocalID] = true
		}
		remoteKeys[g.SaleIdentityKey(sale)] = true
	}

	merged := make([]models.Sale, len(remote))
	copy(merged, remote)

	for _, sale := range local {
		if remoteIDs[sale.ID] {
			continue
		}
		if sale.LocalID != "" && remoteLocalIDs[sale.LocalID] {
			continue
		}
		if remoteKeys[g.SaleIdentityKey(sale)] {
			continue
		}
		sale.Pending = true
		merged = append(merged, sale)
	}
	return merged
}

// MergeReservations is the reservation counterpart of MergeSales.
func (g *DuplicationGuard) MergeReservations(local, remote []models.Reservation) []models.Reservation {
	remoteIDs := make(map[string]bool, len(remote))
	remoteLocalIDs := make(map[string]bool, len(remote))
	remoteKeys := make(map[string]bool, len(remote))
	for _, reservation := range remote {
		remoteIDs[reservation.ID] = true
		if reservation.LocalID != "" {
			remoteLocalIDs[reservation.LocalID] = true
		}
		remoteKeys[g.ReservationIdentityKey(reservation)] = true
	}

	merged := make([]models.Reservation, len(remote))
	copy(merged, remote)

	for _, reservation := range local {
		if remoteIDs[reservation.ID] {
			continue
		}
		if reservation.LocalID != "" && remoteLocalIDs[reservation.LocalID] {
			continue
		}
		if remoteKeys[g.ReservationIdentityKey(reservation)] {
			continue
		}
		reservation.Pending = true
		merged = append(merged, reservation)
	}
	return merged
}

// DuplicateSaleGroups finds identity-key collisions inside one collection.
// This is the admin's manual-resolution report for the accepted race where
// two sessions validated the same number before either write landed.
func (g *DuplicationGuard) DuplicateSaleGroups(sales []models.Sale) map[string][]models.Sale {
	byKey := make(map[string][]models.Sale)
	for _, sale := range sales {
		key := g.SaleIdentityKey(sale)
		byKey[key] = append(byKey[key], sale)
	}
	for key, group := range byKey {
		if len(group) < 2 {
			delete(byKey, key)
		}
	}
	return byKey
}
