// Package reconcile merges a guest's locally stored lines into the server
// collection after sign-in. MergeLines computes the delta; Migrator executes
// it through the resource clients, dropping each guest line once the server
// has absorbed it.
package reconcile

import "storefront-client/internal/model"

// Mode selects how a pair present on both sides is merged.
type Mode int

const (
	// Sum adds the guest quantity to the server quantity (cart).
	Sum Mode = iota
	// Union keeps the server line untouched (wishlist).
	Union
)

// LineDiff is the set of server calls needed to absorb the guest lines.
// Adds are applied before updates.
type LineDiff struct {
	ToAdd    []ItemToAdd
	ToUpdate []ItemToUpdate
}

// ItemToAdd is a (product, variant) pair missing from the server.
type ItemToAdd struct {
	ProductID model.ID
	VariantID model.ID
	Quantity  int
}

// ItemToUpdate is a server line whose quantity grows.
type ItemToUpdate struct {
	ProductID   model.ID
	VariantID   model.ID
	BackendID   model.ID // id the server expects on PUT .../item/{id}
	OldQuantity int
	NewQuantity int
}

// IsEmpty returns true if no server call is needed.
func (d *LineDiff) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToUpdate) == 0
}

// MergeLines diffs guest lines against the server's. Lines are matched on
// (ProductID, VariantID). Guest duplicates of one pair are folded together
// first. The result follows guest order.
func MergeLines(server, guest []model.Line, mode Mode) *LineDiff {
	diff := &LineDiff{}

	serverByKey := make(map[string]model.Line, len(server))
	for _, l := range server {
		serverByKey[itemKey(l.ProductID, l.VariantID)] = l
	}

	var order []string
	wanted := make(map[string]model.Line)
	for _, l := range guest {
		if l.Quantity < 1 {
			continue
		}
		key := itemKey(l.ProductID, l.VariantID)
		if prev, ok := wanted[key]; ok {
			prev.Quantity += l.Quantity
			wanted[key] = prev
			continue
		}
		order = append(order, key)
		wanted[key] = l
	}

	for _, key := range order {
		g := wanted[key]
		current, exists := serverByKey[key]
		if !exists {
			diff.ToAdd = append(diff.ToAdd, ItemToAdd{
				ProductID: g.ProductID,
				VariantID: g.VariantID,
				Quantity:  g.Quantity,
			})
			continue
		}
		if mode == Union {
			continue
		}
		diff.ToUpdate = append(diff.ToUpdate, ItemToUpdate{
			ProductID:   g.ProductID,
			VariantID:   g.VariantID,
			BackendID:   current.DisplayID(),
			OldQuantity: current.Quantity,
			NewQuantity: current.Quantity + g.Quantity,
		})
	}

	return diff
}

// itemKey creates a composite key for matching lines.
func itemKey(productID, variantID model.ID) string {
	if variantID == "" {
		return string(productID)
	}
	return string(productID) + ":" + string(variantID)
}
