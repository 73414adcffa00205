package domain

import (
	"strings"
	"time"
)

// Account identifies an owner of binders. Accounts are created externally;
// this core only references them.
type Account struct {
	ID int64
}

// Binder is a named collection owned by exactly one account. Binders are
// created and edited by an external collaborator; this core reads them to
// enforce ownership.
type Binder struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"account_id"`
	Title     string `json:"title"`
	Format    string `json:"format,omitempty"`
}

// BinderCard is the presented shape of one binder entry: the joined catalog
// fields plus the binder-specific quantity, optional finish and timestamp.
type BinderCard struct {
	Card
	Qty     int       `json:"qty"`
	Finish  *string   `json:"finish,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// BinderEntry pairs a presented card with the raw encrypted snapshot stored
// on its row, when the schema carries one. The token never leaves the service
// layer.
type BinderEntry struct {
	BinderCard
	Snapshot string `json:"-"`
}

// CardKey identifies one binder entry for removal: a card id plus an optional
// finish. An empty Finish matches rows whose finish is NULL or empty. The
// struct doubles as the dedup key for bulk removal, so it must stay comparable.
type CardKey struct {
	CardID string
	Finish string
}

// BulkRemoveItem is one requested removal before normalization.
type BulkRemoveItem struct {
	CardID string `json:"cardId"`
	Finish string `json:"finish,omitempty"`
}

// NormalizeBulkRemove trims card ids, drops empty ones, treats empty finish as
// "no finish", and deduplicates (cardId, finish) pairs keeping first-occurrence
// order. The returned slice may be empty; callers decide whether that is an
// error.
func NormalizeBulkRemove(items []BulkRemoveItem) []CardKey {
	normalized := make([]CardKey, 0, len(items))
	seen := make(map[CardKey]struct{}, len(items))

	for _, raw := range items {
		key := CardKey{
			CardID: strings.TrimSpace(raw.CardID),
			Finish: strings.TrimSpace(raw.Finish),
		}
		if key.CardID == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, key)
	}

	return normalized
}
