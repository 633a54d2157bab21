package domain

import (
	"sort"
)

// WalletEntry is the account-level record of a wallet: where its own
// repository lives and how it is presented in the wallet list.
type WalletEntry struct {
	ID        string `json:"id"`
	SyncKey   string `json:"syncKey"`
	DataKey   string `json:"dataKey"`
	Archived  bool   `json:"archived"`
	SortIndex int    `json:"sortIndex"`
}

// Wallets is an immutable snapshot of the wallet list loaded from the account
// repository. Reloading the account produces a new snapshot.
type Wallets struct {
	entries map[string]WalletEntry
}

// NewWallets returns a snapshot holding the given entries. Later entries with
// a duplicate ID replace earlier ones.
func NewWallets(entries []WalletEntry) *Wallets {
	m := make(map[string]WalletEntry, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}
	return &Wallets{m}
}

// List returns the wallet ids ordered by sort index, ties broken by id.
func (w *Wallets) List() []string {
	entries := w.Entries()
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

// Entries returns a copy of all entries, in List order.
func (w *Wallets) Entries() []WalletEntry {
	if w == nil {
		return nil
	}
	entries := make([]WalletEntry, 0, len(w.entries))
	for _, e := range w.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SortIndex != entries[j].SortIndex {
			return entries[i].SortIndex < entries[j].SortIndex
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// Get returns the entry for the given wallet id.
func (w *Wallets) Get(id string) (WalletEntry, bool) {
	if w == nil {
		return WalletEntry{}, false
	}
	e, ok := w.entries[id]
	return e, ok
}

// Archived reports whether the wallet is archived. Unknown wallets are not.
func (w *Wallets) Archived(id string) bool {
	e, ok := w.Get(id)
	return ok && e.Archived
}

func (w *Wallets) Len() int {
	if w == nil {
		return 0
	}
	return len(w.entries)
}

// Equal reports whether two snapshots hold exactly the same entries.
func (w *Wallets) Equal(other *Wallets) bool {
	if w.Len() != other.Len() {
		return false
	}
	if w.Len() == 0 {
		return true
	}
	for id, e := range w.entries {
		o, ok := other.entries[id]
		if !ok || o != e {
			return false
		}
	}
	return true
}
