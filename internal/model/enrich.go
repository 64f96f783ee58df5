package model

// CategoryIndex is a point-in-time lookup of categories by id.
type CategoryIndex map[int64]Category

// NewCategoryIndex indexes cats by id.
func NewCategoryIndex(cats []Category) CategoryIndex {
	idx := make(CategoryIndex, len(cats))
	for _, c := range cats {
		idx[c.ID] = c
	}
	return idx
}

// Enrich joins t with its category. A missing category yields the fallback
// name, emoji and color; enrichment never fails.
func Enrich(t Transaction, idx CategoryIndex) TransactionWithCategory {
	name, emoji, color := idx.Display(t.CategoryID)
	return TransactionWithCategory{
		Transaction:   t,
		CategoryName:  name,
		CategoryEmoji: emoji,
		CategoryColor: color,
	}
}

// EnrichAll enriches every transaction, preserving order.
func (idx CategoryIndex) EnrichAll(txns []Transaction) []TransactionWithCategory {
	out := make([]TransactionWithCategory, 0, len(txns))
	for _, t := range txns {
		out = append(out, Enrich(t, idx))
	}
	return out
}

// Display returns the name, emoji and color shown for categoryID.
func (idx CategoryIndex) Display(categoryID int64) (string, string, string) {
	c, ok := idx[categoryID]
	if !ok {
		return FallbackCategoryName, FallbackCategoryEmoji, FallbackCategoryColor
	}
	return c.Name, c.Emoji, c.ColorHex
}
