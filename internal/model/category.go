package model

// Fallback presentation used when a transaction references a category that no longer exists.
const (
	FallbackCategoryName  = "Unknown"
	FallbackCategoryEmoji = "📦"
	FallbackCategoryColor = "#B2BEC3"
)

const (
	// OthersCategoryID is the seeded catch-all category.
	OthersCategoryID int64 = 12
	// FirstUserCategoryID is the first id handed out to user-created categories.
	FirstUserCategoryID int64 = 13
)

// Category represents a spending category.
type Category struct {
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	ColorHex  string `json:"color_hex"`
	ID        int64  `json:"id"`
	IsDefault bool   `json:"is_default"`
}

// DefaultCategories returns the categories seeded on first run, in id order.
// A fresh slice is returned on every call.
func DefaultCategories() []Category {
	return []Category{
		{ID: 1, Name: "Food & Drinks", Emoji: "🍔", ColorHex: "#FF6B6B", IsDefault: true},
		{ID: 2, Name: "Transport", Emoji: "🚗", ColorHex: "#4ECDC4", IsDefault: true},
		{ID: 3, Name: "Shopping", Emoji: "🛍️", ColorHex: "#FFE66D", IsDefault: true},
		{ID: 4, Name: "Entertainment", Emoji: "🎭", ColorHex: "#A29BFE", IsDefault: true},
		{ID: 5, Name: "Health", Emoji: "💊", ColorHex: "#55EFC4", IsDefault: true},
		{ID: 6, Name: "Groceries", Emoji: "🛒", ColorHex: "#FDCB6E", IsDefault: true},
		{ID: 7, Name: "Rent & Utilities", Emoji: "🏠", ColorHex: "#74B9FF", IsDefault: true},
		{ID: 8, Name: "Education", Emoji: "📚", ColorHex: "#E17055", IsDefault: true},
		{ID: 9, Name: "Travel", Emoji: "✈️", ColorHex: "#00B894", IsDefault: true},
		{ID: 10, Name: "Subscriptions", Emoji: "📱", ColorHex: "#FD79A8", IsDefault: true},
		{ID: 11, Name: "Personal Care", Emoji: "💅", ColorHex: "#6C5CE7", IsDefault: true},
		{ID: 12, Name: "Others", Emoji: "📦", ColorHex: "#B2BEC3", IsDefault: true},
	}
}
