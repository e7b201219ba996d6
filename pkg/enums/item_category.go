package enums

import "fmt"

// ItemCategory buckets line items for display and reporting.
type ItemCategory string

const (
	ItemCategoryDrink ItemCategory = "drink"
	ItemCategoryFood  ItemCategory = "food"
	ItemCategoryOther ItemCategory = "other"
)

var validItemCategories = []ItemCategory{
	ItemCategoryDrink,
	ItemCategoryFood,
	ItemCategoryOther,
}

// String implements fmt.Stringer.
func (c ItemCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ItemCategory.
func (c ItemCategory) IsValid() bool {
	for _, candidate := range validItemCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseItemCategory converts raw input into an ItemCategory, defaulting empty
// input to the other bucket.
func ParseItemCategory(value string) (ItemCategory, error) {
	if value == "" {
		return ItemCategoryOther, nil
	}
	for _, candidate := range validItemCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item category %q", value)
}
