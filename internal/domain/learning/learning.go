// Package learning holds the compiled-in flashcard categories and the
// phrases spoken for their items.
package learning

import (
	"fmt"
	"strings"
)

type CategoryID string

const (
	Animals    CategoryID = "animals"
	Vehicles   CategoryID = "vehicles"
	Fruits     CategoryID = "fruits"
	Vegetables CategoryID = "vegetables"
	Alphabets  CategoryID = "alphabets"
	Numbers    CategoryID = "numbers"
	Colors     CategoryID = "colors"
	Shapes     CategoryID = "shapes"
	BodyParts  CategoryID = "body-parts"
	Toys       CategoryID = "toys"
)

func (c CategoryID) String() string {
	return string(c)
}

// AgeGroup narrows a category to items suited to an age range. On an item,
// AgeAll means the item suits every age.
type AgeGroup int

const (
	AgeAll AgeGroup = iota
	Age0To2
	Age2To4
)

func (a AgeGroup) String() string {
	switch a {
	case Age0To2:
		return "0-2"
	case Age2To4:
		return "2-4"
	default:
		return "all"
	}
}

func ParseAgeGroup(s string) (AgeGroup, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AgeAll, nil
	case "0-2":
		return Age0To2, nil
	case "2-4":
		return Age2To4, nil
	default:
		return AgeAll, fmt.Errorf("unknown age group %q (want all, 0-2 or 2-4)", s)
	}
}

// Item is one flashcard. Name identifies it within its category.
type Item struct {
	Name     string
	Emoji    string
	Image    string
	AgeGroup AgeGroup
	// Sound is the onomatopoeia spoken after the name, if any.
	Sound string
}

type Category struct {
	ID           CategoryID
	Title        string
	Items        []Item
	Color        string
	Emoji        string
	HasAgeFilter bool
}

// Filter returns the items suited to age, in catalog order.
func (c Category) Filter(age AgeGroup) []Item {
	items := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		if age == AgeAll || item.AgeGroup == AgeAll || item.AgeGroup == age {
			items = append(items, item)
		}
	}
	return items
}

// Item looks an item up by name.
func (c Category) Item(name string) (Item, bool) {
	for _, item := range c.Items {
		if item.Name == name {
			return item, true
		}
	}
	return Item{}, false
}

// Validate checks that item names are present and unique.
func (c Category) Validate() error {
	if len(c.Items) == 0 {
		return fmt.Errorf("category %s has no items", c.ID)
	}
	seen := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		if item.Name == "" {
			return fmt.Errorf("category %s has an item without a name", c.ID)
		}
		if seen[item.Name] {
			return fmt.Errorf("category %s has duplicate item %q", c.ID, item.Name)
		}
		seen[item.Name] = true
	}
	return nil
}
