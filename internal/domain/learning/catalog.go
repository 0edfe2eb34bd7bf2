package learning

import (
	"fmt"
	"strings"
)

var catalog = []Category{
	{
		ID: Animals, Title: "Animals", Emoji: "🐾", Color: "#FFB347", HasAgeFilter: true,
		Items: []Item{
			{Name: "Cat", Emoji: "🐱", AgeGroup: Age0To2, Sound: "Meow"},
			{Name: "Dog", Emoji: "🐶", AgeGroup: Age0To2, Sound: "Woof woof"},
			{Name: "Cow", Emoji: "🐮", AgeGroup: Age0To2, Sound: "Moo"},
			{Name: "Duck", Emoji: "🦆", AgeGroup: Age0To2, Sound: "Quack quack"},
			{Name: "Sheep", Emoji: "🐑", AgeGroup: Age0To2, Sound: "Baa"},
			{Name: "Pig", Emoji: "🐷", AgeGroup: Age0To2, Sound: "Oink oink"},
			{Name: "Lion", Emoji: "🦁", AgeGroup: Age2To4, Sound: "Roar"},
			{Name: "Elephant", Emoji: "🐘", AgeGroup: Age2To4, Sound: "Pawoo"},
			{Name: "Monkey", Emoji: "🐒", AgeGroup: Age2To4, Sound: "Ooh ooh aah aah"},
			{Name: "Horse", Emoji: "🐴", AgeGroup: Age2To4, Sound: "Neigh"},
			{Name: "Frog", Emoji: "🐸", AgeGroup: Age2To4, Sound: "Ribbit"},
			{Name: "Owl", Emoji: "🦉", AgeGroup: Age2To4, Sound: "Hoot hoot"},
		},
	},
	{
		ID: Vehicles, Title: "Vehicles", Emoji: "🚗", Color: "#77DD77",
		Items: []Item{
			{Name: "Car", Emoji: "🚗", Sound: "Vroom vroom"},
			{Name: "Bus", Emoji: "🚌", Sound: "Beep beep"},
			{Name: "Train", Emoji: "🚂", Sound: "Choo choo"},
			{Name: "Airplane", Emoji: "✈️", Sound: "Zoom"},
			{Name: "Fire Truck", Emoji: "🚒", Sound: "Nee naw nee naw"},
			{Name: "Boat", Emoji: "⛵", Sound: "Toot toot"},
			{Name: "Bicycle", Emoji: "🚲", Sound: "Ring ring"},
			{Name: "Helicopter", Emoji: "🚁", Sound: "Chop chop chop"},
		},
	},
	{
		ID: Fruits, Title: "Fruits", Emoji: "🍎", Color: "#FF6961", HasAgeFilter: true,
		Items: []Item{
			{Name: "Apple", Emoji: "🍎", AgeGroup: Age0To2},
			{Name: "Banana", Emoji: "🍌", AgeGroup: Age0To2},
			{Name: "Orange", Emoji: "🍊", AgeGroup: Age0To2},
			{Name: "Grapes", Emoji: "🍇", AgeGroup: Age0To2},
			{Name: "Strawberry", Emoji: "🍓", AgeGroup: Age2To4},
			{Name: "Watermelon", Emoji: "🍉", AgeGroup: Age2To4},
			{Name: "Pineapple", Emoji: "🍍", AgeGroup: Age2To4},
			{Name: "Cherry", Emoji: "🍒", AgeGroup: Age2To4},
			{Name: "Mango", Emoji: "🥭", AgeGroup: Age2To4},
		},
	},
	{
		ID: Vegetables, Title: "Vegetables", Emoji: "🥕", Color: "#B39EB5",
		Items: []Item{
			{Name: "Carrot", Emoji: "🥕"},
			{Name: "Broccoli", Emoji: "🥦"},
			{Name: "Corn", Emoji: "🌽"},
			{Name: "Potato", Emoji: "🥔"},
			{Name: "Tomato", Emoji: "🍅"},
			{Name: "Cucumber", Emoji: "🥒"},
			{Name: "Pepper", Emoji: "🫑"},
			{Name: "Peas", Emoji: "🫛"},
		},
	},
	{
		ID: Alphabets, Title: "Alphabets", Emoji: "🔤", Color: "#AEC6CF",
		Items: letters(),
	},
	{
		ID: Numbers, Title: "Numbers", Emoji: "🔢", Color: "#FDFD96",
		Items: []Item{
			{Name: "1", Emoji: "1️⃣"},
			{Name: "2", Emoji: "2️⃣"},
			{Name: "3", Emoji: "3️⃣"},
			{Name: "4", Emoji: "4️⃣"},
			{Name: "5", Emoji: "5️⃣"},
			{Name: "6", Emoji: "6️⃣"},
			{Name: "7", Emoji: "7️⃣"},
			{Name: "8", Emoji: "8️⃣"},
			{Name: "9", Emoji: "9️⃣"},
			{Name: "10", Emoji: "🔟"},
		},
	},
	{
		ID: Colors, Title: "Colors", Emoji: "🎨", Color: "#F49AC2",
		Items: []Item{
			{Name: "Red", Emoji: "🟥"},
			{Name: "Blue", Emoji: "🟦"},
			{Name: "Yellow", Emoji: "🟨"},
			{Name: "Green", Emoji: "🟩"},
			{Name: "Orange", Emoji: "🟧"},
			{Name: "Purple", Emoji: "🟪"},
			{Name: "Brown", Emoji: "🟫"},
			{Name: "Black", Emoji: "⬛"},
			{Name: "White", Emoji: "⬜"},
		},
	},
	{
		ID: Shapes, Title: "Shapes", Emoji: "🔷", Color: "#CB99C9",
		Items: []Item{
			{Name: "Circle", Emoji: "⚪"},
			{Name: "Square", Emoji: "🟩"},
			{Name: "Triangle", Emoji: "🔺"},
			{Name: "Star", Emoji: "⭐"},
			{Name: "Heart", Emoji: "❤️"},
			{Name: "Diamond", Emoji: "🔷"},
			{Name: "Oval", Emoji: "🥚"},
		},
	},
	{
		ID: BodyParts, Title: "Body Parts", Emoji: "👋", Color: "#FFD1DC",
		Items: []Item{
			{Name: "Eye", Emoji: "👁️"},
			{Name: "Ear", Emoji: "👂"},
			{Name: "Nose", Emoji: "👃"},
			{Name: "Mouth", Emoji: "👄"},
			{Name: "Hand", Emoji: "✋"},
			{Name: "Foot", Emoji: "🦶"},
			{Name: "Tooth", Emoji: "🦷"},
			{Name: "Tongue", Emoji: "👅"},
		},
	},
	{
		ID: Toys, Title: "Toys", Emoji: "🧸", Color: "#C3B091",
		Items: []Item{
			{Name: "Teddy Bear", Emoji: "🧸", Image: "images/toys/teddy-bear.png"},
			{Name: "Ball", Emoji: "⚽", Image: "images/toys/ball.png"},
			{Name: "Blocks", Emoji: "🧱", Image: "images/toys/blocks.png"},
			{Name: "Kite", Emoji: "🪁", Image: "images/toys/kite.png"},
			{Name: "Yo-yo", Emoji: "🪀", Image: "images/toys/yo-yo.png"},
			{Name: "Balloon", Emoji: "🎈", Image: "images/toys/balloon.png"},
		},
	},
}

func letters() []Item {
	items := make([]Item, 0, 26)
	for r := 'A'; r <= 'Z'; r++ {
		items = append(items, Item{Name: string(r)})
	}
	return items
}

// Catalog returns every category in menu order.
func Catalog() []Category {
	out := make([]Category, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a category by id or title, ignoring case.
func Lookup(name string) (Category, bool) {
	name = strings.TrimSpace(name)
	for _, c := range catalog {
		if strings.EqualFold(c.ID.String(), name) || strings.EqualFold(c.Title, name) {
			return c, true
		}
	}
	return Category{}, false
}

// ValidateCatalog checks every category. It is called once at startup.
func ValidateCatalog() error {
	ids := make(map[CategoryID]bool, len(catalog))
	for _, c := range catalog {
		if ids[c.ID] {
			return fmt.Errorf("duplicate category %s", c.ID)
		}
		ids[c.ID] = true
		if _, ok := phrases[c.ID]; !ok {
			return fmt.Errorf("category %s has no phrase template", c.ID)
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
