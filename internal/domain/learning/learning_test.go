package learning

import "testing"

func TestPhrase(t *testing.T) {
	tests := []struct {
		id   CategoryID
		item Item
		want string
	}{
		{Animals, Item{Name: "Cat", Sound: "Meow"}, "Cat. Meow."},
		{Animals, Item{Name: "Fish"}, "Fish"},
		{Vehicles, Item{Name: "Train", Sound: "Choo choo"}, "Train. Choo choo."},
		{Fruits, Item{Name: "Apple"}, "Mmm, a yummy Apple!"},
		{Vegetables, Item{Name: "Carrot"}, "Yummy, yummy, a healthy Carrot!"},
		{Alphabets, Item{Name: "B"}, "This is the letter B."},
		{Numbers, Item{Name: "7"}, "The number 7."},
		{Colors, Item{Name: "Red"}, "The color Red! So pretty!"},
		{Shapes, Item{Name: "Star"}, "Look, a Star!"},
		{BodyParts, Item{Name: "Nose"}, "This is your Nose."},
		{Toys, Item{Name: "Ball"}, "Ball"},
		{CategoryID("planets"), Item{Name: "Mars"}, "Mars"},
	}

	for _, tt := range tests {
		t.Run(tt.id.String()+"/"+tt.item.Name, func(t *testing.T) {
			if got := Phrase(tt.id, tt.item); got != tt.want {
				t.Errorf("Phrase(%s, %s) = %q, want %q", tt.id, tt.item.Name, got, tt.want)
			}
		})
	}
}

func TestValidateCatalog(t *testing.T) {
	if err := ValidateCatalog(); err != nil {
		t.Fatalf("catalog is invalid: %v", err)
	}
}

func TestCategory_Validate(t *testing.T) {
	c := Category{ID: Toys, Items: []Item{{Name: "Ball"}, {Name: "Ball"}}}
	if err := c.Validate(); err == nil {
		t.Error("expected an error for duplicate names")
	}
	if err := (Category{ID: Toys}).Validate(); err == nil {
		t.Error("expected an error for an empty category")
	}
}

func TestCategory_Filter(t *testing.T) {
	c := Category{Items: []Item{
		{Name: "Cat", AgeGroup: Age0To2},
		{Name: "Lion", AgeGroup: Age2To4},
		{Name: "Fish"},
	}}

	names := func(items []Item) []string {
		var out []string
		for _, item := range items {
			out = append(out, item.Name)
		}
		return out
	}

	tests := []struct {
		age  AgeGroup
		want []string
	}{
		{AgeAll, []string{"Cat", "Lion", "Fish"}},
		{Age0To2, []string{"Cat", "Fish"}},
		{Age2To4, []string{"Lion", "Fish"}},
	}
	for _, tt := range tests {
		got := names(c.Filter(tt.age))
		if len(got) != len(tt.want) {
			t.Errorf("Filter(%s) = %v, want %v", tt.age, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Filter(%s) = %v, want %v", tt.age, got, tt.want)
				break
			}
		}
	}
}

func TestParseAgeGroup(t *testing.T) {
	for in, want := range map[string]AgeGroup{"": AgeAll, "all": AgeAll, "0-2": Age0To2, "2-4": Age2To4} {
		got, err := ParseAgeGroup(in)
		if err != nil || got != want {
			t.Errorf("ParseAgeGroup(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseAgeGroup("teen"); err == nil {
		t.Error("expected an error for an unknown age group")
	}
}

func TestLookup(t *testing.T) {
	c, ok := Lookup("body parts")
	if !ok || c.ID != BodyParts {
		t.Errorf("Lookup(body parts) = %v, %v", c.ID, ok)
	}
	if c, ok := Lookup("ANIMALS"); !ok || c.Title != "Animals" {
		t.Errorf("Lookup(ANIMALS) = %v, %v", c.Title, ok)
	}
	if _, ok := Lookup("dinosaurs"); ok {
		t.Error("found a category that does not exist")
	}
}
