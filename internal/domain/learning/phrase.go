package learning

import "fmt"

type phraseFunc func(Item) string

var phrases = map[CategoryID]phraseFunc{
	Animals:    withSound,
	Vehicles:   withSound,
	Fruits:     template("Mmm, a yummy %s!"),
	Vegetables: template("Yummy, yummy, a healthy %s!"),
	Alphabets:  template("This is the letter %s."),
	Numbers:    template("The number %s."),
	Colors:     template("The color %s! So pretty!"),
	Shapes:     template("Look, a %s!"),
	BodyParts:  template("This is your %s."),
	Toys:       bare,
}

// Phrase returns the text spoken for item in category id.
func Phrase(id CategoryID, item Item) string {
	if fn, ok := phrases[id]; ok {
		return fn(item)
	}
	return item.Name
}

func withSound(item Item) string {
	if item.Sound == "" {
		return item.Name
	}
	return fmt.Sprintf("%s. %s.", item.Name, item.Sound)
}

func template(format string) phraseFunc {
	return func(item Item) string {
		return fmt.Sprintf(format, item.Name)
	}
}

func bare(item Item) string {
	return item.Name
}
