package ideas

var defaults = []string{
	"Draw a cat wearing a wizard hat",
	"Sketch a tree house in a magical forest",
	"Design a robot that makes pancakes",
	"Draw your favorite animal as a superhero",
	"Illustrate a city floating in the clouds",
	"Sketch a dragon reading a book",
	"Draw a spaceship shaped like a fruit",
	"Design a cozy cafe on Mars",
	"Illustrate a mermaid's underwater garden",
	"Draw a phoenix rising from coffee steam",
	"Sketch a castle made of ice cream",
	"Design a time machine disguised as a phone booth",
	"Draw a wise owl teaching at a blackboard",
	"Illustrate a pirate ship sailing through stars",
	"Sketch a butterfly with galaxy wings",
	"Draw a friendly monster hosting a tea party",
	"Design a lighthouse in a bottle",
	"Illustrate a fox wearing autumn leaves as a crown",
	"Draw a mountain range that looks like sleeping giants",
	"Sketch a hot air balloon shaped like a jellyfish",
}

// Defaults returns a copy of the built-in default prompt set.
func Defaults() []string {
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}
