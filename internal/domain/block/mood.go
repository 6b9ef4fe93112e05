package block

// Emotions offered by the mood selector.
var Emotions = []string{
	"joyful",
	"grateful",
	"calm",
	"excited",
	"loved",
	"proud",
	"nostalgic",
	"tired",
	"anxious",
	"sad",
	"angry",
	"overwhelmed",
}

// IsKnownEmotion reports whether e is one of Emotions.
func IsKnownEmotion(e string) bool {
	for _, known := range Emotions {
		if known == e {
			return true
		}
	}
	return false
}

// Intensity returns the mood intensity stored in b's props.
func Intensity(b Block) (int, bool) {
	return toInt(b.Props[PropIntensity])
}
