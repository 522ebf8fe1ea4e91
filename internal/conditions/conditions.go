// Package conditions maps OpenWeatherMap condition codes to the two icon
// sets used by the forecast list: large multi-line art for the today row
// and single-glyph icons for the compact rows.
package conditions

// Kind is a weather condition class shared by both icon sets
type Kind int

const (
	Unknown Kind = iota
	Storm
	LightRain
	Rain
	Snow
	Fog
	Clear
	LightClouds
	Clouds
)

// String returns the resource suffix for the kind
func (k Kind) String() string {
	switch k {
	case Storm:
		return "storm"
	case LightRain:
		return "light_rain"
	case Rain:
		return "rain"
	case Snow:
		return "snow"
	case Fog:
		return "fog"
	case Clear:
		return "clear"
	case LightClouds:
		return "light_clouds"
	case Clouds:
		return "cloudy"
	default:
		return "unknown"
	}
}

// Icon is a drawable resource for a condition
type Icon struct {
	ID    string   // e.g. "art_clear", "ic_rain"
	Kind  Kind
	Lines []string // one line for compact icons, several for art
}

// Classify maps a condition code to its class. The second result is
// false when the code has no mapping.
func Classify(conditionID int) (Kind, bool) {
	switch {
	case conditionID >= 200 && conditionID <= 232:
		return Storm, true
	case conditionID >= 300 && conditionID <= 321:
		return LightRain, true
	case conditionID >= 500 && conditionID <= 504:
		return Rain, true
	case conditionID == 511:
		return Snow, true
	case conditionID >= 520 && conditionID <= 531:
		return Rain, true
	case conditionID >= 600 && conditionID <= 622:
		return Snow, true
	case conditionID >= 701 && conditionID <= 761:
		return Fog, true
	case conditionID == 781:
		return Storm, true
	case conditionID == 800:
		return Clear, true
	case conditionID == 801:
		return LightClouds, true
	case conditionID >= 802 && conditionID <= 804:
		return Clouds, true
	}
	return Unknown, false
}

// ArtFor returns the large art used by the today row. Unmapped codes get
// the unknown art and ok == false.
func ArtFor(conditionID int) (icon Icon, ok bool) {
	kind, ok := Classify(conditionID)
	return Icon{ID: "art_" + kind.String(), Kind: kind, Lines: art[kind]}, ok
}

// IconFor returns the compact icon used by future-day rows. Unmapped codes
// get the unknown icon and ok == false.
func IconFor(conditionID int) (icon Icon, ok bool) {
	kind, ok := Classify(conditionID)
	return Icon{ID: "ic_" + kind.String(), Kind: kind, Lines: []string{glyphs[kind]}}, ok
}

var glyphs = map[Kind]string{
	Unknown:     "?",
	Storm:       "⛈",
	LightRain:   "🌦",
	Rain:        "🌧",
	Snow:        "❄",
	Fog:         "🌫",
	Clear:       "☀",
	LightClouds: "🌤",
	Clouds:      "☁",
}

var art = map[Kind][]string{
	Unknown: {
		"    .-.    ",
		"     __)   ",
		"    (      ",
		"     `-’   ",
		"      •    ",
	},
	Storm: {
		"     .-.   ",
		"    (   ). ",
		"   (___(__)",
		"  ‚‘⚡‘‚⚡‚‘ ",
		"  ‚’‚’⚡’‚’ ",
	},
	LightRain: {
		" _`/\"\".-.  ",
		"  ,\\_(   ).",
		"   /(___(__)",
		"     ‘ ‘ ‘ ‘",
		"    ‘ ‘ ‘ ‘ ",
	},
	Rain: {
		"     .-.   ",
		"    (   ). ",
		"   (___(__)",
		"  ‚‘‚‘‚‘‚‘ ",
		"  ‚’‚’‚’‚’ ",
	},
	Snow: {
		"     .-.   ",
		"    (   ). ",
		"   (___(__)",
		"   * * * * ",
		"  * * * *  ",
	},
	Fog: {
		"           ",
		" _ - _ - _ ",
		"  _ - _ - _",
		" _ - _ - _ ",
		"           ",
	},
	Clear: {
		"    \\   /  ",
		"     .-.   ",
		"  ― (   ) ―",
		"     `-’   ",
		"    /   \\  ",
	},
	LightClouds: {
		"   \\  /    ",
		" _ /\"\".-.  ",
		"   \\_(   ).",
		"   /(___(__)",
		"           ",
	},
	Clouds: {
		"           ",
		"     .--.  ",
		"  .-(    ).",
		" (___.__)__)",
		"           ",
	},
}
