// Package pattern provides the candlestick pattern catalog and its
// detection predicates.
package pattern

// Name identifies a pattern in the catalog. Names double as display
// strings; the catalog is fixed at startup and presented for selection,
// never typed free-form.
type Name string

const (
	BearishEngulfing Name = "BearishEngulfing"
	BearishHarami    Name = "BearishHarami"
	BullishEngulfing Name = "BullishEngulfing"
	BullishHarami    Name = "BullishHarami"
	DarkCloudCover   Name = "DarkCloudCover"
	Doji             Name = "Doji"
	DojiStar         Name = "DojiStar"
	DragonflyDoji    Name = "DragonflyDoji"
	GravestoneDoji   Name = "GravestoneDoji"
	Hammer           Name = "Hammer"
	HangingMan       Name = "HangingMan"
	InvertedHammer   Name = "InvertedHammer"
	MorningStar      Name = "MorningStar"
	MorningStarDoji  Name = "MorningStarDoji"
	PiercingPattern  Name = "PiercingPattern"
	RainDrop         Name = "RainDrop"
	RainDropDoji     Name = "RainDropDoji"
	ShootingStar     Name = "ShootingStar"
	Star             Name = "Star"
)

// Direction represents the signal direction a pattern is held to carry.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)
