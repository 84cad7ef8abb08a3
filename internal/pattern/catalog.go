package pattern

// Info holds display metadata for a catalog entry.
type Info struct {
	Direction   Direction // dominant signal direction
	Bars        int       // fewest bars the predicate inspects
	Source      string    // detection source: "talib" or "custom"
	Description string
}

// InfoMap maps every catalog name to its display metadata.
var InfoMap = map[Name]Info{
	BearishEngulfing: {DirectionBearish, 2, "custom", "Bearish body engulfing the prior bullish body"},
	BearishHarami:    {DirectionBearish, 2, "custom", "Small body contained inside the prior large bullish body"},
	BullishEngulfing: {DirectionBullish, 2, "custom", "Bullish body engulfing the prior bearish body"},
	BullishHarami:    {DirectionBullish, 2, "custom", "Small body contained inside the prior large bearish body"},
	DarkCloudCover:   {DirectionBearish, 2, "custom", "Bearish close deep into the prior bullish body"},
	Doji:             {DirectionNeutral, 1, "custom", "Open and close nearly equal, indecision bar"},
	DojiStar:         {DirectionNeutral, 2, "talib", "Doji gapping away from a long prior body"},
	DragonflyDoji:    {DirectionBullish, 1, "custom", "Doji with a long lower shadow and almost no upper shadow"},
	GravestoneDoji:   {DirectionBearish, 1, "custom", "Doji with a long upper shadow and almost no lower shadow"},
	Hammer:           {DirectionBullish, 4, "custom", "Long lower shadow after a downtrend"},
	HangingMan:       {DirectionBearish, 4, "custom", "Hammer shape appearing after an uptrend"},
	InvertedHammer:   {DirectionBullish, 4, "custom", "Long upper shadow after a downtrend"},
	MorningStar:      {DirectionBullish, 3, "custom", "Bearish bar, small star, then a bullish bar closing into the first body"},
	MorningStarDoji:  {DirectionBullish, 3, "custom", "Morning star whose middle bar is a doji"},
	PiercingPattern:  {DirectionBullish, 2, "talib", "Bullish close above the midpoint of the prior bearish body"},
	RainDrop:         {DirectionBullish, 2, "custom", "Small body gapping below a long bearish bar"},
	RainDropDoji:     {DirectionBullish, 2, "custom", "Doji gapping below a long bearish bar"},
	ShootingStar:     {DirectionBearish, 4, "custom", "Long upper shadow after an uptrend"},
	Star:             {DirectionBearish, 2, "custom", "Small body gapping above a long bullish bar"},
}

// GetInfo returns the display metadata for a pattern name.
func GetInfo(name Name) (Info, bool) {
	info, ok := InfoMap[name]
	return info, ok
}
