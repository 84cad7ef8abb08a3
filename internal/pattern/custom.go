package pattern

import (
	"example.com/candlestick-detector/internal/ohlcv"
)

// trendWindow is how many prior bars the single-candle reversal patterns
// inspect for trend context.
const trendWindow = 3

// isDowntrend reports whether the window shows a downtrend.
// Condition: closing prices decreasing OR at least 2/3 bearish.
func isDowntrend(bars []ohlcv.Bar) bool {
	if len(bars) < 2 {
		return false
	}

	decreasing := true
	for i := 1; i < len(bars); i++ {
		if bars[i].Close >= bars[i-1].Close {
			decreasing = false
			break
		}
	}
	if decreasing {
		return true
	}

	bearishCount := 0
	for i := range bars {
		if bars[i].IsBearish() {
			bearishCount++
		}
	}
	return bearishCount >= (len(bars)*2)/3
}

// isUptrend reports whether the window shows an uptrend.
func isUptrend(bars []ohlcv.Bar) bool {
	if len(bars) < 2 {
		return false
	}

	increasing := true
	for i := 1; i < len(bars); i++ {
		if bars[i].Close <= bars[i-1].Close {
			increasing = false
			break
		}
	}
	if increasing {
		return true
	}

	bullishCount := 0
	for i := range bars {
		if bars[i].IsBullish() {
			bullishCount++
		}
	}
	return bullishCount >= (len(bars)*2)/3
}

// isDoji reports whether a bar has a negligible body relative to its range.
// Zero-range bars are excluded to avoid false positives on flat data.
func isDoji(b *ohlcv.Bar) bool {
	if b.Range() == 0 {
		return false
	}
	return b.Body()/b.Range() < 0.1
}

func isDojiAt(bars []ohlcv.Bar, i int) bool {
	return isDoji(&bars[i])
}

// isDragonflyDojiAt checks for a doji with a long lower shadow and almost
// no upper shadow.
func isDragonflyDojiAt(bars []ohlcv.Bar, i int) bool {
	b := &bars[i]
	if !isDoji(b) {
		return false
	}
	if b.LowerShadow() < b.Range()*0.6 {
		return false
	}
	return b.UpperShadow() <= b.Range()*0.1
}

// isGravestoneDojiAt checks for a doji with a long upper shadow and almost
// no lower shadow.
func isGravestoneDojiAt(bars []ohlcv.Bar, i int) bool {
	b := &bars[i]
	if !isDoji(b) {
		return false
	}
	if b.UpperShadow() < b.Range()*0.6 {
		return false
	}
	return b.LowerShadow() <= b.Range()*0.1
}

// isHammerAt checks for a hammer: long lower shadow (>= 2x body), small
// upper shadow, appearing after a downtrend.
func isHammerAt(bars []ohlcv.Bar, i int) bool {
	if i < trendWindow {
		return false
	}
	b := &bars[i]

	body := b.Body()
	if body == 0 || b.Range() == 0 {
		return false
	}
	if b.LowerShadow() < body*2 {
		return false
	}
	if b.UpperShadow() > body*0.3 {
		return false
	}

	return isDowntrend(bars[i-trendWindow : i])
}

// isInvertedHammerAt mirrors the hammer with the long shadow on top.
func isInvertedHammerAt(bars []ohlcv.Bar, i int) bool {
	if i < trendWindow {
		return false
	}
	b := &bars[i]

	body := b.Body()
	if body == 0 || b.Range() == 0 {
		return false
	}
	if b.UpperShadow() < body*2 {
		return false
	}
	if b.LowerShadow() > body*0.3 {
		return false
	}

	return isDowntrend(bars[i-trendWindow : i])
}

// isHangingManAt checks for a hammer shape appearing after an uptrend.
func isHangingManAt(bars []ohlcv.Bar, i int) bool {
	if i < trendWindow {
		return false
	}
	b := &bars[i]

	body := b.Body()
	if body == 0 || b.Range() == 0 {
		return false
	}
	if b.LowerShadow() < body*2 {
		return false
	}
	if b.UpperShadow() > body*0.3 {
		return false
	}

	return isUptrend(bars[i-trendWindow : i])
}

// isShootingStarAt checks for a long upper shadow after an uptrend.
func isShootingStarAt(bars []ohlcv.Bar, i int) bool {
	if i < trendWindow {
		return false
	}
	b := &bars[i]

	body := b.Body()
	if body == 0 || b.Range() == 0 {
		return false
	}
	if b.UpperShadow() < body*2 {
		return false
	}
	if b.LowerShadow() > body*0.3 {
		return false
	}

	return isUptrend(bars[i-trendWindow : i])
}

// isBullishEngulfingAt checks that the current bullish body contains the
// previous bearish body.
func isBullishEngulfingAt(bars []ohlcv.Bar, i int) bool {
	if i < 1 {
		return false
	}
	prev, curr := &bars[i-1], &bars[i]

	if !prev.IsBearish() || !curr.IsBullish() {
		return false
	}
	return curr.Open <= prev.Close && curr.Close >= prev.Open
}

// isBearishEngulfingAt checks that the current bearish body contains the
// previous bullish body.
func isBearishEngulfingAt(bars []ohlcv.Bar, i int) bool {
	if i < 1 {
		return false
	}
	prev, curr := &bars[i-1], &bars[i]

	if !prev.IsBullish() || !curr.IsBearish() {
		return false
	}
	return curr.Open >= prev.Close && curr.Close <= prev.Open
}

// isHaramiAt checks the shared harami geometry: the previous bar has a
// significant body and the current body sits entirely inside it.
func isHaramiAt(bars []ohlcv.Bar, i int) bool {
	prev, curr := &bars[i-1], &bars[i]

	if prev.Range() == 0 || prev.Body() < prev.Range()*0.5 {
		return false
	}

	prevBodyHigh := max(prev.Open, prev.Close)
	prevBodyLow := min(prev.Open, prev.Close)
	currBodyHigh := max(curr.Open, curr.Close)
	currBodyLow := min(curr.Open, curr.Close)

	if currBodyHigh > prevBodyHigh || currBodyLow < prevBodyLow {
		return false
	}

	return curr.Body() <= prev.Body()*0.5
}

func isBullishHaramiAt(bars []ohlcv.Bar, i int) bool {
	if i < 1 {
		return false
	}
	return bars[i-1].IsBearish() && isHaramiAt(bars, i)
}

func isBearishHaramiAt(bars []ohlcv.Bar, i int) bool {
	if i < 1 {
		return false
	}
	return bars[i-1].IsBullish() && isHaramiAt(bars, i)
}

// isDarkCloudCoverAt checks for a bearish bar opening at or above the
// previous bullish close and closing below the midpoint of its body.
func isDarkCloudCoverAt(bars []ohlcv.Bar, i int) bool {
	if i < 1 {
		return false
	}
	prev, curr := &bars[i-1], &bars[i]

	if prev.Range() == 0 {
		return false
	}
	// Previous: large bullish candle
	if !prev.IsBullish() || prev.Body() < prev.Range()*0.6 {
		return false
	}
	if !curr.IsBearish() {
		return false
	}
	if curr.Open < prev.Close {
		return false
	}

	// Close penetrates into prev body by at least 50%
	midPrev := (prev.Open + prev.Close) / 2
	return curr.Close <= midPrev
}

// isMorningStarAt checks the three-bar morning star: large bearish bar,
// small star, large bullish bar closing into the first body.
func isMorningStarAt(bars []ohlcv.Bar, i int) bool {
	if i < 2 {
		return false
	}
	first, second, third := &bars[i-2], &bars[i-1], &bars[i]

	if first.Range() == 0 || third.Range() == 0 {
		return false
	}
	if !first.IsBearish() || first.Body() < first.Range()*0.6 {
		return false
	}
	if second.Body() > first.Body()*0.3 {
		return false
	}
	if !third.IsBullish() || third.Body() < third.Range()*0.6 {
		return false
	}

	midFirst := (first.Open + first.Close) / 2
	return third.Close >= midFirst
}

// isMorningStarDojiAt is the morning star with a doji as the middle bar.
func isMorningStarDojiAt(bars []ohlcv.Bar, i int) bool {
	if i < 2 {
		return false
	}
	first, second, third := &bars[i-2], &bars[i-1], &bars[i]

	if first.Range() == 0 || third.Range() == 0 {
		return false
	}
	if !first.IsBearish() || first.Body() < first.Range()*0.6 {
		return false
	}
	if !isDoji(second) {
		return false
	}
	if !third.IsBullish() || third.Body() < third.Range()*0.6 {
		return false
	}

	midFirst := (first.Open + first.Close) / 2
	return third.Close >= midFirst
}

// isStarAt checks for a small body gapping entirely above a long bullish
// bar. Doji-sized bodies are excluded; those belong to DojiStar.
func isStarAt(bars []ohlcv.Bar, i int) bool {
	if i < 1 {
		return false
	}
	prev, curr := &bars[i-1], &bars[i]

	if prev.Range() == 0 || curr.Range() == 0 {
		return false
	}
	if !prev.IsBullish() || prev.Body() < prev.Range()*0.6 {
		return false
	}

	ratio := curr.Body() / curr.Range()
	if ratio < 0.1 || ratio >= 0.3 {
		return false
	}

	return curr.Low > prev.High
}

// isRainDropAt mirrors the star on the downside: a small body gapping
// entirely below a long bearish bar.
func isRainDropAt(bars []ohlcv.Bar, i int) bool {
	if i < 1 {
		return false
	}
	prev, curr := &bars[i-1], &bars[i]

	if prev.Range() == 0 || curr.Range() == 0 {
		return false
	}
	if !prev.IsBearish() || prev.Body() < prev.Range()*0.6 {
		return false
	}

	ratio := curr.Body() / curr.Range()
	if ratio < 0.1 || ratio >= 0.3 {
		return false
	}

	return curr.High < prev.Low
}

// isRainDropDojiAt is the rain drop whose second bar is a doji.
func isRainDropDojiAt(bars []ohlcv.Bar, i int) bool {
	if i < 1 {
		return false
	}
	prev, curr := &bars[i-1], &bars[i]

	if prev.Range() == 0 {
		return false
	}
	if !prev.IsBearish() || prev.Body() < prev.Range()*0.6 {
		return false
	}
	if !isDoji(curr) {
		return false
	}

	return curr.High < prev.Low
}
