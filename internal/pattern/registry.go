package pattern

import (
	"fmt"
	"sort"
	"strings"

	talibcdl "github.com/iwat/talib-cdl-go"

	"example.com/candlestick-detector/internal/ohlcv"
)

// DetectFunc is the single capability a registry entry provides: given a
// bar series it returns a fire mask aligned index-for-index with the bars.
type DetectFunc func(s *ohlcv.Series) []bool

// registry is the closed catalog. Keys are display names.
var registry = map[Name]DetectFunc{
	BearishEngulfing: scan(isBearishEngulfingAt),
	BearishHarami:    scan(isBearishHaramiAt),
	BullishEngulfing: scan(isBullishEngulfingAt),
	BullishHarami:    scan(isBullishHaramiAt),
	DarkCloudCover:   scan(isDarkCloudCoverAt),
	Doji:             scan(isDojiAt),
	DojiStar:         detectDojiStar,
	DragonflyDoji:    scan(isDragonflyDojiAt),
	GravestoneDoji:   scan(isGravestoneDojiAt),
	Hammer:           scan(isHammerAt),
	HangingMan:       scan(isHangingManAt),
	InvertedHammer:   scan(isInvertedHammerAt),
	MorningStar:      scan(isMorningStarAt),
	MorningStarDoji:  scan(isMorningStarDojiAt),
	PiercingPattern:  detectPiercing,
	RainDrop:         scan(isRainDropAt),
	RainDropDoji:     scan(isRainDropDojiAt),
	ShootingStar:     scan(isShootingStarAt),
	Star:             scan(isStarAt),
}

// Names returns the catalog names sorted alphabetically.
func Names() []Name {
	names := make([]Name, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Lookup resolves a raw string to a catalog name. Matching ignores case
// so CLI input like "doji" resolves.
func Lookup(raw string) (Name, bool) {
	if _, ok := registry[Name(raw)]; ok {
		return Name(raw), true
	}
	for name := range registry {
		if strings.EqualFold(string(name), raw) {
			return name, true
		}
	}
	return "", false
}

// Mask runs the named predicate over the series without copying it.
// Callers that must preserve the input use Evaluate instead.
func Mask(name Name, s *ohlcv.Series) ([]bool, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown pattern %q", name)
	}
	return fn(s), nil
}

// scan lifts a per-bar predicate into a full-series mask.
func scan(fn func(bars []ohlcv.Bar, i int) bool) DetectFunc {
	return func(s *ohlcv.Series) []bool {
		mask := make([]bool, s.Len())
		for i := range s.Bars {
			mask[i] = fn(s.Bars, i)
		}
		return mask
	}
}

// toSeries converts bars to the talib-cdl-go input format.
// Bars must be in time order (oldest first, newest last).
func toSeries(s *ohlcv.Series) talibcdl.SimpleSeries {
	n := s.Len()
	series := talibcdl.SimpleSeries{
		Opens:  make([]float64, n),
		Highs:  make([]float64, n),
		Lows:   make([]float64, n),
		Closes: make([]float64, n),
	}
	for i := range s.Bars {
		series.Opens[i] = s.Bars[i].Open
		series.Highs[i] = s.Bars[i].High
		series.Lows[i] = s.Bars[i].Low
		series.Closes[i] = s.Bars[i].Close
	}
	return series
}

// fillMask marks mask entries where the library reported a nonzero value.
// The result slice may be shorter than the mask on short inputs.
func fillMask(mask []bool, results []int) {
	for i := range mask {
		if i < len(results) && results[i] != 0 {
			mask[i] = true
		}
	}
}

// detectDojiStar delegates to talib-cdl-go. The library needs a body
// average warmup, so early bars never fire.
func detectDojiStar(s *ohlcv.Series) []bool {
	mask := make([]bool, s.Len())
	if s.Len() < 3 {
		return mask
	}
	fillMask(mask, talibcdl.DojiStar(toSeries(s)))
	return mask
}

// detectPiercing delegates to talib-cdl-go.
func detectPiercing(s *ohlcv.Series) []bool {
	mask := make([]bool, s.Len())
	if s.Len() < 3 {
		return mask
	}
	fillMask(mask, talibcdl.Piercing(toSeries(s)))
	return mask
}
