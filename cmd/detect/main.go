// Command detect runs one candlestick pattern over a CSV file from the
// terminal, without the dashboard.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"example.com/candlestick-detector/internal/ohlcv"
	"example.com/candlestick-detector/internal/pattern"
	"example.com/candlestick-detector/internal/render"
)

var (
	green  = color.New(color.FgGreen).SprintfFunc()
	red    = color.New(color.FgRed).SprintfFunc()
	yellow = color.New(color.FgYellow).SprintfFunc()
	cyan   = color.New(color.FgCyan).SprintfFunc()
)

func main() {
	csvPath := flag.String("csv", "", "path to an OHLCV CSV file")
	patternName := flag.String("pattern", "", "catalog pattern to detect")
	start := flag.Int("start", 0, "first row of the detection range")
	end := flag.Int("end", -1, "last row of the detection range, -1 means the final row")
	out := flag.String("out", "", "write the detection chart PNG to this path")
	htmlOut := flag.String("html", "", "write the interactive chart HTML to this path")
	list := flag.Bool("list", false, "print the pattern catalog and exit")
	flag.Parse()

	if *list {
		printCatalog()
		return
	}
	if *csvPath == "" || *patternName == "" {
		flag.Usage()
		os.Exit(2)
	}

	name, ok := pattern.Lookup(*patternName)
	if !ok {
		fail("unknown pattern %q, run with -list to see the catalog", *patternName)
	}

	series, err := ohlcv.LoadFile(*csvPath)
	if err != nil {
		fail("load %s: %v", *csvPath, err)
	}

	working := series
	if series.Len() > 0 {
		last := series.Len() - 1
		s, e := *start, *end
		if s < 0 {
			s = 0
		}
		if e < 0 || e > last {
			e = last
		}
		if s > e {
			fail("start %d is past end %d", s, e)
		}
		if s > 0 || e < last {
			if working, err = series.Slice(s, e); err != nil {
				fail("slice rows: %v", err)
			}
		}
	}

	result, err := pattern.Evaluate(working, name)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("%s  %d rows\n", cyan("%s", series.Source), working.Len())
	if !result.Found {
		fmt.Println(yellow("%s", result.Message))
		return
	}

	fmt.Println(green("%s Pattern Detected in: %s", name, series.Source))
	for _, idx := range result.Matches {
		bar := working.Bars[idx]
		fmt.Printf("  row %-5d %s  close %.4f\n", idx, bar.Timestamp.Format("02/01/2006"), bar.Close)
	}

	if *out != "" {
		png, err := render.PNG(working, result.Marker, string(name))
		if err != nil {
			fail("render chart: %v", err)
		}
		if err := os.WriteFile(*out, png, 0o644); err != nil {
			fail("write %s: %v", *out, err)
		}
		fmt.Printf("chart written to %s\n", *out)
	}
	if *htmlOut != "" {
		html, err := render.InteractiveHTML(working, result.Marker, string(name))
		if err != nil {
			fail("render interactive chart: %v", err)
		}
		if err := os.WriteFile(*htmlOut, html, 0o644); err != nil {
			fail("write %s: %v", *htmlOut, err)
		}
		fmt.Printf("interactive chart written to %s\n", *htmlOut)
	}
}

func printCatalog() {
	for _, name := range pattern.Names() {
		info, ok := pattern.GetInfo(name)
		if !ok {
			continue
		}
		direction := yellow("%-7s", info.Direction)
		switch info.Direction {
		case pattern.DirectionBullish:
			direction = green("%-7s", info.Direction)
		case pattern.DirectionBearish:
			direction = red("%-7s", info.Direction)
		}
		fmt.Printf("%-18s %s  %d+ bars  %s\n", name, direction, info.Bars, info.Description)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintln(os.Stderr, red(format, args...))
	os.Exit(1)
}
