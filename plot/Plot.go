// Package plot renders episodic scores of an experiment to disk
package plot

import (
	"fmt"
	"os"

	"github.com/fogleman/gg"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Taxuspt/udacity-reinforcement-learning-collab/utils/floatutils"
)

// HTML renders an interactive line chart of the episodic scores and
// their moving average to an HTML file at filename
func HTML(filename, title string, scores, averages []float64) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	var episodes []string
	for i := range scores {
		episodes = append(episodes, fmt.Sprintf("%d", i))
	}

	scoreItems := make([]opts.LineData, 0, len(scores))
	for i := range scores {
		scoreItems = append(scoreItems, opts.LineData{Value: scores[i]})
	}

	averageItems := make([]opts.LineData, 0, len(averages))
	for i := range averages {
		averageItems = append(averageItems, opts.LineData{Value: averages[i]})
	}

	line = line.SetXAxis(episodes)
	line.AddSeries("Score", scoreItems)
	line.AddSeries("Average Score", averageItems)

	page := components.NewPage()
	page.AddCharts(line)

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("html: could not create plot file: %v", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("html: could not render plot: %v", err)
	}
	return nil
}

// PNG renders a line chart of the episodic scores and their moving
// average to a PNG image at filename
func PNG(filename, title string, scores, averages []float64,
	width, height int) error {
	if len(scores) == 0 {
		return fmt.Errorf("png: no scores to plot")
	}

	const margin = 40.0

	maxScore := floatutils.Max(scores...)
	minScore := floatutils.Min(scores...)
	if maxScore == minScore {
		maxScore = minScore + 1
	}

	plotWidth := float64(width) - 2*margin
	plotHeight := float64(height) - 2*margin

	toX := func(episode int) float64 {
		if len(scores) == 1 {
			return margin
		}
		return margin + plotWidth*float64(episode)/float64(len(scores)-1)
	}
	toY := func(score float64) float64 {
		return float64(height) - margin -
			plotHeight*(score-minScore)/(maxScore-minScore)
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Axes
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawLine(margin, margin, margin, float64(height)-margin)
	dc.DrawLine(margin, float64(height)-margin, float64(width)-margin,
		float64(height)-margin)
	dc.Stroke()

	dc.DrawStringAnchored(title, float64(width)/2, margin/2, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", maxScore), margin/2, margin,
		0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", minScore), margin/2,
		float64(height)-margin, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%d", len(scores)),
		float64(width)-margin, float64(height)-margin/2, 0.5, 0.5)

	// Per-episode scores
	dc.SetRGB(0.3, 0.5, 0.9)
	for i, score := range scores {
		dc.LineTo(toX(i), toY(score))
	}
	dc.Stroke()

	// Moving average
	dc.SetRGB(0.9, 0.3, 0.2)
	dc.SetLineWidth(2)
	for i, avg := range averages {
		dc.LineTo(toX(i), toY(floatutils.Clip(avg, minScore, maxScore)))
	}
	dc.Stroke()

	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("png: could not save plot: %v", err)
	}
	return nil
}
