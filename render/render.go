// Package render draws a run history as an HTML page of scatter charts, one
// chart per step.
package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/hupe1980/kmviz/model"
)

// CentroidColor is the series color used for centroids.
const CentroidColor = "black"

// Steps writes an HTML page with one chart per step to w.
func Steps(w io.Writer, steps []model.Step) error {
	page := components.NewPage()
	page.PageTitle = "K-Means"
	for i, s := range steps {
		page.AddCharts(Step(i, s))
	}
	return page.Render(w)
}

// Step builds the scatter chart for a single step.
func Step(i int, s model.Step) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Step %d", i),
			Subtitle: fmt.Sprintf("inertia %.4g, reassigned %d", s.Inertia, s.Reassigned),
		}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)

	for c, cluster := range s.Clusters {
		scatter.AddSeries(fmt.Sprintf("Cluster %d", c), scatterData(cluster.Points),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: cluster.Color}),
		)
	}
	scatter.AddSeries("Centroids", scatterData(s.Centroids),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: CentroidColor}),
	)
	return scatter
}

func scatterData(points []model.Point) []opts.ScatterData {
	items := make([]opts.ScatterData, len(points))
	for i, p := range points {
		items[i] = opts.ScatterData{Value: []float64{p[0], p[1]}}
	}
	return items
}
