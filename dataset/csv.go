package dataset

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/hupe1980/kmviz/model"
)

// ReadCSV loads points from CSV with a header row. Columns named "x" and "y"
// (case-insensitive) are used when present; otherwise the first two columns.
func ReadCSV(r io.Reader) ([]model.Point, error) {
	df := dataframe.ReadCSV(r, dataframe.HasHeader(true))
	if df.Err != nil {
		return nil, fmt.Errorf("dataset: read csv: %w", df.Err)
	}
	if df.Ncol() < 2 {
		return nil, fmt.Errorf("dataset: csv needs two columns, got %d", df.Ncol())
	}

	xName, yName := pickColumns(df.Names())
	xs := df.Col(xName).Float()
	ys := df.Col(yName).Float()

	points := make([]model.Point, df.Nrow())
	for i := range points {
		p := model.Pt(xs[i], ys[i])
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
			return nil, fmt.Errorf("dataset: csv row %d is not numeric", i+1)
		}
		points[i] = p
	}
	return points, nil
}

func pickColumns(names []string) (string, string) {
	x, y := "", ""
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "x":
			x = n
		case "y":
			y = n
		}
	}
	if x == "" || y == "" {
		return names[0], names[1]
	}
	return x, y
}
