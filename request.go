package kmviz

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/kmviz/model"
)

// Request is the input of one Run.
type Request struct {
	// Data is the dataset, in order.
	Data []model.Point `json:"data"`
	// NumClusters is k.
	NumClusters ClusterCount `json:"num_clusters"`
	// InitMethod is one of "kmeans++" (default when empty), "random",
	// "manual" or "farthest_first".
	InitMethod string `json:"init_method"`
	// ManualCentroids are the seeds for "manual", exactly NumClusters of
	// them. Ignored by every other method.
	ManualCentroids []model.Point `json:"manual_centroids,omitempty"`
}

// ClusterCount is a cluster count that decodes from a JSON number or from a
// numeric string such as "3".
type ClusterCount int

// UnmarshalJSON implements json.Unmarshaler.
func (c *ClusterCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("num_clusters: %w", err)
		}
		s = strings.TrimSpace(unq)
	}
	if n, err := strconv.Atoi(s); err == nil {
		*c = ClusterCount(n)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("num_clusters: %q is not an integer", s)
	}
	*c = ClusterCount(f)
	return nil
}
