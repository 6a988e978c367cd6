package risk

import "sort"

// kdTree is a static 2-d tree over incident coordinates in degree space.
// It only supports the one query the proximity field needs: all points within
// a square radius of a query point. Candidates are re-checked with haversine
// by the caller, so the degree-space box just has to be an over-approximation.
type kdTree struct {
	root *kdNode
}

type kdNode struct {
	lat, lon    float64
	idx         int
	axis        int
	left, right *kdNode
}

type kdEntry struct {
	lat, lon float64
	idx      int
}

func newKDTree(entries []kdEntry) *kdTree {
	t := &kdTree{}
	t.root = buildKD(entries, 0)
	return t
}

func buildKD(entries []kdEntry, axis int) *kdNode {
	if len(entries) == 0 {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if axis == 0 {
			if entries[i].lat != entries[j].lat {
				return entries[i].lat < entries[j].lat
			}
		} else {
			if entries[i].lon != entries[j].lon {
				return entries[i].lon < entries[j].lon
			}
		}
		// Stable ordering for duplicate coordinates keeps tree shape
		// deterministic across fits of the same data.
		return entries[i].idx < entries[j].idx
	})

	mid := len(entries) / 2
	node := &kdNode{
		lat:  entries[mid].lat,
		lon:  entries[mid].lon,
		idx:  entries[mid].idx,
		axis: axis,
	}
	node.left = buildKD(entries[:mid], 1-axis)
	node.right = buildKD(entries[mid+1:], 1-axis)
	return node
}

// within appends the indices of all points whose lat and lon both fall inside
// radiusDeg of the query point.
func (t *kdTree) within(lat, lon, radiusDeg float64) []int {
	var out []int
	searchKD(t.root, lat, lon, radiusDeg, &out)
	sort.Ints(out)
	return out
}

func searchKD(n *kdNode, lat, lon, r float64, out *[]int) {
	if n == nil {
		return
	}

	if n.lat >= lat-r && n.lat <= lat+r && n.lon >= lon-r && n.lon <= lon+r {
		*out = append(*out, n.idx)
	}

	var delta float64
	if n.axis == 0 {
		delta = lat - n.lat
	} else {
		delta = lon - n.lon
	}

	if delta-r <= 0 {
		searchKD(n.left, lat, lon, r, out)
	}
	if delta+r >= 0 {
		searchKD(n.right, lat, lon, r, out)
	}
}
