package clusterx

// Nearest applies the assignment policy to a distance buffer. It returns the
// lowest index whose distance is minimal when that distance divided by 2 is
// within maxDiv, and ok=false when a new representative must be created
// (always the case for an empty buffer).
func Nearest(distances []uint, maxDiv uint) (index int, ok bool) {
	if len(distances) == 0 {
		return 0, false
	}
	// strict less-than keeps the earliest index on ties
	minIndex := 0
	for i, d := range distances {
		if d < distances[minIndex] {
			minIndex = i
		}
	}
	if distances[minIndex]/2 > maxDiv {
		return 0, false
	}
	return minIndex, true
}

// RepresentativeSet is the ordered, append only list of cluster
// representatives of one run. distances is scratch space reused
// by every Assign call and always has the same length as vectors.
type RepresentativeSet struct {
	vectors   []*Vector
	distances []uint
}

// NewRepresentativeSet returns an empty set
func NewRepresentativeSet() *RepresentativeSet {
	return &RepresentativeSet{}
}

// Len returns the number of representatives
func (r *RepresentativeSet) Len() int {
	return len(r.vectors)
}

// At returns the representative with creation index i
func (r *RepresentativeSet) At(i int) *Vector {
	return r.vectors[i]
}

// Distances returns the distances computed by the last Assign call.
// The slice is reused, callers must not keep it.
func (r *RepresentativeSet) Distances() []uint {
	return r.distances
}

// Assign returns the representative the query belongs to. When no
// representative is within maxDiv mismatched symbols the query is appended
// as a new representative and created is true.
func (r *RepresentativeSet) Assign(query *Vector, maxDiv uint) (index int, created bool, err error) {
	if err := Distances(r.vectors, query, r.distances); err != nil {
		return 0, false, err
	}
	if index, ok := Nearest(r.distances, maxDiv); ok {
		return index, false, nil
	}
	r.vectors = append(r.vectors, query)
	// placeholder keeps len(distances) == len(vectors)
	r.distances = append(r.distances, 0)
	return len(r.vectors) - 1, true, nil
}
