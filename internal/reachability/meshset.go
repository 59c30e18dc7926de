package reachability

// MeshSet is a reachable-mesh-code set, carried alongside a region's
// geometry so population scoring sums over the precomputed set instead of
// re-testing mesh centroids against the polygon (spec.md §3's Isochrone
// record, Glossary's "Reachable-mesh set").
type MeshSet map[int64]bool

// NewMeshSet builds a MeshSet from a raw reachable_mesh_list.
func NewMeshSet(codes []int64) MeshSet {
	s := make(MeshSet, len(codes))
	for _, c := range codes {
		s[c] = true
	}
	return s
}

// UnionMeshSet returns the set union of two reachable-mesh sets.
func UnionMeshSet(a, b MeshSet) MeshSet {
	out := make(MeshSet, len(a)+len(b))
	for c := range a {
		out[c] = true
	}
	for c := range b {
		out[c] = true
	}
	return out
}

// DiffMeshSet returns the mesh codes present in b but not in a, mirroring
// Diff's geometry-level set difference.
func DiffMeshSet(a, b MeshSet) MeshSet {
	out := make(MeshSet, len(b))
	for c := range b {
		if !a[c] {
			out[c] = true
		}
	}
	return out
}
