package dataaccess

// LoadGeoJSON returns the best precomputed isochrone for (spotID,
// startTime): the record with the largest MaxMinute <= minute and the
// largest MaxWalkM <= walkM among those, per spec.md §4.F/§9's
// fallback-quantisation rule ("nearest coarser precomputed bucket, never a
// finer one"). ok is false when no record qualifies.
func (a *Accessor) LoadGeoJSON(spotID string, minute, walkM int, startTime string) (IsochroneRecord, bool) {
	candidates := a.isochronesBySpotStart[[2]string{spotID, startTime}]

	var best IsochroneRecord
	found := false
	for _, rec := range candidates {
		if rec.MaxMinute > minute || rec.MaxWalkM > walkM {
			continue
		}
		if !found || betterFallback(rec, best) {
			best = rec
			found = true
		}
	}
	return best, found
}

// betterFallback reports whether candidate is a tighter (closer to the
// requested ceiling) match than current: maximise MaxMinute first, then
// MaxWalkM.
func betterFallback(candidate, current IsochroneRecord) bool {
	if candidate.MaxMinute != current.MaxMinute {
		return candidate.MaxMinute > current.MaxMinute
	}
	return candidate.MaxWalkM > current.MaxWalkM
}

// LoadRoute returns the precomputed stored route for (from, to, startTime),
// if one exists.
func (a *Accessor) LoadRoute(from, to, startTime string) (StoredRoute, bool) {
	r, ok := a.storedRoutes[[3]string{from, to, startTime}]
	return r, ok
}
