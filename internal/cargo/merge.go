package cargo

// MergeFlights reconciles freshly parsed flights against a previously known
// set. Both sides are keyed by (flightNumber, eta, boardingPoint). Flights
// unique to either side survive untouched; on a key collision the incoming
// record's fields win, except the ULD list, where the longer side is kept in
// full. ULD lists are never interleaved or deduplicated at the ULD level.
//
// The base order is preserved; flights new to the incoming set are appended
// in their discovery order.
func MergeFlights(base, incoming []Flight) []Flight {
	merged := make([]Flight, len(base))
	copy(merged, base)

	index := make(map[string]int, len(merged))
	for i := range merged {
		index[merged[i].Key()] = i
	}

	for _, in := range incoming {
		i, ok := index[in.Key()]
		if !ok {
			index[in.Key()] = len(merged)
			merged = append(merged, in)
			continue
		}
		merged[i] = MergeFlight(merged[i], in)
	}
	return merged
}

// MergeFlight merges one incoming flight into a known flight with the same
// identity key. Incoming fields win; the longer ULD list is kept whole and
// ULDCount is recomputed from it.
func MergeFlight(known, incoming Flight) Flight {
	out := incoming
	if len(known.ULDs) > len(incoming.ULDs) {
		out.ULDs = known.ULDs
	}
	out.ULDCount = len(out.ULDs)
	return out
}
