package merge

import "github.com/joshuawang25532/MLLM-Housing/internal/model"

// Dedupe removes repeated listings, by identity, from each result array
// of b. The arrays are handled independently and order is preserved.
func Dedupe(b model.ResultBatch) model.ResultBatch {
	return model.ResultBatch{
		ListResults:    dedupeListings(b.ListResults),
		MapResults:     dedupeListings(b.MapResults),
		RelaxedResults: dedupeListings(b.RelaxedResults),
	}
}

// Merge combines the batches fetched for one tile.
//
// The first batch is the baseline: its map and relaxed results are taken
// as the tile's full visible set. Every batch contributes its list
// results, concatenated in order. The concatenation is deduplicated once
// at the end.
func Merge(batches []model.ResultBatch) model.ResultBatch {
	if len(batches) == 0 {
		return model.ResultBatch{}
	}

	total := 0
	for _, b := range batches {
		total += len(b.ListResults)
	}

	merged := model.ResultBatch{
		ListResults:    make([]model.Listing, 0, total),
		MapResults:     batches[0].MapResults,
		RelaxedResults: batches[0].RelaxedResults,
	}
	for _, b := range batches {
		merged.ListResults = append(merged.ListResults, b.ListResults...)
	}
	return Dedupe(merged)
}

// Identities returns the distinct identifiers present in listings, in
// first-seen order.
func Identities(listings []model.Listing) []string {
	seen := make(map[string]struct{}, len(listings))
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		id, ok := l.Identity()
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func dedupeListings(listings []model.Listing) []model.Listing {
	if listings == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(listings))
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		id, ok := l.Identity()
		if ok {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		out = append(out, l)
	}
	return out
}
