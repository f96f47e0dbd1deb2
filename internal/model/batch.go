package model

// ResultBatch is the payload of one search fetch for one tile.
//
// ListResults is the paginated subset for the requested page. MapResults
// is the service's claim of the full visible set for the tile and does
// not depend on the page. RelaxedResults holds near-matches outside the
// strict filter and is carried through unchanged.
type ResultBatch struct {
	ListResults    []Listing `json:"listResults"`
	MapResults     []Listing `json:"mapResults"`
	RelaxedResults []Listing `json:"relaxedResults,omitempty"`
}

// Empty reports whether the batch has no list or map results.
func (b ResultBatch) Empty() bool {
	return len(b.ListResults) == 0 && len(b.MapResults) == 0
}

// ManifestEntry is one row of the source-of-truth detail manifest.
type ManifestEntry struct {
	ZPID      string `json:"zpid"`
	DetailURL string `json:"detailUrl"`
}

// UnitKey implements crawler.Unit.
func (e ManifestEntry) UnitKey() string { return e.ZPID }

// UnitURL implements crawler.Unit.
func (e ManifestEntry) UnitURL() string { return e.DetailURL }
