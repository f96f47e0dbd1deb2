package model

import (
	"encoding/json"
	"strings"
)

// BaseURL is the listing service origin used to make relative detail URLs absolute.
const BaseURL = "https://www.zillow.com"

// HomeInfo is the nested block some result shapes use to carry the zpid.
type HomeInfo struct {
	ZPID Identifier `json:"zpid"`
}

// HdpData wraps HomeInfo in map results.
type HdpData struct {
	HomeInfo *HomeInfo `json:"homeInfo"`
}

// Listing is one property record from a search result array.
//
// Only the fields the crawler reasons about are decoded. The complete
// payload received from the service is retained and reproduced verbatim
// by MarshalJSON.
type Listing struct {
	ZPID      Identifier `json:"zpid,omitempty"`
	ID        Identifier `json:"id,omitempty"`
	DetailURL string     `json:"detailUrl,omitempty"`
	HdpData   *HdpData   `json:"hdpData,omitempty"`

	raw json.RawMessage
}

// listingFields is Listing without its methods, used to avoid recursion.
type listingFields Listing

// ParseListing decodes a single listing payload.
func ParseListing(data []byte) (Listing, error) {
	var l Listing
	if err := json.Unmarshal(data, &l); err != nil {
		return Listing{}, err
	}
	return l, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var f listingFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*l = Listing(f)
	l.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler. A listing decoded from the
// service is written back exactly as received.
func (l Listing) MarshalJSON() ([]byte, error) {
	if len(l.raw) > 0 {
		return l.raw, nil
	}
	return json.Marshal(listingFields(l))
}

// Identity returns the listing's normalized identifier following the
// resolution order zpid, id, hdpData.homeInfo.zpid. ok is false when the
// listing carries no identifier at all.
func (l Listing) Identity() (id string, ok bool) {
	switch {
	case !l.ZPID.Empty():
		return l.ZPID.String(), true
	case !l.ID.Empty():
		return l.ID.String(), true
	case l.HdpData != nil && l.HdpData.HomeInfo != nil && !l.HdpData.HomeInfo.ZPID.Empty():
		return l.HdpData.HomeInfo.ZPID.String(), true
	}
	return "", false
}

// AbsoluteDetailURL returns DetailURL resolved against BaseURL when relative.
func (l Listing) AbsoluteDetailURL() string {
	return AbsoluteURL(l.DetailURL)
}

// AbsoluteURL resolves a root-relative service path against BaseURL.
func AbsoluteURL(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "/") {
		return BaseURL + u
	}
	return u
}
