package detail

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/joshuawang25532/MLLM-Housing/internal/model"
)

// Record is a parsed listing detail page.
type Record struct {
	Metadata  Metadata        `json:"metadata"`
	BasicInfo BasicInfo       `json:"basic_info"`
	Scores    []string        `json:"scores_html"`
	NextData  json.RawMessage `json:"next_data"`
}

// Metadata describes where and when a record was scraped.
type Metadata struct {
	ZPID       string    `json:"zpid,omitempty"`
	URL        string    `json:"url"`
	ScrapedURL string    `json:"scraped_url"`
	ScrapedAt  time.Time `json:"scraped_at"`
}

// BasicInfo holds the property facts found in the page's client cache.
type BasicInfo struct {
	ZPID       model.Identifier `json:"zpid,omitempty"`
	Address    string           `json:"address,omitempty"`
	City       string           `json:"city,omitempty"`
	State      string           `json:"state,omitempty"`
	Zipcode    string           `json:"zipcode,omitempty"`
	Price      float64          `json:"price,omitempty"`
	Bedrooms   float64          `json:"bedrooms,omitempty"`
	Bathrooms  float64          `json:"bathrooms,omitempty"`
	LivingArea float64          `json:"living_area,omitempty"`
	YearBuilt  int              `json:"year_built,omitempty"`
	HomeType   string           `json:"home_type,omitempty"`
	HomeStatus string           `json:"home_status,omitempty"`
	Latitude   float64          `json:"latitude,omitempty"`
	Longitude  float64          `json:"longitude,omitempty"`
}

// nextData is the path to the client cache inside __NEXT_DATA__.
type nextData struct {
	Props struct {
		PageProps struct {
			ComponentProps struct {
				GdpClientCache string `json:"gdpClientCache"`
			} `json:"componentProps"`
		} `json:"pageProps"`
	} `json:"props"`
}

// cacheProperty is one entry of the client cache.
type cacheProperty struct {
	Property *struct {
		ZPID    model.Identifier `json:"zpid"`
		Address struct {
			StreetAddress string `json:"streetAddress"`
			City          string `json:"city"`
			State         string `json:"state"`
			Zipcode       string `json:"zipcode"`
		} `json:"address"`
		Price      float64 `json:"price"`
		Bedrooms   float64 `json:"bedrooms"`
		Bathrooms  float64 `json:"bathrooms"`
		LivingArea float64 `json:"livingArea"`
		YearBuilt  int     `json:"yearBuilt"`
		HomeType   string  `json:"homeType"`
		HomeStatus string  `json:"homeStatus"`
		Latitude   float64 `json:"latitude"`
		Longitude  float64 `json:"longitude"`
	} `json:"property"`
}

// Parse builds a Record from raw. url is the requested URL and scrapedURL
// the URL the browser ended on. A page whose client cache is missing or
// unreadable still parses; its BasicInfo is left empty.
func Parse(raw Raw, url, scrapedURL string, now time.Time) (Record, error) {
	var nd nextData
	if err := json.Unmarshal(raw.NextData, &nd); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrParse, err)
	}

	rec := Record{
		Metadata: Metadata{
			URL:        url,
			ScrapedURL: scrapedURL,
			ScrapedAt:  now.UTC(),
		},
		Scores:   raw.Scores,
		NextData: raw.NextData,
	}
	if rec.Scores == nil {
		rec.Scores = []string{}
	}

	if cache := nd.Props.PageProps.ComponentProps.GdpClientCache; cache != "" {
		rec.BasicInfo = basicInfo(cache)
	}
	rec.Metadata.ZPID = rec.BasicInfo.ZPID.String()
	return rec, nil
}

func basicInfo(cache string) BasicInfo {
	var entries map[string]cacheProperty
	if err := json.Unmarshal([]byte(cache), &entries); err != nil {
		return BasicInfo{}
	}
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		p := entries[key].Property
		if p == nil || p.ZPID.Empty() {
			continue
		}
		return BasicInfo{
			ZPID:       p.ZPID,
			Address:    p.Address.StreetAddress,
			City:       p.Address.City,
			State:      p.Address.State,
			Zipcode:    p.Address.Zipcode,
			Price:      p.Price,
			Bedrooms:   p.Bedrooms,
			Bathrooms:  p.Bathrooms,
			LivingArea: p.LivingArea,
			YearBuilt:  p.YearBuilt,
			HomeType:   p.HomeType,
			HomeStatus: p.HomeStatus,
			Latitude:   p.Latitude,
			Longitude:  p.Longitude,
		}
	}
	return BasicInfo{}
}
