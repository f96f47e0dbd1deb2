package detail

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	nextDataSelector = "script#__NEXT_DATA__"
	scoreSelector    = `[class*="score"], [class*="Score"], [data-testid*="score"]`
)

// Raw is the unparsed content of a detail page.
type Raw struct {
	NextData json.RawMessage `json:"next_data"`
	Scores   []string        `json:"scores_html"`
}

// ExtractRaw extracts the embedded document and score texts from html.
func ExtractRaw(html string) (Raw, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Raw{}, fmt.Errorf("%w: %w", ErrParse, err)
	}

	text := strings.TrimSpace(doc.Find(nextDataSelector).First().Text())
	if text == "" {
		return Raw{}, ErrNoNextData
	}
	if !json.Valid([]byte(text)) {
		return Raw{}, fmt.Errorf("%w: __NEXT_DATA__ is not valid JSON", ErrParse)
	}

	raw := Raw{NextData: json.RawMessage(text), Scores: []string{}}
	doc.Find(scoreSelector).Each(func(_ int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if strings.Contains(strings.ToLower(t), "score") {
			raw.Scores = append(raw.Scores, t)
		}
	})
	return raw, nil
}
