package fetcher

import "cian_bot/internal/config"

// The search endpoint takes a structured filter where every leaf is a typed
// term. These types mirror that wire shape.

type searchRequest struct {
	JSONQuery jsonQuery `json:"jsonQuery"`
}

type jsonQuery struct {
	Type          string `json:"_type"`
	Room          terms  `json:"room"`
	ForDay        term   `json:"for_day"`
	Price         rng    `json:"price"`
	FootMin       rng    `json:"foot_min"`
	OnlyFoot      term   `json:"only_foot"`
	EngineVersion term   `json:"engine_version"`
	Currency      term   `json:"currency"`
	Geo           geo    `json:"geo"`
	Page          term   `json:"page"`
}

type term struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type terms struct {
	Type  string `json:"type"`
	Value []int  `json:"value"`
}

type rng struct {
	Type  string   `json:"type"`
	Value rngValue `json:"value"`
}

type rngValue struct {
	LTE int `json:"lte"`
}

type geo struct {
	Type  string     `json:"type"`
	Value []geoValue `json:"value"`
}

type geoValue struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
}

// buildQuery assembles the fixed rental filter with the given page number.
// The page is the only field that varies between requests.
func buildQuery(sc config.SearchConfig, page int) searchRequest {
	return searchRequest{
		JSONQuery: jsonQuery{
			Type:          "flatrent",
			Room:          terms{Type: "terms", Value: sc.Rooms},
			ForDay:        term{Type: "term", Value: "!1"},
			Price:         rng{Type: "range", Value: rngValue{LTE: sc.MaxPrice}},
			FootMin:       rng{Type: "range", Value: rngValue{LTE: sc.MaxFootMinutes}},
			OnlyFoot:      term{Type: "term", Value: "2"},
			EngineVersion: term{Type: "term", Value: 2},
			Currency:      term{Type: "term", Value: 2},
			Geo: geo{Type: "geo", Value: []geoValue{
				{Type: "underground", ID: sc.MetroID},
			}},
			Page: term{Type: "term", Value: page},
		},
	}
}
