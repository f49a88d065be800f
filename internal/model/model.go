// Package model defines the domain types used across the application.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Offer is a single rental listing as projected from the search API.
// It is immutable once fetched.
type Offer struct {
	ID           int64        `json:"id"`
	RoomsCount   int          `json:"roomsCount"`
	TotalArea    string       `json:"totalArea"`
	CreationDate string       `json:"creationDate"`
	IsNew        bool         `json:"isNew"`
	FloorNumber  int          `json:"floorNumber"`
	Building     Building     `json:"building"`
	FullURL      string       `json:"fullUrl"`
	Phones       []Phone      `json:"phones"`
	BargainTerms BargainTerms `json:"bargainTerms"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
}

// Building holds the building metadata attached to an offer.
type Building struct {
	FloorsCount int `json:"floorsCount"`
}

// Phone is a contact number attached to an offer.
type Phone struct {
	CountryCode string `json:"countryCode"`
	Number      string `json:"number"`
}

// BargainTerms holds the price terms of an offer. Deposit is zero when the
// listing requires none.
type BargainTerms struct {
	Price         float64 `json:"price"`
	PaymentPeriod string  `json:"paymentPeriod"`
	Deposit       float64 `json:"deposit"`
	Currency      string  `json:"currency"`
}

// Fingerprint returns a stable identity for the offer computed over the
// entire projected record, so any attribute change makes the offer count as
// new again. Used as the membership key in the known-offer store.
func (o Offer) Fingerprint() string {
	data, err := json.Marshal(o)
	if err != nil {
		// A plain value struct cannot fail to marshal; keep a
		// deterministic fallback anyway.
		data = fmt.Appendf(nil, "offer:%d", o.ID)
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
