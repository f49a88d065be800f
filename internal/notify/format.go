package notify

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"cian_bot/internal/model"
)

// descriptionLimit caps the listing description so the price terms stay
// visible without scrolling.
const descriptionLimit = 80

var prices = message.NewPrinter(language.English)

// FormatOffer renders an offer as a plain-text notification message.
func FormatOffer(offer model.Offer) string {
	var b strings.Builder

	b.WriteString(truncate(offer.Description, descriptionLimit))
	b.WriteString("...\n")
	b.WriteString(offer.FullURL)
	b.WriteString("\n\n")

	prices.Fprintf(&b, "%d %s\n", int64(offer.BargainTerms.Price), offer.BargainTerms.PaymentPeriod)
	if offer.BargainTerms.Deposit > 0 {
		prices.Fprintf(&b, "%d deposit\n", int64(offer.BargainTerms.Deposit))
	}
	fmt.Fprintf(&b, "%d/%d floor\n", offer.FloorNumber, offer.Building.FloorsCount)
	fmt.Fprintf(&b, "%d rooms; %s m²\n\n", offer.RoomsCount, offer.TotalArea)
	fmt.Fprintf(&b, "Creation date: %s", offer.CreationDate)

	return b.String()
}

// truncate cuts s to at most limit runes. Descriptions are usually Cyrillic,
// so a byte cut would split characters.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
