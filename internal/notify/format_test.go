package notify

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cian_bot/internal/model"
)

func sampleOffer() model.Offer {
	return model.Offer{
		ID:           1,
		RoomsCount:   2,
		TotalArea:    "45.5",
		CreationDate: "2021-05-01T10:00:00",
		FloorNumber:  5,
		Building:     model.Building{FloorsCount: 10},
		FullURL:      "https://example.test/rent/flat/1/",
		BargainTerms: model.BargainTerms{Price: 110000, PaymentPeriod: "monthly", Deposit: 55000, Currency: "rur"},
		Title:        "2-room apartment",
		Description:  "Bright two-room apartment near the metro with a renovated kitchen and a balcony overlooking the park.",
	}
}

func TestFormatOffer(t *testing.T) {
	got := FormatOffer(sampleOffer())

	want := "Bright two-room apartment near the metro with a renovated kitchen and a balcony ...\n" +
		"https://example.test/rent/flat/1/\n\n" +
		"110,000 monthly\n" +
		"55,000 deposit\n" +
		"5/10 floor\n" +
		"2 rooms; 45.5 m²\n\n" +
		"Creation date: 2021-05-01T10:00:00"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatOfferNoDeposit(t *testing.T) {
	offer := sampleOffer()
	offer.BargainTerms.Deposit = 0

	got := FormatOffer(offer)
	if strings.Contains(got, "deposit") {
		t.Errorf("message should omit the deposit line:\n%s", got)
	}
}

func TestFormatOfferShortDescription(t *testing.T) {
	offer := sampleOffer()
	offer.Description = "Tiny."

	got := FormatOffer(offer)
	if !strings.HasPrefix(got, "Tiny....\n") {
		t.Errorf("short description should be kept whole, got:\n%s", got)
	}
}

func TestTruncateMultibyte(t *testing.T) {
	// 100 Cyrillic runes; a byte-based cut would split a character.
	s := strings.Repeat("квартира №", 10)

	got := truncate(s, 80)
	if n := len([]rune(got)); n != 80 {
		t.Errorf("got %d runes, want 80", n)
	}
	if !strings.HasPrefix(s, got) {
		t.Error("truncation should be a prefix of the input")
	}
}
