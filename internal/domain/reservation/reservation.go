// Package reservation holds the hotel's documented pricing and display rules.
// Journeys use it to derive expected values; the fixture site uses it to
// render them.
package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DateLayout   = "2006/01/02"
	AddOnPrice   = 1000
	MaxNights    = 9
	MaxHeadCount = 9

	// weekendRate is the surcharge for Saturday and Sunday nights, in percent.
	weekendRate = 125
)

var (
	ErrInvalidNights    = errors.New("nights must be between 1 and 9")
	ErrInvalidHeadCount = errors.New("head count must be between 1 and 9")
	ErrInvalidDate      = errors.New("date must be YYYY/MM/DD")
)

type Plan struct {
	ID          int
	Name        string
	Price       int
	PremiumOnly bool
}

var Plans = []Plan{
	{ID: 0, Name: "お得な特典付きプラン", Price: 7000},
	{ID: 1, Name: "プレミアムプラン", Price: 10000, PremiumOnly: true},
	{ID: 2, Name: "ディナー付きプラン", Price: 10000},
	{ID: 3, Name: "素泊まり", Price: 6000},
}

const PremiumHeader = "❤️プレミアム会員限定❤️"

func PlanByID(id int) (Plan, bool) {
	for _, p := range Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

type AddOns struct {
	Breakfast    bool
	EarlyCheckIn bool
	Sightseeing  bool
}

func (a AddOns) Labels() []string {
	var labels []string
	if a.Breakfast {
		labels = append(labels, "朝食バイキング")
	}
	if a.EarlyCheckIn {
		labels = append(labels, "昼からチェックインプラン")
	}
	if a.Sightseeing {
		labels = append(labels, "お得な観光プラン")
	}
	return labels
}

type Request struct {
	Plan      Plan
	Start     time.Time
	Nights    int
	HeadCount int
	AddOns    AddOns
}

func (r Request) Validate() error {
	if r.Nights < 1 || r.Nights > MaxNights {
		return ErrInvalidNights
	}
	if r.HeadCount < 1 || r.HeadCount > MaxHeadCount {
		return ErrInvalidHeadCount
	}
	return nil
}

func (r Request) End() time.Time {
	return r.Start.AddDate(0, 0, r.Nights)
}

// Total is the bill: per night, the per-person price (25% more on Saturday
// and Sunday) times head count, plus add-ons. Breakfast is charged per person
// per night, early check-in and sightseeing once per person.
func Total(r Request) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	total := 0
	for i := 0; i < r.Nights; i++ {
		price := r.Plan.Price
		if IsWeekend(r.Start.AddDate(0, 0, i)) {
			price = price * weekendRate / 100
		}
		total += price * r.HeadCount
	}

	if r.AddOns.Breakfast {
		total += AddOnPrice * r.HeadCount * r.Nights
	}
	if r.AddOns.EarlyCheckIn {
		total += AddOnPrice * r.HeadCount
	}
	if r.AddOns.Sightseeing {
		total += AddOnPrice * r.HeadCount
	}
	return total, nil
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Term renders the stay as shown on the confirmation page, e.g.
// "2020年8月6日 〜 2020年8月9日 3泊".
func Term(start time.Time, nights int) string {
	end := start.AddDate(0, 0, nights)
	return fmt.Sprintf("%s 〜 %s %d泊", japaneseDate(start), japaneseDate(end), nights)
}

func japaneseDate(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
}

var yenPrinter = message.NewPrinter(language.Japanese)

func FormatYen(amount int) string {
	return yenPrinter.Sprintf("%d円", amount)
}

func FormatHeadCount(n int) string {
	return fmt.Sprintf("%d名様", n)
}
