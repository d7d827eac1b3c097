// Package datagen writes a synthetic raw dataset in the shape of the coffee
// shop extracts the pipeline consumes, including the defects the normalizers
// exist to repair: duplicated rows, empty rows, "Not Specified" genders,
// comma decimal prices, minute-only times, the sales_outlet_id header and a
// handful of bulk (non-retail) buyers.
package datagen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"salesetl/internal/schema"
)

// Faker wraps gofakeit with the few generators the dataset needs.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFakerWithSeed creates a Faker with a fixed seed for reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{faker: gofakeit.New(seed)}
}

// Between returns an int in [lo, hi].
func (f *Faker) Between(lo, hi int) int { return f.faker.IntRange(lo, hi) }

// Chance reports true with probability p.
func (f *Faker) Chance(p float64) bool { return f.faker.Float64Range(0, 1) < p }

// Pick returns one of opts.
func (f *Faker) Pick(opts ...string) string { return f.faker.RandomString(opts) }

// Date returns a date in [start, end] formatted the way the extracts do.
func (f *Faker) Date(start, end time.Time) string {
	return f.faker.DateRange(start, end).Format(schema.DateLayout)
}

// Price returns a price with two decimals in [lo, hi].
func (f *Faker) Price(lo, hi float64) float64 {
	return float64(int(f.faker.Price(lo, hi)*100)) / 100
}

func (f *Faker) FirstName() string   { return f.faker.FirstName() }
func (f *Faker) LastName() string    { return f.faker.LastName() }
func (f *Faker) Email() string       { return f.faker.Email() }
func (f *Faker) Street() string      { return f.faker.Street() }
func (f *Faker) City() string        { return f.faker.City() }
func (f *Faker) State() string       { return f.faker.StateAbr() }
func (f *Faker) Zip() string         { return f.faker.Zip() }
func (f *Faker) Word() string        { return f.faker.Word() }
func (f *Faker) ProductName() string { return f.faker.ProductName() }
func (f *Faker) Sentence() string    { return f.faker.Sentence(6) }

// Longitude and Latitude are rounded to six decimals.
func (f *Faker) Longitude() string { return strconv.FormatFloat(f.faker.Longitude(), 'f', 6, 64) }
func (f *Faker) Latitude() string  { return strconv.FormatFloat(f.faker.Latitude(), 'f', 6, 64) }

// Clock returns a time of day during opening hours. Short forms ("7:05")
// appear with probability short; otherwise seconds are included.
func (f *Faker) Clock(short float64) string {
	h, m := f.Between(6, 20), f.Between(0, 59)
	if f.Chance(short) {
		return fmt.Sprintf("%d:%02d", h, m)
	}
	return fmt.Sprintf("%d:%02d:%02d", h, m, f.Between(0, 59))
}

// CommaDecimal renders v with a comma decimal separator, e.g. "2,45".
func CommaDecimal(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}

func flag(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
