package datagen

import (
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"salesetl/internal/datasource/file"
	"salesetl/internal/logging"
)

// Options sizes the generated dataset.
type Options struct {
	Seed      uint64
	Customers int
	Employees int
	Stores    int
	Products  int

	// Years are the calendar years of the sales extracts, one file each.
	Years []int
	// TransactionsPerYear is the number of retail transactions per year;
	// each has between 1 and MaxLines lines.
	TransactionsPerYear int
	MaxLines            int

	// BulkBuyers customers get BulkLines extra lines each, spread over the
	// years, so that they exceed the non-retail threshold.
	BulkBuyers int
	BulkLines  int

	// DuplicateRate is the probability of repeating a written row.
	DuplicateRate float64
	// ShortTimeRate is the probability of a minute-only transaction time.
	ShortTimeRate float64
}

// DefaultOptions yields a dataset that runs in seconds and exercises every
// cleaning rule with the default non-retail threshold.
func DefaultOptions() Options {
	return Options{
		Seed:                42,
		Customers:           400,
		Employees:           30,
		Stores:              3,
		Products:            40,
		Years:               []int{2020, 2021, 2022},
		TransactionsPerYear: 2000,
		MaxLines:            3,
		BulkBuyers:          2,
		BulkLines:           1200,
		DuplicateRate:       0.01,
		ShortTimeRate:       0.3,
	}
}

func (o Options) validate() error {
	switch {
	case o.Customers <= 0, o.Employees <= 0, o.Stores <= 0, o.Products <= 0:
		return fmt.Errorf("datagen: entity counts must be positive")
	case len(o.Years) == 0:
		return fmt.Errorf("datagen: at least one year is required")
	case o.TransactionsPerYear < 0, o.BulkLines < 0:
		return fmt.Errorf("datagen: negative transaction counts")
	case o.MaxLines <= 0:
		return fmt.Errorf("datagen: max lines must be positive")
	case o.BulkBuyers > o.Customers:
		return fmt.Errorf("datagen: %d bulk buyers but only %d customers", o.BulkBuyers, o.Customers)
	}
	return nil
}

// Manifest lists the files written, relative to the raw directory, with
// their data row counts.
type Manifest struct {
	Files map[string]int
}

// Generator writes a raw dataset.
type Generator struct {
	opts   Options
	f      *Faker
	prices []float64 // retail price by product id - 1
	promo  []bool
}

// New returns a Generator for opts.
func New(opts Options) *Generator {
	return &Generator{opts: opts, f: NewFakerWithSeed(opts.Seed)}
}

// Write generates every raw file under dir using the default file names:
// customer.csv, employee.csv, store.csv, product.csv and sales/<year>.csv.
func (g *Generator) Write(ctx context.Context, dir string) (*Manifest, error) {
	if err := g.opts.validate(); err != nil {
		return nil, err
	}
	m := &Manifest{Files: map[string]int{}}
	steps := []struct {
		rel  string
		rows func() [][]string
	}{
		{"store.csv", g.stores},
		{"employee.csv", g.employees},
		{"customer.csv", g.customers},
		{"product.csv", g.products},
	}
	for _, s := range steps {
		if err := g.emit(ctx, dir, s.rel, s.rows(), m); err != nil {
			return nil, err
		}
	}

	bulk := g.bulkSchedule()
	for i, year := range g.opts.Years {
		rel := filepath.Join("sales", strconv.Itoa(year)+".csv")
		if err := g.emit(ctx, dir, rel, g.sales(year, bulk[i]), m); err != nil {
			return nil, err
		}
	}
	logging.Info().Str("dir", dir).Int("files", len(m.Files)).Uint64("seed", g.opts.Seed).Msg("raw dataset generated")
	return m, nil
}

func (g *Generator) emit(ctx context.Context, dir, rel string, rows [][]string, m *Manifest) (err error) {
	w, err := file.NewLocal(filepath.Join(dir, rel)).Create(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	m.Files[filepath.ToSlash(rel)] = len(rows) - 1
	return nil
}

// withDefects appends duplicates of random rows and, when blank is set, one
// all-empty row.
func (g *Generator) withDefects(rows [][]string, blank bool) [][]string {
	n := len(rows)
	for i := 1; i < n; i++ {
		if g.f.Chance(g.opts.DuplicateRate) {
			rows = append(rows, rows[i])
		}
	}
	if blank && n > 0 {
		rows = append(rows, make([]string, len(rows[0])))
	}
	return rows
}

func year(y int) time.Time { return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC) }

func (g *Generator) stores() [][]string {
	rows := [][]string{{
		"store_id", "store_type", "store_square_feet", "store_address", "store_city",
		"store_state_province", "store_postal_code", "store_longitude", "store_latitude",
		"manager", "Neighorhood",
	}}
	for id := 1; id <= g.opts.Stores; id++ {
		rows = append(rows, []string{
			strconv.Itoa(id),
			g.f.Pick("retail", "flagship", "warehouse"),
			strconv.Itoa(g.f.Between(500, 2000)),
			g.f.Street(), g.f.City(), g.f.State(), g.f.Zip(),
			g.f.Longitude(), g.f.Latitude(),
			strconv.Itoa(g.f.Between(1, g.opts.Employees)),
			g.f.Word(),
		})
	}
	return g.withDefects(rows, false)
}

func (g *Generator) employees() [][]string {
	rows := [][]string{{"staff_id", "first_name", "last_name", "position", "start_date", "location"}}
	for id := 1; id <= g.opts.Employees; id++ {
		rows = append(rows, []string{
			strconv.Itoa(id),
			g.f.FirstName(), g.f.LastName(),
			g.f.Pick("Barista", "Store Manager", "Assistant Manager", "Roaster", "Coffee Wrangler"),
			g.f.Date(year(2015), year(2019)),
			strconv.Itoa(g.f.Between(1, g.opts.Stores)),
		})
	}
	return g.withDefects(rows, true)
}

func (g *Generator) customers() [][]string {
	rows := [][]string{{
		"customer_id", "home_store", "customer_first-name", "customer_email",
		"customer_since", "loyalty_card_number", "birthdate", "gender",
	}}
	for id := 1; id <= g.opts.Customers; id++ {
		rows = append(rows, []string{
			strconv.Itoa(id),
			strconv.Itoa(g.f.Between(1, g.opts.Stores)),
			g.f.FirstName(),
			g.f.Email(),
			g.f.Date(year(2017), year(2020)),
			fmt.Sprintf("%03d-%03d-%04d", g.f.Between(100, 999), g.f.Between(100, 999), g.f.Between(0, 9999)),
			g.f.Date(year(1950), year(2004)),
			g.f.Pick("F", "M", "M", "F", "Not Specified"),
		})
	}
	return g.withDefects(rows, true)
}

func (g *Generator) products() [][]string {
	rows := [][]string{{
		"product_id", "product_group", "product_category", "product_type", "product",
		"product_description", "unit_of_measure", "current_wholesale_price",
		"current_retail_price", "tax_exempt_yn", "promo_yn", "new_product_yn", "current_cost",
	}}
	g.prices = make([]float64, g.opts.Products)
	g.promo = make([]bool, g.opts.Products)
	for id := 1; id <= g.opts.Products; id++ {
		group := g.f.Pick("Beverages", "Food", "Merchandise", "Whole Bean/Teas")
		retail := g.f.Price(1.5, 12)
		wholesale := float64(int(retail*55)) / 100
		cost := float64(int(retail*30)) / 100
		g.prices[id-1] = retail
		g.promo[id-1] = g.f.Chance(0.1)
		rows = append(rows, []string{
			strconv.Itoa(id),
			group,
			g.f.Pick("Coffee", "Tea", "Bakery", "Drinking Chocolate", "Packaged Chocolate"),
			g.f.Word(),
			g.f.ProductName(),
			g.f.Sentence(),
			g.f.Pick("12 oz", "16 oz", "each", "lb"),
			strconv.FormatFloat(wholesale, 'f', 2, 64),
			strconv.FormatFloat(retail, 'f', 2, 64),
			flag(group == "Food"),
			flag(g.promo[id-1]),
			flag(g.f.Chance(0.05)),
			strconv.FormatFloat(cost, 'f', 2, 64),
		})
	}
	return g.withDefects(rows, false)
}

// bulkSchedule spreads the bulk lines of each bulk buyer over the years and
// returns, per year, the buyer of every extra line.
func (g *Generator) bulkSchedule() [][]int {
	out := make([][]int, len(g.opts.Years))
	for b := 1; b <= g.opts.BulkBuyers; b++ {
		for n := 0; n < g.opts.BulkLines; n++ {
			y := n % len(g.opts.Years)
			out[y] = append(out[y], b)
		}
	}
	return out
}

func (g *Generator) sales(y int, bulk []int) [][]string {
	rows := [][]string{{
		"transaction_id", "transaction_date", "transaction_time", "sales_outlet_id",
		"staff_id", "customer_id", "instore_yn", "order", "line_item_id", "product_id",
		"quantity_sold", "line_item_amount", "unit_price", "promo_item_yn",
	}}
	start, end := year(y), year(y+1).Add(-24*time.Hour)
	txn := 0
	transaction := func(customer string, lines int) {
		txn++
		date, clock := g.f.Date(start, end), g.f.Clock(g.opts.ShortTimeRate)
		store := strconv.Itoa(g.f.Between(1, g.opts.Stores))
		staff := strconv.Itoa(g.f.Between(1, g.opts.Employees))
		for line := 1; line <= lines; line++ {
			p := g.f.Between(1, g.opts.Products)
			qty := g.f.Between(1, 3)
			price := g.prices[p-1]
			rows = append(rows, []string{
				strconv.Itoa(txn), date, clock, store, staff, customer,
				g.f.Pick("Y", "N"), "1", strconv.Itoa(line), strconv.Itoa(p),
				strconv.Itoa(qty),
				CommaDecimal(price * float64(qty)),
				CommaDecimal(price),
				flag(g.promo[p-1]),
			})
		}
	}

	// Bulk buyers take customer ids 1..BulkBuyers.
	for i := 0; i < g.opts.TransactionsPerYear; i++ {
		c := g.f.Between(g.opts.BulkBuyers+1, max(g.opts.Customers, g.opts.BulkBuyers+1))
		customer := strconv.Itoa(c)
		if g.f.Chance(0.005) {
			customer = ""
		}
		transaction(customer, g.f.Between(1, g.opts.MaxLines))
	}
	for len(bulk) > 0 {
		n := min(len(bulk), 10)
		// Lines of one bulk transaction share a buyer.
		j := 1
		for j < n && bulk[j] == bulk[0] {
			j++
		}
		transaction(strconv.Itoa(bulk[0]), j)
		bulk = bulk[j:]
	}
	return g.withDefects(rows, false)
}
