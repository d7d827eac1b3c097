package pipeline

import (
	"sort"
	"time"

	"salesetl/internal/schema"
	"salesetl/internal/table"
	"salesetl/internal/transformer"
	"salesetl/internal/transformer/builtin"
)

// Entity describes how one dimension table is cleaned: the raw columns it
// needs, placeholder replacements, the rename to canonical names, derived
// columns and the output schema.
type Entity struct {
	Raw     schema.Schema
	Out     schema.Schema
	// Replace maps a column to its placeholder replacements.
	Replace map[string]map[string]string
	Rename  map[string]string
	// Derive runs after Rename, before the final projection.
	Derive []transformer.Transformer
	// Path is the output location relative to the output directory.
	Path string
}

// Normalize cleans raw. Rows with any null are dropped, then exact duplicate
// rows are dropped keeping the first, and the result is sorted by id.
func (e Entity) Normalize(raw *table.Table, f *Findings) (*table.Table, error) {
	name := e.Raw.Name
	chain := transformer.Chain{
		builtin.Require{Table: name, Fields: e.Raw.Names()},
		builtin.Select{Fields: e.Raw.Names()},
		builtin.Normalize{},
	}
	for _, c := range sortedKeys(e.Replace) {
		chain = append(chain, builtin.Normalize{Columns: []string{c}, Replace: e.Replace[c]})
	}
	chain = append(chain,
		builtin.Coerce{Table: name, Fields: e.Raw.Fields},
		builtin.DropNulls{OnDrop: f.nulls(name)},
		builtin.DeDup{Table: name, OnDuplicate: f.duplicate},
		builtin.Rename{Mapping: e.Rename},
	)
	chain = append(chain, e.Derive...)
	chain = append(chain,
		builtin.Select{Fields: e.Out.Names()},
		builtin.Sort{Keys: []table.SortKey{table.Asc("id")}},
		builtin.Conform{Schema: e.Out},
	)
	return chain.Apply(raw)
}

// CustomerEntity derives age as referenceYear minus the birth year and maps
// the "Not Specified" gender to "na".
func CustomerEntity(referenceYear int) Entity {
	return Entity{
		Raw:     schema.RawCustomer,
		Out:     schema.Customer,
		Replace: map[string]map[string]string{"gender": {"Not Specified": "na"}},
		Rename: map[string]string{
			"customer_id":    "id",
			"home_store":     "store",
			"customer_since": "since",
		},
		Derive: []transformer.Transformer{
			transformer.Func(func(t *table.Table) (*table.Table, error) {
				return t.Derive("age", table.Int, func(r table.Row) (any, error) {
					b, ok := r.Get("birthdate").(time.Time)
					if !ok {
						return nil, nil
					}
					return int64(referenceYear - b.Year()), nil
				})
			}),
		},
		Path: "data/customer.csv",
	}
}

var EmployeeEntity = Entity{
	Raw: schema.RawEmployee,
	Out: schema.Employee,
	Rename: map[string]string{
		"staff_id":   "id",
		"start_date": "onboard",
	},
	Path: "data/employee.csv",
}

var StoreEntity = Entity{
	Raw: schema.RawStore,
	Out: schema.Store,
	Rename: map[string]string{
		"store_id":          "id",
		"store_type":        "type",
		"store_square_feet": "square_feet",
		"store_longitude":   "longitude",
		"store_latitude":    "latitude",
	},
	Path: "data/store.csv",
}

var ProductEntity = Entity{
	Raw: schema.RawProduct,
	Out: schema.Product,
	Rename: map[string]string{
		"product_id":              "id",
		"product_group":           "group",
		"product_category":        "category",
		"product_type":            "type",
		"product":                 "name",
		"unit_of_measure":         "unit",
		"current_cost":            "cost",
		"current_wholesale_price": "wholesale",
		"current_retail_price":    "retail",
		"tax_exempt_yn":           "is_tax_exempt",
		"promo_yn":                "is_promo",
		"new_product_yn":          "is_new",
	},
	Path: "data/product.csv",
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
