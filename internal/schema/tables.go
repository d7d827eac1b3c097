package schema

import "salesetl/internal/table"

func f(name string, t table.Type) Field { return Field{Name: name, Type: t} }

func date(name string) Field { return Field{Name: name, Type: table.Date, Layout: DateLayout} }

// Raw input schemas. Types are the coercion targets; Bool fields are Y/N
// flags and Float fields accept a comma decimal separator. Extra raw columns
// are ignored.
var (
	RawCustomer = Schema{Name: "customer", Fields: []Field{
		f("customer_id", table.Int),
		f("home_store", table.Int),
		date("customer_since"),
		date("birthdate"),
		f("gender", table.String),
	}}

	RawEmployee = Schema{Name: "employee", Fields: []Field{
		f("staff_id", table.Int),
		f("position", table.String),
		date("start_date"),
		f("location", table.Int),
	}}

	RawStore = Schema{Name: "store", Fields: []Field{
		f("store_id", table.Int),
		f("store_type", table.String),
		f("store_square_feet", table.Int),
		f("store_longitude", table.Float),
		f("store_latitude", table.Float),
	}}

	RawProduct = Schema{Name: "product", Fields: []Field{
		f("product_id", table.Int),
		f("product_group", table.String),
		f("product_category", table.String),
		f("product_type", table.String),
		f("product", table.String),
		f("unit_of_measure", table.String),
		f("current_cost", table.Float),
		f("current_wholesale_price", table.Float),
		f("current_retail_price", table.Float),
		f("tax_exempt_yn", table.Bool),
		f("promo_yn", table.Bool),
		f("new_product_yn", table.Bool),
	}}

	// RawSales keeps date and time as text; they are repaired and combined
	// into a single timestamp by the sales stage.
	RawSales = Schema{Name: "sales", Fields: []Field{
		f("transaction_id", table.Int),
		f("transaction_date", table.String),
		f("transaction_time", table.String),
		f("store_id", table.Int),
		f("staff_id", table.Int),
		f("customer_id", table.Int),
		f("product_id", table.Int),
		f("quantity_sold", table.Int),
		f("unit_price", table.Float),
		f("promo_item_yn", table.Bool),
	}}
)

// RawSalesAliases maps alternative raw header names to RawSales names.
var RawSalesAliases = map[string]string{
	"sales_outlet_id": "store_id",
}

// Output schemas.
var (
	Customer = Schema{Name: "customer", Fields: []Field{
		f("id", table.Int),
		f("store", table.Int),
		f("since", table.Date),
		f("gender", table.String),
		f("age", table.Int),
	}}

	Employee = Schema{Name: "employee", Fields: []Field{
		f("id", table.Int),
		f("position", table.String),
		f("onboard", table.Date),
		f("location", table.Int),
	}}

	Store = Schema{Name: "store", Fields: []Field{
		f("id", table.Int),
		f("type", table.String),
		f("square_feet", table.Int),
		f("longitude", table.Float),
		f("latitude", table.Float),
	}}

	Product = Schema{Name: "product", Fields: []Field{
		f("id", table.Int),
		f("group", table.String),
		f("category", table.String),
		f("type", table.String),
		f("name", table.String),
		f("unit", table.String),
		f("cost", table.Float),
		f("wholesale", table.Float),
		f("retail", table.Float),
		f("is_tax_exempt", table.Bool),
		f("is_promo", table.Bool),
		f("is_new", table.Bool),
	}}

	Sales = Schema{Name: "sales", Fields: []Field{
		f("id", table.Int),
		f("store_id", table.Int),
		f("staff_id", table.Int),
		f("customer_id", table.Int),
		f("product_id", table.Int),
		f("quantity", table.Int),
		f("price", table.Float),
		f("is_promo", table.Bool),
		f("time", table.Datetime),
	}}

	// OrderLines is a re-identified partition; columns are alphabetical
	// with the synthetic order id first.
	OrderLines = Schema{Name: "order_lines", Fields: []Field{
		f("id", table.Int),
		f("customer_id", table.Int),
		f("is_promo", table.Bool),
		f("price", table.Float),
		f("product_id", table.Int),
		f("quantity", table.Int),
		f("staff_id", table.Int),
		f("store_id", table.Int),
		f("time", table.Datetime),
	}}

	NonRetail = Schema{Name: "non_retail", Fields: []Field{
		f("customer_id", table.Int),
		f("count", table.Int),
	}}

	TotalByOrder = Schema{Name: "total_by_order", Fields: []Field{
		f("id", table.Int),
		f("customer_id", table.Int),
		f("store_id", table.Int),
		f("time", table.Datetime),
		f("quantity", table.Int),
		f("total", table.Float),
	}}

	TotalByCustomer = Schema{Name: "total_by_customer", Fields: []Field{
		f("customer_id", table.Int),
		f("store", table.Int),
		f("gender", table.String),
		f("age", table.Int),
		f("since", table.Date),
		f("quantity", table.Int),
		f("total", table.Float),
	}}

	TotalByProduct = Schema{Name: "total_by_product", Fields: []Field{
		f("product_id", table.Int),
		f("group", table.String),
		f("category", table.String),
		f("type", table.String),
		f("name", table.String),
		f("cost", table.Float),
		f("wholesale", table.Float),
		f("retail", table.Float),
		f("quantity", table.Int),
		f("total", table.Float),
	}}

	TotalByStore = Schema{Name: "total_by_store", Fields: []Field{
		f("store_id", table.Int),
		f("type", table.String),
		f("square_feet", table.Int),
		f("longitude", table.Float),
		f("latitude", table.Float),
		f("quantity", table.Int),
		f("total", table.Float),
	}}

	OrderByDate = Schema{Name: "order_by_date", Fields: []Field{
		f("date", table.Date),
		f("orders", table.Int),
		f("quantity", table.Int),
		f("total", table.Float),
	}}

	OrderByMonth = Schema{Name: "order_by_month", Fields: []Field{
		f("month", table.Date),
		f("orders", table.Int),
		f("quantity", table.Int),
		f("total", table.Float),
	}}

	RFM = Schema{Name: "rfm", Fields: []Field{
		f("customer_id", table.Int),
		f("recency", table.Int),
		f("frequency", table.Int),
		f("monetary", table.Float),
	}}

	Segment = Schema{Name: "segment", Fields: []Field{
		f("customer_id", table.Int),
		f("recency", table.Int),
		f("frequency", table.Int),
		f("monetary", table.Float),
		f("R", table.Int),
		f("F", table.Int),
		f("M", table.Int),
		f("RFM", table.String),
		f("segment", table.String),
	}}

	SegmentCount = Schema{Name: "segment_count", Fields: []Field{
		f("segment", table.String),
		f("count", table.Int),
	}}
)
