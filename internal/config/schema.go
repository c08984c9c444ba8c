package config

import "sort"

// ColumnSpec describes the expected shape of one canonical column after
// cleaning and standardization.
type ColumnSpec struct {
	Dtype       string // expected storage type: "float64" or "string"
	Required    bool
	Description string
}

// TableSchema maps canonical column names to their specs.
type TableSchema map[string]ColumnSpec

// schemas holds the hand-authored schema definitions. Only a strict subset
// of tables has one; tables without an entry skip the type-conformance and
// required-column checks but still receive the generic checks.
var schemas = map[string]TableSchema{
	"table02": schemaTable02,
	"table08": schemaTable08,
}

var schemaTable02 = TableSchema{
	"year_month":                                     {Dtype: "string", Required: true, Description: "Year or year-month identifier"},
	"ict_products_export_value_usd_million":          {Dtype: "float64", Required: true, Description: "ICT products export value in millions USD"},
	"ict_products_export_share_pct":                  {Dtype: "float64", Required: false, Description: "ICT products share of total exports %"},
	"ict_products_export_growth_rate_pct":            {Dtype: "float64", Required: false, Description: "ICT products export growth rate %"},
	"electronic_components_export_value_usd_million": {Dtype: "float64", Required: true, Description: "Electronic components export value in millions USD"},
	"electronic_components_export_share_pct":         {Dtype: "float64", Required: false, Description: "Electronic components share of total exports %"},
	"electronic_components_export_growth_rate_pct":   {Dtype: "float64", Required: false, Description: "Electronic components export growth rate %"},
}

var schemaTable08 = TableSchema{
	"year_month":                           {Dtype: "string", Required: true, Description: "Year or year-month identifier"},
	"total_export_value_usd_million":       {Dtype: "float64", Required: true, Description: "Total export value in millions USD"},
	"total_export_growth_rate_pct":         {Dtype: "float64", Required: false, Description: "Total export year-over-year growth rate %"},
	"china_hk_export_value_usd_million":    {Dtype: "float64", Required: true, Description: "Export to China/HK in millions USD"},
	"china_hk_export_share_pct":            {Dtype: "float64", Required: false, Description: "China/HK share of total exports %"},
	"china_hk_export_growth_rate_pct":      {Dtype: "float64", Required: false, Description: "China/HK export growth rate %"},
	"us_export_value_usd_million":          {Dtype: "float64", Required: true, Description: "Export to US in millions USD"},
	"us_export_share_pct":                  {Dtype: "float64", Required: false, Description: "US share of total exports %"},
	"us_export_growth_rate_pct":            {Dtype: "float64", Required: false, Description: "US export growth rate %"},
	"asean_export_value_usd_million":       {Dtype: "float64", Required: true, Description: "Export to ASEAN in millions USD"},
	"asean_export_share_pct":               {Dtype: "float64", Required: false, Description: "ASEAN share of total exports %"},
	"asean_export_growth_rate_pct":         {Dtype: "float64", Required: false, Description: "ASEAN export growth rate %"},
	"japan_export_value_usd_million":       {Dtype: "float64", Required: true, Description: "Export to Japan in millions USD"},
	"japan_export_growth_rate_pct":         {Dtype: "float64", Required: false, Description: "Japan export growth rate %"},
	"south_korea_export_value_usd_million": {Dtype: "float64", Required: true, Description: "Export to South Korea in millions USD"},
	"south_korea_export_growth_rate_pct":   {Dtype: "float64", Required: false, Description: "South Korea export growth rate %"},
	"europe_export_value_usd_million":      {Dtype: "float64", Required: true, Description: "Export to Europe in millions USD"},
	"europe_export_growth_rate_pct":        {Dtype: "float64", Required: false, Description: "Europe export growth rate %"},
}

// SchemaFor returns the schema definition for a table identifier. ok is
// false for tables without one.
func SchemaFor(tableID string) (TableSchema, bool) {
	s, ok := schemas[tableID]
	return s, ok
}

// RequiredColumns returns the required canonical columns for a table, or
// nil when the table has no schema.
func RequiredColumns(tableID string) []string {
	schema, ok := schemas[tableID]
	if !ok {
		return nil
	}
	var required []string
	for name, spec := range schema {
		if spec.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	return required
}

// ExpectedTypes returns the column → dtype map for a table, or nil when the
// table has no schema.
func ExpectedTypes(tableID string) map[string]string {
	schema, ok := schemas[tableID]
	if !ok {
		return nil
	}
	types := make(map[string]string, len(schema))
	for name, spec := range schema {
		types[name] = spec.Dtype
	}
	return types
}
