package config

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownTable is returned when a table identifier is not a member of
// the fixed registry.
var ErrUnknownTable = errors.New("unknown table identifier")

// tableFiles maps each table identifier to its source spreadsheet filename
// as published in the monthly customs statistics release.
var tableFiles = map[string]string{
	"table01": "Table1_Import_and_ExportTradeValues.xlsx",
	"table02": "Table2_Classification_of_MajorExportCommodities.xlsx",
	"table03": "Table3_ Classification_of_MajorImportedGoods.xlsx",
	"table04": "Table4_MajorExportCommodities.xlsx",
	"table05": "Table5_MajorImportedCommodities.xlsx",
	"table06": "Table6_ExportTradeStructure.xlsx",
	"table07": "Table7_ImportTradeStructure.xlsx",
	"table08": "Table8_Taiwans's_ExportValue_and_AnnualGrowthRate.xlsx",
	"table09": "Table9_ ImportValue_AnnualGrowthRate(to_Taiwan).xlsx",
	"table10": "Table10_Surplus_inTrade_with_MajorCountries.xlsx",
	"table11": "Table11_MajorExportCommodities(China_and_HongKong).xlsx",
	"table12": "Table12_ExporValue_and_AnnualGrowthRate_to_18Countries_UnderNewSouthbound_Policy.xlsx",
	"table13": "Table13_Seasonally_AdjustedImport_and_ExportTradeValues.xlsx",
	"table14": "Table14_Import_and_ExportValues_and_AnnualGrowthRates_for_MajorCountries__OR_Regions.xlsx",
	"table15": "Table15_Import_and_Export_Price-RelatedIndicators.xlsx",
	"table16": "Table16_ExchangeRates_of_MajorCountries_CurrenciesAgainst_USDollar.xlsx",
}

// logicalNames maps table identifiers to the names downstream consumers use.
var logicalNames = map[string]string{
	"table01": "overall_trade",
	"table02": "export_commodities",
	"table03": "import_commodities",
	"table04": "export_items_detail",
	"table05": "import_items_detail",
	"table06": "export_structure",
	"table07": "import_structure",
	"table08": "export_by_country",
	"table09": "import_by_country",
	"table10": "trade_balance_by_country",
	"table11": "export_to_china_hk",
	"table12": "export_to_new_southbound",
	"table13": "seasonally_adjusted",
	"table14": "comprehensive_trade",
	"table15": "price_indicators",
	"table16": "exchange_rates",
}

// IsValidTable reports whether id is a member of the fixed table registry.
func IsValidTable(id string) bool {
	_, ok := tableFiles[id]
	return ok
}

// TableFile returns the source spreadsheet filename for a table identifier.
func TableFile(id string) (string, error) {
	name, ok := tableFiles[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTable, id)
	}
	return name, nil
}

// LogicalName returns the downstream-facing name for a table identifier,
// falling back to the identifier itself.
func LogicalName(id string) string {
	if name, ok := logicalNames[id]; ok {
		return name
	}
	return id
}

// AllTableIDs returns the sixteen table identifiers in order.
func AllTableIDs() []string {
	ids := make([]string, 0, len(tableFiles))
	for id := range tableFiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
