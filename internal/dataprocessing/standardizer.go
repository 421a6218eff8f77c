package dataprocessing

import (
	"strings"

	"forecastwb/internal/config"
	"forecastwb/internal/dataset"
)

// canonicalColumn pairs a canonical column name with the upload header
// synonyms that map onto it. Order matters: earlier entries win when a
// header could match more than one canonical slot.
type canonicalColumn struct {
	name     string
	synonyms []string
}

var canonicalColumns = []canonicalColumn{
	{config.ColumnDate, []string{"date", "order_date", "transaction_date", "day", "timestamp"}},
	{config.ColumnSeriesID, []string{"series_id", "restaurant_id", "restaurant", "store_id", "store", "location_id", "site_id"}},
	{config.ColumnItemID, []string{"item_id", "sku", "product_id", "menu_item"}},
	{config.ColumnSalesQty, []string{"sales_qty", "salesquantity", "qty", "units", "quantity", "sales", "demand", "orders", "volume"}},
	{config.ColumnSalesValue, []string{"sales_value", "amount", "revenue", "gmv", "net_sales", "sales_amt"}},
	{config.ColumnPrice, []string{"price", "unit_price", "avg_price", "selling_price"}},
	{config.ColumnInventoryLevel, []string{"inventory_level", "inventory", "stock", "on_hand"}},
}

// NormalizeColumnName lowercases, trims, and underscores a raw header so
// it can be compared against the synonym vocabulary.
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// MatchCanonical resolves a raw header to its canonical column name. Exact
// synonym matches are tried across the whole vocabulary before falling
// back to substring matches, so "store_id" never lands on "item_id" just
// because "id" appears inside it.
func MatchCanonical(column string) (string, bool) {
	normalized := NormalizeColumnName(column)

	for _, canonical := range canonicalColumns {
		if normalized == canonical.name {
			return canonical.name, true
		}
		for _, synonym := range canonical.synonyms {
			if normalized == synonym {
				return canonical.name, true
			}
		}
	}

	for _, canonical := range canonicalColumns {
		for _, synonym := range canonical.synonyms {
			if strings.Contains(normalized, synonym) {
				return canonical.name, true
			}
		}
	}
	return "", false
}

// StandardizeColumns renames a table's columns to canonical names where a
// match exists and returns the applied rename mapping. After the first
// column claims a canonical slot, later matches for the same slot keep
// their original names.
func StandardizeColumns(t *dataset.Table) map[string]string {
	renameMap := make(map[string]string)
	taken := make(map[string]bool)

	for _, original := range t.Columns {
		canonical, ok := MatchCanonical(original)
		if ok && !taken[canonical] {
			renameMap[original] = canonical
			taken[canonical] = true
		}
	}

	t.RenameColumns(renameMap)
	return renameMap
}
