package config

// Canonical column vocabulary all uploads are standardized toward.
const (
	ColumnDate           = "date"
	ColumnSeriesID       = "series_id"
	ColumnItemID         = "item_id"
	ColumnSalesQty       = "sales_qty"
	ColumnSalesValue     = "sales_value"
	ColumnPrice          = "price"
	ColumnInventoryLevel = "inventory_level"
)

// SingleSeriesID is the sentinel series identifier used when an upload
// carries no series column (single-series mode) or a blank series cell.
const SingleSeriesID = "single_series"

// DateFormat is the ISO-8601 layout used for every persisted date.
const DateFormat = "2006-01-02"

// Allowed config environments for the versioned YAML store.
var AllowedEnvs = map[string]bool{
	"dev":  true,
	"prod": true,
}
