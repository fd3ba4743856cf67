package domain

// TradeRecord is one monthly row of the US textile fiber trade dataset.
type TradeRecord struct {
	FiberType    string  `json:"fiber_type" yaml:"fiber_type"`       // cotton, silk, wool, ...
	ImportExport string  `json:"import_export" yaml:"import_export"` // "import" or "export"
	Category     string  `json:"category" yaml:"category"`           // yarn, apparel, home, ...
	SubCategory  string  `json:"sub_category" yaml:"sub_category"`
	Year         int     `json:"year" yaml:"year"`
	Month        int     `json:"month" yaml:"month"`
	Value        float64 `json:"value" yaml:"value"`
}
