package models

// Column names of the tabular product source.
const (
	ColumnName          = "name"
	ColumnMainCategory  = "main_category"
	ColumnSubCategory   = "sub_category"
	ColumnImage         = "image"
	ColumnLink          = "link"
	ColumnRatings       = "ratings"
	ColumnNoOfRatings   = "no_of_ratings"
	ColumnDiscountPrice = "discount_price"
	ColumnActualPrice   = "actual_price"
)

// ProductRowColumns lists every column a product source must provide.
var ProductRowColumns = []string{
	ColumnName,
	ColumnMainCategory,
	ColumnSubCategory,
	ColumnImage,
	ColumnLink,
	ColumnRatings,
	ColumnNoOfRatings,
	ColumnDiscountPrice,
	ColumnActualPrice,
}

// ProductRow is one unsanitized record from a product source. Every cell is
// kept as raw text; numeric columns are cleaned up during ingestion.
type ProductRow struct {
	ID            uint   `json:"-" gorm:"primaryKey"`
	Name          string `json:"name" gorm:"column:name" validate:"required"`
	MainCategory  string `json:"main_category" gorm:"column:main_category"`
	SubCategory   string `json:"sub_category" gorm:"column:sub_category"`
	Image         string `json:"image" gorm:"column:image"`
	Link          string `json:"link" gorm:"column:link"`
	Ratings       string `json:"ratings" gorm:"column:ratings"`
	NoOfRatings   string `json:"no_of_ratings" gorm:"column:no_of_ratings"`
	DiscountPrice string `json:"discount_price" gorm:"column:discount_price"`
	ActualPrice   string `json:"actual_price" gorm:"column:actual_price"`
}

// TableName overrides the table GORM reads rows from.
func (ProductRow) TableName() string {
	return "product_rows"
}

// ProductRowFromMap builds a row from a column-name keyed record. Missing
// columns yield empty cells.
func ProductRowFromMap(record map[string]string) ProductRow {
	return ProductRow{
		Name:          record[ColumnName],
		MainCategory:  record[ColumnMainCategory],
		SubCategory:   record[ColumnSubCategory],
		Image:         record[ColumnImage],
		Link:          record[ColumnLink],
		Ratings:       record[ColumnRatings],
		NoOfRatings:   record[ColumnNoOfRatings],
		DiscountPrice: record[ColumnDiscountPrice],
		ActualPrice:   record[ColumnActualPrice],
	}
}
