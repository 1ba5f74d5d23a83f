package market

// CacheKey holds the last good snapshot.
const CacheKey = "afr:market:indices"

// Index is one row of the market ticker.
type Index struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Change string `json:"change"`
	Up     bool   `json:"up"`
}

var displayNames = map[string]string{
	"^SSEC": "上证指数",
	"^HSI":  "恒生指数",
	"^SPX":  "标普500",
	"^NDX":  "纳斯达克",
}

// DemoIndices is served when the source answers with no usable rows,
// which happens on weekends and holidays.
func DemoIndices() []Index {
	return []Index{
		{Name: "上证指数", Value: "3,050.45", Change: "+0.45%", Up: true},
		{Name: "恒生指数", Value: "17,850.32", Change: "-0.21%", Up: false},
		{Name: "标普500", Value: "4,450.50", Change: "+0.05%", Up: true},
		{Name: "纳斯达克", Value: "13,500.10", Change: "+0.80%", Up: true},
	}
}

// UnavailableIndices is served when the source cannot be reached.
func UnavailableIndices() []Index {
	return []Index{
		{Name: "上证指数 (N/A)", Value: "----", Change: "0.00%", Up: true},
		{Name: "服务不可用", Value: "----", Change: "0.00%", Up: true},
	}
}
