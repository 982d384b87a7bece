package models

import "time"

// Chart types the client can render. Anything else is rejected at the
// service boundary.
const (
	ChartBar       = "bar"
	ChartLine      = "line"
	ChartPie       = "pie"
	ChartDoughnut  = "doughnut"
	ChartRadar     = "radar"
	ChartScatter   = "scatter"
	ChartBubble    = "bubble"
	ChartMixed     = "mixed"
	ChartPolarArea = "polarArea"
)

var chartTypes = map[string]struct{}{
	ChartBar: {}, ChartLine: {}, ChartPie: {}, ChartDoughnut: {},
	ChartRadar: {}, ChartScatter: {}, ChartBubble: {}, ChartMixed: {},
	ChartPolarArea: {},
}

// ValidChartType reports whether t names a supported chart type.
func ValidChartType(t string) bool {
	_, ok := chartTypes[t]
	return ok
}

// Record is one schema-less row of chart or preview data, keyed by header
// name. Values are whatever the parser produced (int64, float64 or string);
// absent keys stay absent — they are never zero-filled.
type Record map[string]any

// ChartConfig binds chart axes to column names. BubbleSize is set only for
// bubble charts.
type ChartConfig struct {
	XAxis      string `json:"xAxis"`
	YAxis      string `json:"yAxis"`
	BubbleSize string `json:"bubbleSize,omitempty"`
}

// Project is a stored chart project. Data holds the projected chart series,
// PreviewData the first few full-width rows of the upload. FolderID is a
// deliberately loose reference: it is not validated against the folders
// table and may point at a folder that no longer exists.
type Project struct {
	ID               string
	UserID           string
	ProjectName      string
	ChartType        string
	FilePath         string
	OriginalFileName string
	Data             []Record
	PreviewData      []Record
	ChartConfig      ChartConfig
	FolderID         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProjectSummary is the list-view shape: metadata only, no datasets.
type ProjectSummary struct {
	ID               string
	ProjectName      string
	ChartType        string
	OriginalFileName string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
