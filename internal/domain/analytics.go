package domain

// UsageSnapshot is the admin analytics view of service counters since
// process start.
type UsageSnapshot struct {
	TotalRequests int64   `json:"total_requests"`
	ErrorRate     float64 `json:"error_rate"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
	ImportBatches int64   `json:"import_batches"`
	ImportedRows  int64   `json:"imported_rows"`
	FailedRows    int64   `json:"failed_rows"`
	BackendErrors int64   `json:"backend_errors"`
	Period        string  `json:"period"`
}

// DashboardSummary aggregates lead counts for the dashboard page.
type DashboardSummary struct {
	TotalLeads    int                `json:"total_leads"`
	ByStatus      map[LeadStatus]int `json:"by_status"`
	TotalArrears  float64            `json:"total_arrears"`
	Campaigns     int                `json:"campaigns"`
	RecentImports int64              `json:"recent_imports"`
}
