// models/analytics.go
package models

// Overview holds the scalar KPIs for the dashboard header cards.
type Overview struct {
	TotalDeals         int     `json:"totalDeals"`
	TotalRevenue       float64 `json:"totalRevenue"`
	AverageDealSize    float64 `json:"averageDealSize"`
	TotalCallbacks     int     `json:"totalCallbacks"`
	PendingCallbacks   int     `json:"pendingCallbacks"`
	CompletedCallbacks int     `json:"completedCallbacks"`
	ConversionRate     float64 `json:"conversionRate"`
}

// RollupEntry is one bucket of a group-by rollup (by agent, service tier or team).
type RollupEntry struct {
	Key     string  `json:"key"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// DailyPoint is one bucket of the daily revenue trend.
type DailyPoint struct {
	Date    string  `json:"date"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// LeaderboardEntry is one ranked row of the callback-creator leaderboard.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	CreatorID   string  `json:"creatorId,omitempty"`
	CreatorName string  `json:"creatorName"`
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Pending     int     `json:"pending"`
	SuccessRate float64 `json:"successRate"`
}

// TargetProgress is the reporting view of one target record.
type TargetProgress struct {
	AgentID       string  `json:"agentId"`
	AgentName     string  `json:"agentName,omitempty"`
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	TargetDeals   int     `json:"targetDeals"`
	CurrentDeals  int     `json:"currentDeals"`
	Percentage    float64 `json:"percentage"`
	Achieved      bool    `json:"achieved"`
}

// Charts groups every rollup array in the analytics payload.
type Charts struct {
	DealsByAgent   []RollupEntry      `json:"dealsByAgent"`
	DealsByService []RollupEntry      `json:"dealsByService"`
	DealsByTeam    []RollupEntry      `json:"dealsByTeam"`
	DailyTrend     []DailyPoint       `json:"dailyTrend"`
	TopCreators    []LeaderboardEntry `json:"topCallbackCreators"`
}

// Tables holds the bounded raw-record samples.
type Tables struct {
	RecentDeals     []Deal     `json:"recentDeals"`
	RecentCallbacks []Callback `json:"recentCallbacks"`
}

// TargetSummary wraps per-agent target progress plus totals.
type TargetSummary struct {
	TotalTargets int              `json:"totalTargets"`
	Achieved     int              `json:"achieved"`
	Progress     []TargetProgress `json:"progress"`
}

// DashboardAnalytics is the full aggregated payload.
type DashboardAnalytics struct {
	Overview Overview      `json:"overview"`
	Charts   Charts        `json:"charts"`
	Tables   Tables        `json:"tables"`
	Targets  TargetSummary `json:"targets"`
}

// AnalyticsFilters echoes the request filters back to the client.
type AnalyticsFilters struct {
	UserRole    string `json:"userRole"`
	UserID      string `json:"userId,omitempty"`
	UserName    string `json:"userName,omitempty"`
	ManagedTeam string `json:"managedTeam,omitempty"`
	DateRange   string `json:"dateRange"`
}

// AnalyticsData is the data section of the /api/analytics response.
type AnalyticsData struct {
	Deals     []Deal              `json:"deals"`
	Callbacks []Callback          `json:"callbacks"`
	Targets   []Target            `json:"targets"`
	Analytics *DashboardAnalytics `json:"analytics"`
	Filters   AnalyticsFilters    `json:"filters"`
}

// AnalyticsResponse is the envelope of the /api/analytics endpoint.
type AnalyticsResponse struct {
	Success   bool           `json:"success"`
	Data      *AnalyticsData `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp string         `json:"timestamp"`
	Fresh     bool           `json:"fresh"`
}

// UnifiedDataMetadata describes what the unified-data endpoint returned.
type UnifiedDataMetadata struct {
	RequestedTypes []string       `json:"requestedTypes"`
	Counts         map[string]int `json:"counts"`
	Limit          int            `json:"limit"`
	Offset         int            `json:"offset"`
	DateRange      string         `json:"dateRange"`
	Timestamp      string         `json:"timestamp"`
}

// UnifiedDataResponse is the envelope of the /api/unified-data endpoint.
type UnifiedDataResponse struct {
	Success  bool                   `json:"success"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Metadata *UnifiedDataMetadata   `json:"metadata,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Debug    map[string]interface{} `json:"debug,omitempty"`
}
