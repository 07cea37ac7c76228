package model

import "time"

// CostBreakdown is the cost attributed to one dimension value.
type CostBreakdown struct {
	Cost     float64 `json:"cost"`
	Messages int     `json:"messages"`
	Tokens   int64   `json:"tokens"`
}

// TranscriptionSummary is the transcription cost category, kept apart from message cost.
type TranscriptionSummary struct {
	Count           int               `json:"count"`
	DurationSeconds float64           `json:"durationSeconds"`
	Cost            float64           `json:"cost"`
	ByModule        map[int64]float64 `json:"byModule"`
}

// CostAnalysis holds estimated spend across every cost dimension.
type CostAnalysis struct {
	TotalCost         float64 `json:"totalCost"`
	MessageCost       float64 `json:"messageCost"`
	TranscriptionCost float64 `json:"transcriptionCost"`
	TotalTokens       int64   `json:"totalTokens"`
	TotalMessages     int     `json:"totalMessages"`
	PricedMessages    int     `json:"pricedMessages"`
	UnpricedMessages  int     `json:"unpricedMessages"`
	InputShare        float64 `json:"inputShare"`

	ByProvider   map[string]CostBreakdown `json:"byProvider"`
	ByModel      map[string]CostBreakdown `json:"byModel"`
	ByModule     map[int64]CostBreakdown  `json:"byModule"`
	ByCourse     map[int64]CostBreakdown  `json:"byCourse"`
	ByUniversity map[int64]CostBreakdown  `json:"byUniversity"`

	Transcriptions TranscriptionSummary `json:"transcriptions"`
}

// UsageStats holds top-level activity counts for an event set.
type UsageStats struct {
	TotalMessages       int            `json:"totalMessages"`
	UniqueStudents      int            `json:"uniqueStudents"`
	UniqueConversations int            `json:"uniqueConversations"`
	ActiveModules       int            `json:"activeModules"`
	TotalTokens         int64          `json:"totalTokens"`
	AvgResponseTimeMs   float64        `json:"avgResponseTimeMs"`
	MessagesByProvider  map[string]int `json:"messagesByProvider"`
	MessagesByModel     map[string]int `json:"messagesByModel"`
	PeakHour            int            `json:"peakHour"`
	PeakHourMessages    int            `json:"peakHourMessages"`
}

// TrendPoint is one calendar day of activity.
type TrendPoint struct {
	Date              string  `json:"date"` // YYYY-MM-DD
	Messages          int     `json:"messages"`
	Students          int     `json:"students"`
	Conversations     int     `json:"conversations"`
	Tokens            int64   `json:"tokens"`
	Cost              float64 `json:"cost"`
	AvgResponseTimeMs float64 `json:"avgResponseTimeMs"`
}

// Trend directions.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// UsageTrend is a date-ordered activity series with first-to-last growth.
type UsageTrend struct {
	Points     []TrendPoint `json:"points"`
	GrowthRate float64      `json:"growthRate"`
	Direction  string       `json:"direction"`
}

// HourlyUsage holds activity for one hour of the day.
type HourlyUsage struct {
	Hour              int     `json:"hour"`
	Messages          int     `json:"messages"`
	Students          int     `json:"students"`
	Tokens            int64   `json:"tokens"`
	AvgResponseTimeMs float64 `json:"avgResponseTimeMs"`
}

// RankedEntity is one row of a top-N ranking.
type RankedEntity struct {
	ID            int64   `json:"id"`
	Messages      int     `json:"messages"`
	Conversations int     `json:"conversations"`
	Tokens        int64   `json:"tokens"`
	Cost          float64 `json:"cost"`
}

// ModuleComparison compares activity across modules.
type ModuleComparison struct {
	ModuleID                int64   `json:"moduleId"`
	CourseID                int64   `json:"courseId,omitempty"`
	Messages                int     `json:"messages"`
	Students                int     `json:"students"`
	Conversations           int     `json:"conversations"`
	Tokens                  int64   `json:"tokens"`
	Cost                    float64 `json:"cost"`
	AvgResponseTimeMs       float64 `json:"avgResponseTimeMs"`
	MessagesPerConversation float64 `json:"messagesPerConversation"`
}

// Engagement quality tiers.
const (
	EngagementHigh   = "high"
	EngagementMedium = "medium"
	EngagementLow    = "low"
)

// LengthDistribution counts conversations per length bucket.
type LengthDistribution struct {
	Single int `json:"single"` // 1 message
	Short  int `json:"short"`  // 2-5
	Medium int `json:"medium"` // 6-15
	Long   int `json:"long"`   // 16+
}

// Total returns the number of conversations across all buckets.
func (d LengthDistribution) Total() int {
	return d.Single + d.Short + d.Medium + d.Long
}

// ConversationMetrics describes how deeply students engage in conversations.
type ConversationMetrics struct {
	TotalConversations int                `json:"totalConversations"`
	AvgLength          float64            `json:"avgLength"`
	MedianLength       float64            `json:"medianLength"`
	AvgDurationSecs    float64            `json:"avgDurationSecs"`
	Distribution       LengthDistribution `json:"distribution"`
	CompletionRate     float64            `json:"completionRate"`
	DropoffRate        float64            `json:"dropoffRate"`
	EngagementQuality  string             `json:"engagementQuality"`
}

// Response quality statuses.
const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
	StatusNoData   = "no_data"
)

// ResponseQuality grades the response-time distribution.
type ResponseQuality struct {
	SampleSize        int     `json:"sampleSize"`
	AvgResponseTimeMs float64 `json:"avgResponseTimeMs"`
	MedianMs          int64   `json:"medianMs"`
	P95Ms             int64   `json:"p95Ms"`
	P99Ms             int64   `json:"p99Ms"`
	FastCount         int     `json:"fastCount"`
	SlowCount         int     `json:"slowCount"`
	FastPercent       float64 `json:"fastPercent"`
	SlowPercent       float64 `json:"slowPercent"`
	AvgTokens         float64 `json:"avgTokens"`
	Grade             string  `json:"grade"`
	Status            string  `json:"status"`
}

// FaqItem is one cluster of near-duplicate questions.
type FaqItem struct {
	Question   string    `json:"question"`
	Normalized string    `json:"normalized"`
	Count      int       `json:"count"`
	Samples    []string  `json:"samples"`
	Answer     string    `json:"answer,omitempty"`
	Category   string    `json:"category"`
	ModuleIDs  []int64   `json:"moduleIds"`
	FirstSeen  time.Time `json:"firstSeen"`
	LastSeen   time.Time `json:"lastSeen"`
}

// PeriodTotals are the headline numbers for one period.
type PeriodTotals struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Messages      int       `json:"messages"`
	Students      int       `json:"students"`
	Conversations int       `json:"conversations"`
	ActiveModules int       `json:"activeModules"`
	Cost          float64   `json:"cost"`
}

// Growth holds period-over-period percentage changes.
type Growth struct {
	Messages float64 `json:"messages"`
	Students float64 `json:"students"`
	Cost     float64 `json:"cost"`
}

// DashboardSummary combines the current period with the preceding one.
type DashboardSummary struct {
	Current    PeriodTotals   `json:"current"`
	Previous   PeriodTotals   `json:"previous"`
	Growth     Growth         `json:"growth"`
	Engagement string         `json:"engagement"`
	Grade      string         `json:"grade"`
	TopModules []RankedEntity `json:"topModules"`
	Budget     *BudgetStats   `json:"budget,omitempty"`
}

// TodayCost is the observed spend so far today and its full-day projection.
type TodayCost struct {
	Date          string  `json:"date"`
	Messages      int     `json:"messages"`
	ObservedCost  float64 `json:"observedCost"`
	ProjectedCost float64 `json:"projectedCost"`
	HoursElapsed  float64 `json:"hoursElapsed"`
	Projected     bool    `json:"projected"`
}
