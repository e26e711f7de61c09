package analytics

import "time"

// Interaction is one buffered per-turn record of a selection or experiment
// outcome, flushed in batches to the durable sink.
type Interaction struct {
	SessionID        string    `json:"sessionId"`
	UserID           string    `json:"userId,omitempty"`
	Agent            string    `json:"agent"`
	Intent           string    `json:"intent"`
	Message          string    `json:"message"`
	Response         string    `json:"response"`
	ResponseTime     float64   `json:"responseTime"`
	Confidence       float64   `json:"confidence"`
	Mood             string    `json:"mood,omitempty"`
	Urgency          string    `json:"urgency,omitempty"`
	QuickReplyUsed   bool      `json:"quickReplyUsed"`
	FollowUpEngaged  bool      `json:"followUpEngaged"`
	HandoffRequested bool      `json:"handoffRequested"`
	Resolved         bool      `json:"resolved"`
	Satisfaction     *float64  `json:"satisfaction,omitempty"`
	ConversionEvent  string    `json:"conversionEvent,omitempty"`
	Revenue          float64   `json:"revenue,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Rollup aggregates per (scenario, variant) counters between flushes.
type Rollup struct {
	ScenarioID      string  `json:"scenarioId"`
	VariantID       string  `json:"variantId"`
	Impressions     int64   `json:"impressions"`
	Selections      int64   `json:"selections"`
	SatisfactionSum float64 `json:"satisfactionSum"`
	Conversions     int64   `json:"conversions"`
}

// AgentReport is the rolling-window performance summary for one agent.
type AgentReport struct {
	Agent              string   `json:"agent"`
	Window             string   `json:"window"`
	TotalConversations int      `json:"totalConversations"`
	AvgResponseTime    float64  `json:"avgResponseTime"`
	AvgConfidence      float64  `json:"avgConfidence"`
	SatisfactionScore  float64  `json:"satisfactionScore"`
	ConversionRate     float64  `json:"conversionRate"`
	HandoffRate        float64  `json:"handoffRate"`
	ResolutionRate     float64  `json:"resolutionRate"`
	TopIntents         []string `json:"topIntents"`
}

// DistributionEntry is one bucket of a mood or intent distribution.
type DistributionEntry struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ResponseStat summarizes one response's effectiveness for top-N queries.
type ResponseStat struct {
	ScenarioID      string  `json:"scenarioId"`
	VariantID       string  `json:"variantId"`
	Impressions     int64   `json:"impressions"`
	Conversions     int64   `json:"conversions"`
	ConversionRate  float64 `json:"conversionRate"`
	AvgSatisfaction float64 `json:"avgSatisfaction"`
}
