package analytics

import (
	"sort"
	"time"
)

// AgentPerformance summarizes one agent's interactions over the window.
func (c *Collector) AgentPerformance(agent string, window time.Duration) AgentReport {
	report := AgentReport{Agent: agent, Window: window.String()}

	var (
		responseTimeSum float64
		confidenceSum   float64
		satisfactionSum float64
		satisfactionN   int
		conversions     int
		handoffs        int
		resolved        int
	)
	intents := make(map[string]int)

	for _, i := range c.Recent(window) {
		if i.Agent != agent {
			continue
		}
		report.TotalConversations++
		responseTimeSum += i.ResponseTime
		confidenceSum += i.Confidence
		if i.Satisfaction != nil {
			satisfactionSum += *i.Satisfaction
			satisfactionN++
		}
		if i.ConversionEvent != "" {
			conversions++
		}
		if i.HandoffRequested {
			handoffs++
		}
		if i.Resolved {
			resolved++
		}
		if i.Intent != "" {
			intents[i.Intent]++
		}
	}

	n := report.TotalConversations
	if n == 0 {
		return report
	}
	report.AvgResponseTime = responseTimeSum / float64(n)
	report.AvgConfidence = confidenceSum / float64(n)
	if satisfactionN > 0 {
		report.SatisfactionScore = satisfactionSum / float64(satisfactionN)
	}
	report.ConversionRate = float64(conversions) / float64(n)
	report.HandoffRate = float64(handoffs) / float64(n)
	report.ResolutionRate = float64(resolved) / float64(n)
	report.TopIntents = topKeys(intents, 3)
	return report
}

// IntentDistribution buckets the window's interactions by detected intent.
func (c *Collector) IntentDistribution(window time.Duration) []DistributionEntry {
	return c.distribution(window, func(i Interaction) string { return i.Intent })
}

// MoodDistribution buckets the window's interactions by detected mood.
func (c *Collector) MoodDistribution(window time.Duration) []DistributionEntry {
	return c.distribution(window, func(i Interaction) string { return i.Mood })
}

func (c *Collector) distribution(window time.Duration, label func(Interaction) string) []DistributionEntry {
	counts := make(map[string]int)
	var total int
	for _, i := range c.Recent(window) {
		l := label(i)
		if l == "" {
			continue
		}
		counts[l]++
		total++
	}

	out := make([]DistributionEntry, 0, len(counts))
	for l, n := range counts {
		out = append(out, DistributionEntry{
			Label:      l,
			Count:      n,
			Percentage: 100 * float64(n) / float64(total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// TopResponses ranks variants by conversion rate using the cumulative
// rollups. Variants with fewer than minImpressions are skipped so a lucky
// first conversion does not top the list.
func (c *Collector) TopResponses(limit int, minImpressions int64) []ResponseStat {
	var stats []ResponseStat
	for _, r := range c.Totals() {
		if r.Impressions < minImpressions {
			continue
		}
		stat := ResponseStat{
			ScenarioID:  r.ScenarioID,
			VariantID:   r.VariantID,
			Impressions: r.Impressions,
			Conversions: r.Conversions,
		}
		if r.Impressions > 0 {
			stat.ConversionRate = float64(r.Conversions) / float64(r.Impressions)
			stat.AvgSatisfaction = r.SatisfactionSum / float64(r.Impressions)
		}
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].ConversionRate != stats[j].ConversionRate {
			return stats[i].ConversionRate > stats[j].ConversionRate
		}
		return stats[i].Impressions > stats[j].Impressions
	})
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
