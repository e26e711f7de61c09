package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresSink writes flushed batches to Postgres. Interactions are appended;
// rollups are merged with an upsert so deltas from multiple instances add up.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink wraps an open connection pool.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	if db == nil {
		panic("analytics: db cannot be nil")
	}
	return &PostgresSink{db: db}
}

// WriteInteractions inserts the batch inside one transaction.
func (s *PostgresSink) WriteInteractions(ctx context.Context, batch []Interaction) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("analytics: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO atelier_interactions (session_id, user_id, agent, intent, message, response,
		    response_time_ms, confidence, mood, urgency, quick_reply_used, follow_up_engaged,
		    handoff_requested, resolved, satisfaction, conversion_event, revenue, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`)
	if err != nil {
		return fmt.Errorf("analytics: failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, i := range batch {
		var satisfaction sql.NullFloat64
		if i.Satisfaction != nil {
			satisfaction = sql.NullFloat64{Float64: *i.Satisfaction, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			i.SessionID, i.UserID, i.Agent, i.Intent, i.Message, i.Response,
			i.ResponseTime, i.Confidence, i.Mood, i.Urgency, i.QuickReplyUsed, i.FollowUpEngaged,
			i.HandoffRequested, i.Resolved, satisfaction, i.ConversionEvent, i.Revenue, i.Timestamp,
		); err != nil {
			return fmt.Errorf("analytics: failed to insert interaction: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("analytics: failed to commit batch: %w", err)
	}
	return nil
}

// WriteRollups merges the deltas into the per-variant totals.
func (s *PostgresSink) WriteRollups(ctx context.Context, rollups []Rollup) error {
	if len(rollups) == 0 {
		return nil
	}
	now := time.Now()
	for _, r := range rollups {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO atelier_response_rollups (scenario_id, variant_id, impressions, selections,
			    satisfaction_sum, conversions, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (scenario_id, variant_id) DO UPDATE SET
			    impressions=atelier_response_rollups.impressions+EXCLUDED.impressions,
			    selections=atelier_response_rollups.selections+EXCLUDED.selections,
			    satisfaction_sum=atelier_response_rollups.satisfaction_sum+EXCLUDED.satisfaction_sum,
			    conversions=atelier_response_rollups.conversions+EXCLUDED.conversions,
			    updated_at=$7`,
			r.ScenarioID, r.VariantID, r.Impressions, r.Selections, r.SatisfactionSum, r.Conversions, now)
		if err != nil {
			return fmt.Errorf("analytics: failed to upsert rollup: %w", err)
		}
	}
	return nil
}
