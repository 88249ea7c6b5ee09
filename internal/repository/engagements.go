package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/apphelix/engagement-tracker/constants"
	"github.com/apphelix/engagement-tracker/internal/common"
	"github.com/apphelix/engagement-tracker/internal/entity"
	"github.com/apphelix/engagement-tracker/internal/risk"
)

var engagementColumns = []string{
	"id", "customer_id", "name", "status", "ryg_status", "created_at", "updated_at",
	"last_analyzed_at", "sentiment_class", "sentiment_score", "risk_factors",
}

// CreateEngagement inserts a new engagement; the ID is assigned here and the
// initial status defaults to Green.
func (s *Store) CreateEngagement(ctx context.Context, eng *entity.Engagement) error {
	if eng.ID == uuid.Nil {
		eng.ID = uuid.New()
	}
	now := time.Now().UTC()
	eng.CreatedAt, eng.UpdatedAt = now, now
	if eng.Status == "" {
		eng.Status = "active"
	}
	if eng.RYGStatus == "" {
		eng.RYGStatus = constants.StatusGreen
	}
	var score any
	if eng.SentimentScore != nil {
		score = *eng.SentimentScore
	}
	query := s.sb.Insert("engagements").
		Columns(engagementColumns...).
		Values(
			eng.ID.String(), eng.CustomerID.String(), eng.Name, eng.Status,
			string(eng.RYGStatus), fmtTime(eng.CreatedAt), fmtTime(eng.UpdatedAt),
			fmtTimePtr(eng.LastAnalyzedAt), eng.SentimentClass, score,
			fmtList(eng.RiskFactors),
		)
	if _, err := query.RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("insert engagement: %w", err)
	}
	return nil
}

// GetEngagement loads one engagement by ID.
func (s *Store) GetEngagement(ctx context.Context, id uuid.UUID) (entity.Engagement, error) {
	row := s.sb.Select(engagementColumns...).
		From("engagements").
		Where("id = ?", id.String()).
		RunWith(s.db).QueryRowContext(ctx)

	eng, err := scanEngagement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Engagement{}, common.NewAppError("NOT_FOUND",
			fmt.Sprintf("engagement %s", id), common.ErrNotFound)
	}
	return eng, err
}

// WriteRiskStatus overwrites the engagement's status and analysis snapshot.
// Last writer wins; there are no merge semantics.
func (s *Store) WriteRiskStatus(ctx context.Context, engagementID uuid.UUID, status constants.RiskStatus, a risk.Assessment) error {
	update := s.sb.Update("engagements").
		Set("ryg_status", string(status)).
		Set("last_analyzed_at", fmtTime(time.Now())).
		Set("updated_at", fmtTime(time.Now())).
		Where("id = ?", engagementID.String())

	if a.Sentiment != nil {
		update = update.
			Set("sentiment_class", a.Sentiment.Classification).
			Set("sentiment_score", a.Sentiment.Score).
			Set("risk_factors", fmtList(a.Sentiment.RiskFactors))
	}

	res, err := update.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("write risk status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND",
			fmt.Sprintf("engagement %s", engagementID), common.ErrNotFound)
	}
	return nil
}

// StatusDistribution counts engagements per traffic-light bucket.
func (s *Store) StatusDistribution(ctx context.Context) (map[constants.RiskStatus]int, error) {
	rows, err := s.sb.Select("ryg_status", "COUNT(*)").
		From("engagements").
		GroupBy("ryg_status").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query status distribution: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	dist := map[constants.RiskStatus]int{
		constants.StatusGreen:  0,
		constants.StatusYellow: 0,
		constants.StatusRed:    0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		dist[constants.RiskStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return dist, nil
}

// ListAtRisk returns all Red engagements, most recently analyzed first.
func (s *Store) ListAtRisk(ctx context.Context) ([]entity.Engagement, error) {
	rows, err := s.sb.Select(engagementColumns...).
		From("engagements").
		Where("ryg_status = ?", string(constants.StatusRed)).
		OrderBy("last_analyzed_at DESC").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query at-risk engagements: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var engs []entity.Engagement
	for rows.Next() {
		eng, err := scanEngagement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan engagement: %w", err)
		}
		engs = append(engs, eng)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return engs, nil
}

func scanEngagement(row rowScanner) (entity.Engagement, error) {
	var (
		eng                    entity.Engagement
		id, customerID, status string
		createdAt, updatedAt   string
		lastAnalyzedAt         sql.NullString
		sentimentClass         sql.NullString
		sentimentScore         sql.NullFloat64
		riskFactors            sql.NullString
	)
	err := row.Scan(
		&id, &customerID, &eng.Name, &eng.Status, &status,
		&createdAt, &updatedAt, &lastAnalyzedAt, &sentimentClass,
		&sentimentScore, &riskFactors,
	)
	if err != nil {
		return entity.Engagement{}, err
	}
	eng.ID, _ = uuid.Parse(id)
	eng.CustomerID, _ = uuid.Parse(customerID)
	eng.RYGStatus = constants.RiskStatus(status)
	eng.CreatedAt = parseTime(createdAt)
	eng.UpdatedAt = parseTime(updatedAt)
	eng.LastAnalyzedAt = parseTimePtr(lastAnalyzedAt)
	eng.SentimentClass = sentimentClass.String
	if sentimentScore.Valid {
		v := sentimentScore.Float64
		eng.SentimentScore = &v
	}
	eng.RiskFactors = parseList(riskFactors)
	return eng, nil
}
