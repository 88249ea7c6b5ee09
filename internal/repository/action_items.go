package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/apphelix/engagement-tracker/constants"
	"github.com/apphelix/engagement-tracker/internal/entity"
	"github.com/apphelix/engagement-tracker/internal/llm"
)

var actionItemColumns = []string{
	"id", "engagement_id", "description", "priority", "responsible_party",
	"due_date", "status", "dependencies", "risk_level", "source",
	"created_at", "updated_at",
}

// WriteActionItems replaces the engagement's AI-sourced action items with the
// supplied set. Manually created items are untouched.
func (s *Store) WriteActionItems(ctx context.Context, engagementID uuid.UUID, items []llm.ActionItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := s.sb.Delete("action_items").
		Where("engagement_id = ?", engagementID.String()).
		Where("source = ?", "ai").
		RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("clear ai action items: %w", err)
	}

	now := fmtTime(time.Now())
	for _, item := range items {
		var due any
		if item.DueDate != nil {
			due = item.DueDate.UTC().Format("2006-01-02")
		}
		if _, err := s.sb.Insert("action_items").
			Columns(actionItemColumns...).
			Values(
				uuid.New().String(), engagementID.String(), item.Description,
				string(item.Priority), item.ResponsibleParty, due,
				string(item.Status), fmtList(item.Dependencies),
				string(item.RiskLevel), "ai", now, now,
			).
			RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("insert action item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit action items: %w", err)
	}
	s.logger.Debug("action items written", "engagement_id", engagementID, "count", len(items))
	return nil
}

// ListActionItemsForEngagement returns the engagement's items, soonest due first.
func (s *Store) ListActionItemsForEngagement(ctx context.Context, engagementID uuid.UUID) ([]entity.ActionItem, error) {
	rows, err := s.sb.Select(actionItemColumns...).
		From("action_items").
		Where("engagement_id = ?", engagementID.String()).
		OrderBy("due_date ASC").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query action items: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []entity.ActionItem
	for rows.Next() {
		var (
			item                 entity.ActionItem
			id, engagement       string
			responsible, dueDate sql.NullString
			dependencies         sql.NullString
			createdAt, updatedAt string
			priority, status     string
			riskLevel            string
		)
		if err := rows.Scan(&id, &engagement, &item.Description, &priority,
			&responsible, &dueDate, &status, &dependencies, &riskLevel,
			&item.Source, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan action item: %w", err)
		}
		item.ID, _ = uuid.Parse(id)
		item.EngagementID, _ = uuid.Parse(engagement)
		item.Priority = constants.Priority(priority)
		item.Status = constants.ItemStatus(status)
		item.RiskLevel = constants.RiskLevel(riskLevel)
		item.ResponsibleParty = responsible.String
		item.Dependencies = parseList(dependencies)
		item.CreatedAt = parseTime(createdAt)
		item.UpdatedAt = parseTime(updatedAt)
		if dueDate.Valid && dueDate.String != "" {
			if d, err := time.Parse("2006-01-02", dueDate.String); err == nil {
				item.DueDate = &d
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return items, nil
}
