package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/apphelix/engagement-tracker/internal/entity"
)

var emailColumns = []string{
	"id", "engagement_id", "subject", "sender", "content", "received_at",
	"sentiment_class", "sentiment_score",
}

// CreateEmail inserts an email row; the ID is assigned here.
func (s *Store) CreateEmail(ctx context.Context, email *entity.Email) error {
	if email.ID == uuid.Nil {
		email.ID = uuid.New()
	}
	if email.ReceivedAt.IsZero() {
		email.ReceivedAt = time.Now().UTC()
	}
	var score any
	if email.SentimentScore != nil {
		score = *email.SentimentScore
	}
	query := s.sb.Insert("emails").
		Columns(emailColumns...).
		Values(
			email.ID.String(), email.EngagementID.String(), email.Subject,
			email.Sender, email.Content, fmtTime(email.ReceivedAt),
			email.SentimentClass, score,
		)
	if _, err := query.RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("insert email: %w", err)
	}
	return nil
}

// ListEmailsForEngagement returns the engagement's emails oldest first.
func (s *Store) ListEmailsForEngagement(ctx context.Context, engagementID uuid.UUID) ([]entity.Email, error) {
	rows, err := s.sb.Select(emailColumns...).
		From("emails").
		Where("engagement_id = ?", engagementID.String()).
		OrderBy("received_at ASC").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query engagement emails: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var emails []entity.Email
	for rows.Next() {
		var (
			email          entity.Email
			id, engagement string
			receivedAt     string
			class          sql.NullString
			score          sql.NullFloat64
		)
		if err := rows.Scan(&id, &engagement, &email.Subject, &email.Sender,
			&email.Content, &receivedAt, &class, &score); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		email.ID, _ = uuid.Parse(id)
		email.EngagementID, _ = uuid.Parse(engagement)
		email.ReceivedAt = parseTime(receivedAt)
		email.SentimentClass = class.String
		if score.Valid {
			v := score.Float64
			email.SentimentScore = &v
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return emails, nil
}
