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
)

var documentColumns = []string{
	"id", "engagement_id", "filename", "original_name", "file_type", "mime_class",
	"size_bytes", "file_path", "uploaded_by", "uploaded_at", "processed_at",
	"text_content", "sentiment",
}

// CreateDocument inserts a new document row; the ID is assigned here.
func (s *Store) CreateDocument(ctx context.Context, doc *entity.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	query := s.sb.Insert("documents").
		Columns(documentColumns...).
		Values(
			doc.ID.String(), doc.EngagementID.String(), doc.Filename, doc.OriginalName,
			doc.FileType, string(doc.MimeClass), doc.SizeBytes, doc.FilePath,
			doc.UploadedBy, fmtTime(doc.UploadedAt), fmtTimePtr(doc.ProcessedAt),
			doc.TextContent, doc.Sentiment,
		)
	if _, err := query.RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetDocument loads one document by ID.
func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (entity.Document, error) {
	row := s.sb.Select(documentColumns...).
		From("documents").
		Where("id = ?", id.String()).
		RunWith(s.db).QueryRowContext(ctx)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Document{}, common.NewAppError("NOT_FOUND",
			fmt.Sprintf("document %s", id), common.ErrNotFound)
	}
	return doc, err
}

// ListDocuments returns up to limit documents, newest first.
func (s *Store) ListDocuments(ctx context.Context, limit uint64) ([]entity.Document, error) {
	rows, err := s.sb.Select(documentColumns...).
		From("documents").
		OrderBy("uploaded_at DESC").
		Limit(limit).
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	return collectDocuments(rows)
}

// FindDocumentsForEngagement returns all documents attached to an engagement
// in upload order.
func (s *Store) FindDocumentsForEngagement(ctx context.Context, engagementID uuid.UUID) ([]entity.Document, error) {
	rows, err := s.sb.Select(documentColumns...).
		From("documents").
		Where("engagement_id = ?", engagementID.String()).
		OrderBy("uploaded_at ASC").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query engagement documents: %w", err)
	}
	return collectDocuments(rows)
}

// MarkDocumentProcessed stores the pipeline output on the document row.
func (s *Store) MarkDocumentProcessed(ctx context.Context, id uuid.UUID, text, sentiment string) error {
	_, err := s.sb.Update("documents").
		Set("text_content", text).
		Set("sentiment", sentiment).
		Set("processed_at", fmtTime(time.Now())).
		Where("id = ?", id.String()).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("mark document processed: %w", err)
	}
	return nil
}

// DeleteDocument removes a document row.
func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	res, err := s.sb.Delete("documents").
		Where("id = ?", id.String()).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND", fmt.Sprintf("document %s", id), common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (entity.Document, error) {
	var (
		doc                    entity.Document
		id, engagementID       string
		mimeClass, uploadedAt  string
		uploadedBy             string
		processedAt            sql.NullString
		textContent, sentiment sql.NullString
	)
	err := row.Scan(
		&id, &engagementID, &doc.Filename, &doc.OriginalName, &doc.FileType,
		&mimeClass, &doc.SizeBytes, &doc.FilePath, &uploadedBy,
		&uploadedAt, &processedAt, &textContent, &sentiment,
	)
	if err != nil {
		return entity.Document{}, err
	}
	doc.ID, _ = uuid.Parse(id)
	doc.EngagementID, _ = uuid.Parse(engagementID)
	doc.MimeClass = constants.MimeClass(mimeClass)
	doc.UploadedBy = uploadedBy
	doc.UploadedAt = parseTime(uploadedAt)
	doc.ProcessedAt = parseTimePtr(processedAt)
	doc.TextContent = textContent.String
	doc.Sentiment = sentiment.String
	return doc, nil
}

func collectDocuments(rows *sql.Rows) ([]entity.Document, error) {
	defer func() {
		_ = rows.Close()
	}()
	var docs []entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return docs, nil
}
