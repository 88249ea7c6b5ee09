package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/apphelix/engagement-tracker/internal/common"
	"github.com/apphelix/engagement-tracker/internal/entity"
)

var customerColumns = []string{
	"id", "name", "industry", "status", "contact_email", "contact_phone",
	"description", "created_at", "updated_at",
}

// CreateCustomer inserts a new customer; the ID is assigned here and the
// status defaults to active.
func (s *Store) CreateCustomer(ctx context.Context, c *entity.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Status == "" {
		c.Status = "active"
	}
	query := s.sb.Insert("customers").
		Columns(customerColumns...).
		Values(
			c.ID.String(), c.Name, c.Industry, c.Status, c.ContactEmail,
			c.ContactPhone, c.Description, fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt),
		)
	if _, err := query.RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetCustomer loads one customer by ID.
func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (entity.Customer, error) {
	row := s.sb.Select(customerColumns...).
		From("customers").
		Where("id = ?", id.String()).
		RunWith(s.db).QueryRowContext(ctx)

	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Customer{}, common.NewAppError("NOT_FOUND",
			fmt.Sprintf("customer %s", id), common.ErrNotFound)
	}
	return c, err
}

// ListCustomers returns all customers by name.
func (s *Store) ListCustomers(ctx context.Context) ([]entity.Customer, error) {
	rows, err := s.sb.Select(customerColumns...).
		From("customers").
		OrderBy("name ASC").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	return collectCustomers(rows)
}

// SearchCustomers matches the query case-insensitively against name, industry,
// contact fields, and description. An empty query returns all customers.
func (s *Store) SearchCustomers(ctx context.Context, query string) ([]entity.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListCustomers(ctx)
	}
	pattern := "%" + strings.ToLower(query) + "%"

	rows, err := s.sb.Select(customerColumns...).
		From("customers").
		Where(sq.Or{
			sq.Expr("LOWER(name) LIKE ?", pattern),
			sq.Expr("LOWER(industry) LIKE ?", pattern),
			sq.Expr("LOWER(contact_email) LIKE ?", pattern),
			sq.Expr("LOWER(contact_phone) LIKE ?", pattern),
			sq.Expr("LOWER(description) LIKE ?", pattern),
		}).
		OrderBy("name ASC").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return collectCustomers(rows)
}

// ListEngagementsForCustomer returns the customer's engagements, newest first.
func (s *Store) ListEngagementsForCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Engagement, error) {
	rows, err := s.sb.Select(engagementColumns...).
		From("engagements").
		Where("customer_id = ?", customerID.String()).
		OrderBy("created_at DESC").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query customer engagements: %w", err)
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

func scanCustomer(row rowScanner) (entity.Customer, error) {
	var (
		c                    entity.Customer
		id                   string
		industry             sql.NullString
		contactEmail         sql.NullString
		contactPhone         sql.NullString
		description          sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&id, &c.Name, &industry, &c.Status, &contactEmail,
		&contactPhone, &description, &createdAt, &updatedAt)
	if err != nil {
		return entity.Customer{}, err
	}
	c.ID, _ = uuid.Parse(id)
	c.Industry = industry.String
	c.ContactEmail = contactEmail.String
	c.ContactPhone = contactPhone.String
	c.Description = description.String
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}

func collectCustomers(rows *sql.Rows) ([]entity.Customer, error) {
	defer func() {
		_ = rows.Close()
	}()
	var customers []entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return customers, nil
}
