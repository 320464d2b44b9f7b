package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/core/ports/driven"
)

// Ensure ConnectionStore implements the interface.
var _ driven.ConnectionRegistry = (*ConnectionStore)(nil)

// ConnectionStore persists tenant calendar connections keyed by
// (tenant_id, provider).
type ConnectionStore struct {
	db *sql.DB
}

const connectionColumns = `tenant_id, provider, external_calendar_id, access_token,
	refresh_token, token_expiry, is_active, client_id, client_secret, created_at, updated_at`

// GetConnection returns the connection for (tenant, provider).
func (s *ConnectionStore) GetConnection(
	ctx context.Context, tenantID string, provider domain.ProviderType,
) (*domain.CalendarConnection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM calendar_connections
		 WHERE tenant_id = ? AND provider = ?`,
		tenantID, string(provider))

	conn, err := scanConnection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query connection: %w", err)
	}
	return conn, nil
}

// ListActiveConnections returns every active connection for the tenant.
func (s *ConnectionStore) ListActiveConnections(
	ctx context.Context, tenantID string,
) ([]*domain.CalendarConnection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+connectionColumns+` FROM calendar_connections
		 WHERE tenant_id = ? AND is_active = 1 ORDER BY provider`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	var conns []*domain.CalendarConnection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, conn)
	}
	return conns, rows.Err()
}

// SaveConnection inserts or replaces a connection.
func (s *ConnectionStore) SaveConnection(ctx context.Context, conn *domain.CalendarConnection) error {
	now := time.Now().Unix()
	createdAt := conn.CreatedAt.Unix()
	if conn.CreatedAt.IsZero() {
		createdAt = now
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calendar_connections (`+connectionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, provider) DO UPDATE SET
			external_calendar_id = excluded.external_calendar_id,
			access_token         = excluded.access_token,
			refresh_token        = excluded.refresh_token,
			token_expiry         = excluded.token_expiry,
			is_active            = excluded.is_active,
			client_id            = excluded.client_id,
			client_secret        = excluded.client_secret,
			updated_at           = excluded.updated_at`,
		conn.TenantID, string(conn.Provider), conn.ExternalCalendarID,
		conn.AccessToken, conn.RefreshToken, conn.TokenExpiry.Unix(),
		boolToInt(conn.IsActive), conn.ClientID, conn.ClientSecret,
		createdAt, now)
	if err != nil {
		return fmt.Errorf("save connection: %w", err)
	}
	return nil
}

// UpdateTokens persists a refreshed access token for an existing connection.
func (s *ConnectionStore) UpdateTokens(
	ctx context.Context, tenantID string, provider domain.ProviderType,
	accessToken, refreshToken string, expiry time.Time,
) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE calendar_connections
		 SET access_token = ?, refresh_token = ?, token_expiry = ?, updated_at = ?
		 WHERE tenant_id = ? AND provider = ?`,
		accessToken, refreshToken, expiry.Unix(), time.Now().Unix(),
		tenantID, string(provider))
	if err != nil {
		return fmt.Errorf("update tokens: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetConnectionActive flips the active flag without touching tokens.
func (s *ConnectionStore) SetConnectionActive(
	ctx context.Context, tenantID string, provider domain.ProviderType, active bool,
) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE calendar_connections SET is_active = ?, updated_at = ?
		 WHERE tenant_id = ? AND provider = ?`,
		boolToInt(active), time.Now().Unix(), tenantID, string(provider))
	if err != nil {
		return fmt.Errorf("set connection active: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanConnection(row scanner) (*domain.CalendarConnection, error) {
	var (
		conn             domain.CalendarConnection
		provider         string
		expiry, isActive int64
		created, updated int64
	)
	err := row.Scan(&conn.TenantID, &provider, &conn.ExternalCalendarID,
		&conn.AccessToken, &conn.RefreshToken, &expiry, &isActive,
		&conn.ClientID, &conn.ClientSecret, &created, &updated)
	if err != nil {
		return nil, err
	}

	conn.Provider = domain.ProviderType(provider)
	conn.TokenExpiry = time.Unix(expiry, 0)
	conn.IsActive = isActive != 0
	conn.CreatedAt = time.Unix(created, 0)
	conn.UpdatedAt = time.Unix(updated, 0)
	return &conn, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
