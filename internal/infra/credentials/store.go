package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fieldreport/internal/infra"
	"fieldreport/internal/sqlinline"
)

// ProviderSMTP keys the mail account password in integration_tokens.
const ProviderSMTP = "smtp"

// Store reads and writes integration secrets kept in the database, so an
// SMTP password does not have to live in the process environment.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// SMTPPassword returns the stored mail password, or "" when none is stored.
func (s *Store) SMTPPassword(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderSMTP)
}

// SetSMTPPassword stores the mail password for user.
func (s *Store) SetSMTPPassword(ctx context.Context, user, password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("smtp password is required")
	}
	return s.upsert(ctx, ProviderSMTP, password, map[string]any{"user": strings.TrimSpace(user)})
}

// Token returns the trimmed token of a provider. A missing row is not an error.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("credentials: %s: %w", provider, err)
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
