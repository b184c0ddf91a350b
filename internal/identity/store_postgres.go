package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"skillproof/internal/sentinel"
	id "skillproof/pkg/domain"
)

// PostgresStore persists teams and issuers in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed identity store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindTeam(ctx context.Context, teamID id.TeamID) (Team, error) {
	query := `
		SELECT id, name, did, created_at
		FROM teams
		WHERE id = $1
	`
	var (
		team   Team
		idStr  string
		didStr sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, teamID.String()).Scan(&idStr, &team.Name, &didStr, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Team{}, sentinel.ErrNotFound
		}
		return Team{}, fmt.Errorf("find team: %w", err)
	}
	parsedID, err := id.ParseTeamID(idStr)
	if err != nil {
		return Team{}, fmt.Errorf("scan team id: %w", err)
	}
	team.ID = parsedID
	if didStr.Valid {
		did, err := id.ParseDID(didStr.String)
		if err != nil {
			return Team{}, fmt.Errorf("scan team did: %w", err)
		}
		team.DID = &did
	}
	return team, nil
}

func (s *PostgresStore) FindIssuer(ctx context.Context, issuerID id.IssuerID) (Issuer, error) {
	query := `
		SELECT id, name, status, did, created_at
		FROM issuers
		WHERE id = $1
	`
	var (
		issuer Issuer
		idStr  string
		status string
		didStr sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, issuerID.String()).Scan(&idStr, &issuer.Name, &status, &didStr, &issuer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Issuer{}, sentinel.ErrNotFound
		}
		return Issuer{}, fmt.Errorf("find issuer: %w", err)
	}
	parsedID, err := id.ParseIssuerID(idStr)
	if err != nil {
		return Issuer{}, fmt.Errorf("scan issuer id: %w", err)
	}
	issuer.ID = parsedID
	issuer.Status = IssuerStatus(status)
	if didStr.Valid {
		did, err := id.ParseDID(didStr.String)
		if err != nil {
			return Issuer{}, fmt.Errorf("scan issuer did: %w", err)
		}
		issuer.DID = &did
	}
	return issuer, nil
}

func (s *PostgresStore) SaveTeam(ctx context.Context, team Team) error {
	query := `
		INSERT INTO teams (id, name, did, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			did = EXCLUDED.did
	`
	_, err := s.db.ExecContext(ctx, query, team.ID.String(), team.Name, didOrNull(team.DID), team.CreatedAt)
	if err != nil {
		return fmt.Errorf("save team: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveIssuer(ctx context.Context, issuer Issuer) error {
	query := `
		INSERT INTO issuers (id, name, status, did, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			did = EXCLUDED.did
	`
	_, err := s.db.ExecContext(ctx, query, issuer.ID.String(), issuer.Name, string(issuer.Status), didOrNull(issuer.DID), issuer.CreatedAt)
	if err != nil {
		return fmt.Errorf("save issuer: %w", err)
	}
	return nil
}

func didOrNull(did *id.DID) sql.NullString {
	if did == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: did.String(), Valid: true}
}
