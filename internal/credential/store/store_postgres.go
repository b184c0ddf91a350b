package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"skillproof/internal/credential/models"
	"skillproof/internal/sentinel"
	id "skillproof/pkg/domain"
)

// PostgresStore persists credentials in PostgreSQL. The anchored payload
// column is write-once: updates use COALESCE so an existing vc_json value
// is never replaced or cleared.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const credentialColumns = `
	id, title, category, sub_type, url,
	candidate_id, candidate_name, team_id, issuer_id,
	proof_type, proof_payload,
	status, verified, verified_at, vc_json, created_at
`

func (s *PostgresStore) Create(ctx context.Context, c *models.Credential) error {
	query := `
		INSERT INTO credentials (` + credentialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID.String(), c.Title, string(c.Category), c.SubType, c.URL,
		c.CandidateID.String(), c.CandidateName, c.TeamID.String(), issuerOrNull(c.IssuerID),
		string(c.Proof.Type()), c.Proof.Payload(),
		string(c.Status), c.Verified, c.VerifiedAt, c.VCJSON, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM credentials
		WHERE id = $1
	`
	c, err := scanCredential(s.db.QueryRowContext(ctx, query, credentialID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindByCandidate(ctx context.Context, candidateID id.CandidateID) ([]*models.Credential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM credentials
		WHERE candidate_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, candidateID.String())
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var out []*models.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Credential) error {
	query := `
		UPDATE credentials
		SET title = $2, category = $3, sub_type = $4, url = $5,
			issuer_id = $6, proof_type = $7, proof_payload = $8,
			status = $9, verified = $10, verified_at = $11,
			vc_json = COALESCE(vc_json, $12)
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		c.ID.String(), c.Title, string(c.Category), c.SubType, c.URL,
		issuerOrNull(c.IssuerID), string(c.Proof.Type()), c.Proof.Payload(),
		string(c.Status), c.Verified, c.VerifiedAt, c.VCJSON,
	)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*models.Credential, error) {
	var (
		c            models.Credential
		idStr        string
		category     string
		candidateStr string
		teamStr      string
		issuerStr    sql.NullString
		proofType    string
		proofPayload string
		status       string
	)
	err := row.Scan(
		&idStr, &c.Title, &category, &c.SubType, &c.URL,
		&candidateStr, &c.CandidateName, &teamStr, &issuerStr,
		&proofType, &proofPayload,
		&status, &c.Verified, &c.VerifiedAt, &c.VCJSON, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	credID, err := id.ParseCredentialID(idStr)
	if err != nil {
		return nil, fmt.Errorf("scan credential id: %w", err)
	}
	c.ID = credID
	candidateID, err := id.ParseCandidateID(candidateStr)
	if err != nil {
		return nil, fmt.Errorf("scan candidate id: %w", err)
	}
	c.CandidateID = candidateID
	teamID, err := id.ParseTeamID(teamStr)
	if err != nil {
		return nil, fmt.Errorf("scan team id: %w", err)
	}
	c.TeamID = teamID
	if issuerStr.Valid {
		issuerID, err := id.ParseIssuerID(issuerStr.String)
		if err != nil {
			return nil, fmt.Errorf("scan issuer id: %w", err)
		}
		c.IssuerID = &issuerID
	}
	c.Category, err = models.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	c.Status, err = models.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	c.Proof, err = models.ParseProof(proofType, proofPayload)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func issuerOrNull(issuerID *id.IssuerID) sql.NullString {
	if issuerID == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: issuerID.String(), Valid: true}
}
