// Package main generates bearer tokens for local development and testing.
// Tokens are signed with the dev key and will NOT work in production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"skillproof/internal/tokens"
)

// Dev signing key, matches config.go when JWT_SIGNING_KEY is not set.
const devSigningKey = "dev-secret-key-change-in-production"

type tokenOutput struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	Subject   string `json:"subject"`
	TeamID    string `json:"team_id,omitempty"`
	ExpiresIn string `json:"expires_in"`
}

func main() {
	candidateCmd := flag.NewFlagSet("candidate", flag.ExitOnError)
	candidateID := candidateCmd.String("candidate-id", "", "Candidate ID (UUID). Generated if empty.")
	candidateTeam := candidateCmd.String("team-id", "", "Team ID (UUID). Generated if empty.")
	candidateTTL := candidateCmd.Duration("ttl", 15*time.Minute, "Token time-to-live")
	candidateJSON := candidateCmd.Bool("json", false, "Output as JSON")

	issuerCmd := flag.NewFlagSet("issuer", flag.ExitOnError)
	issuerID := issuerCmd.String("issuer-id", "", "Issuer ID (UUID). Generated if empty.")
	issuerTTL := issuerCmd.Duration("ttl", 15*time.Minute, "Token time-to-live")
	issuerJSON := issuerCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	key := devSigningKey
	if env := os.Getenv("JWT_SIGNING_KEY"); env != "" {
		key = env
	}

	switch os.Args[1] {
	case "candidate":
		_ = candidateCmd.Parse(os.Args[2:])
		svc := tokens.New(key, "skillproof", *candidateTTL)
		subject := orUUID(*candidateID)
		team := orUUID(*candidateTeam)
		token, err := svc.IssueCandidateToken(subject, team)
		if err != nil {
			fail(err)
		}
		emit(*candidateJSON, tokenOutput{
			Token: token, Role: "candidate", Subject: subject, TeamID: team,
			ExpiresIn: candidateTTL.String(),
		})
	case "issuer":
		_ = issuerCmd.Parse(os.Args[2:])
		svc := tokens.New(key, "skillproof", *issuerTTL)
		subject := orUUID(*issuerID)
		token, err := svc.IssueIssuerToken(subject)
		if err != nil {
			fail(err)
		}
		emit(*issuerJSON, tokenOutput{
			Token: token, Role: "issuer", Subject: subject,
			ExpiresIn: issuerTTL.String(),
		})
	default:
		usage()
		os.Exit(2)
	}
}

func orUUID(s string) string {
	if s != "" {
		return s
	}
	return uuid.NewString()
}

func emit(asJSON bool, out tokenOutput) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}
	fmt.Println(out.Token)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: tokengen <candidate|issuer> [flags]

  candidate  issue a candidate token (carries candidate and team IDs)
  issuer     issue an issuer token

Run "tokengen <subcommand> -h" for flags.`)
}
