// Command token issues a signed access token for local testing and for
// service accounts. Login is handled outside the ledger.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/auth"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/config"
	"github.com/google/uuid"
)

func main() {
	var (
		role   string
		userID string
		branch string
		ttl    time.Duration
	)
	flag.StringVar(&role, "role", "OWNER", "OWNER, EMPLOYEE or CUSTOMER")
	flag.StringVar(&userID, "user", "", "User ID (random when empty)")
	flag.StringVar(&branch, "branch", "", "Branch ID, required for EMPLOYEE")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (default: jwt.access_token_expiration)")
	flag.Parse()

	if err := run(role, userID, branch, ttl); err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
}

func run(role, userID, branch string, ttl time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	id := uuid.New()
	if userID != "" {
		if id, err = uuid.Parse(userID); err != nil {
			return fmt.Errorf("invalid -user: %w", err)
		}
	}

	var branchID *uuid.UUID
	if branch != "" {
		parsed, err := uuid.Parse(branch)
		if err != nil {
			return fmt.Errorf("invalid -branch: %w", err)
		}
		branchID = &parsed
	}

	actor := shared.NewActor(id, shared.Role(strings.ToUpper(role)), branchID)
	token, err := auth.NewJWTService(cfg.JWT).GenerateAccessToken(actor, ttl)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*auth.IssuedToken
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}{token, actor.ID.String(), string(actor.Role)})
}
