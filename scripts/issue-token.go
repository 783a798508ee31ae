package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/studyclip/flashcard-server-go/internal/util"
)

// Mints an API token for a user and prints the SQL to register it.
// Tokens are issued out-of-band; the server only ever sees the hash.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/issue-token.go <user-id> [days-valid]\n")
		os.Exit(1)
	}

	userID := os.Args[1]
	days := 90
	if len(os.Args) > 2 {
		fmt.Sscanf(os.Args[2], "%d", &days)
	}

	token, err := util.GenerateToken()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	expiresAt := time.Now().AddDate(0, 0, days).UTC().Format(time.RFC3339)

	fmt.Printf("token: %s\n\n", token)
	fmt.Printf("INSERT INTO auth_tokens (id, user_id, token_hash, expires_at) VALUES ('%s', '%s', '%s', '%s');\n",
		uuid.NewString(), userID, util.HashToken(token), expiresAt)
}
