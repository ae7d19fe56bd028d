package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/ramsesyok/billiards/internal/middleware"
)

// Prints the ADMIN_TOKEN_HASH for ADMIN_TOKEN, generating a token when none
// is set.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	token := os.Getenv("ADMIN_TOKEN")
	generated := false
	if token == "" {
		buf := make([]byte, 24)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("Failed to generate admin token: %v", err)
		}
		token = hex.EncodeToString(buf)
		generated = true
	}

	hash, err := middleware.HashAdminToken(token)
	if err != nil {
		log.Fatalf("Failed to hash admin token: %v", err)
	}

	if generated {
		log.Printf("Generated admin token: %s", token)
		log.Println("Send it as the X-Admin-Token header; it is not stored anywhere.")
	}
	fmt.Printf("ADMIN_TOKEN_HASH=%s\n", hash)
}
