package config

import (
	"github.com/joho/godotenv"
)

// loadEnvFiles loads environment variables from .env/.env.local if present.
// Existing process environment variables are not overwritten; a missing file
// is not an error.
func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		_ = godotenv.Load(path)
	}
}
