package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadEnvFile loads the first of .env / .env.local found in dir.
// Existing process environment variables are not overwritten.
func loadEnvFile(dir string) error {
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", path)
		return nil
	}
	return fmt.Errorf("no .env file found in %s", dir)
}
