package config

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// loadEnvFiles fills unset variables from the first of paths that exist,
// plus ENV_FILE when set. Real environment variables always win. It
// returns the files that were applied.
func loadEnvFiles(paths ...string) []string {
	if explicit := os.Getenv("ENV_FILE"); explicit != "" {
		paths = append([]string{explicit}, paths...)
	}
	var applied []string
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			log.Printf("config: skipping env file %s: %v", path, err)
			continue
		}
		for key, val := range values {
			if _, set := os.LookupEnv(key); !set {
				_ = os.Setenv(key, val)
			}
		}
		applied = append(applied, path)
	}
	return applied
}
