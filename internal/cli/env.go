package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/MZiaRAwan/PF-Project/internal/runner"
)

// Environment variables supplying flag defaults. Values already set in the
// process environment win over the env file.
const (
	EnvDB       = "TRAINSIM_DB"
	EnvAddr     = "TRAINSIM_ADDR"
	EnvMaxTicks = "TRAINSIM_MAX_TICKS"
)

// DefaultAddr is the observer listen address when neither --addr nor
// TRAINSIM_ADDR is set.
const DefaultAddr = ":8080"

// loadEnv reads path into the environment. A missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func envOr(flag, key, fallback string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// maxTicks resolves --max-ticks, then TRAINSIM_MAX_TICKS, then the runner
// default.
func maxTicks(flag int64) (int64, error) {
	if flag > 0 {
		return flag, nil
	}
	v := os.Getenv(EnvMaxTicks)
	if v == "" {
		return runner.DefaultMaxTicks, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s=%q: want a positive integer", EnvMaxTicks, v)
	}
	return n, nil
}
