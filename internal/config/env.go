package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Env holds process-wide settings resolved once at startup and passed to
// the components that need them.
type Env struct {
	MagickPath string
	ConfigPath string
	OutputDir  string
	TempDir    string
	// DotEnv reports whether a .env file was loaded.
	DotEnv bool
}

// LoadEnv reads .env from the working directory when present and resolves
// each setting from the environment, falling back to paths next to the
// executable.
func LoadEnv() Env {
	loaded := godotenv.Load() == nil
	root := executableDir()

	return Env{
		MagickPath: getEnv("WIRTHMAGE_MAGICK", filepath.Join(root, "lib", "ImageMagick")),
		ConfigPath: getEnv("WIRTHMAGE_CONFIG", filepath.Join(root, "config.json")),
		OutputDir:  getEnv("WIRTHMAGE_OUTPUT", filepath.Join(root, "output")),
		TempDir:    getEnv("WIRTHMAGE_TEMP", os.TempDir()),
		DotEnv:     loaded,
	}
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
