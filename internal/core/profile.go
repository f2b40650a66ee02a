package core

import (
	"os"
	"path/filepath"
)

const (
	profileEnv    = "WHORL_HOME"
	profileDBName = "whorl.db"
)

// Profile locates the persisted settings, contacts and drafts.
type Profile struct {
	Root   string
	DBPath string
}

// ResolveProfile picks the profile directory: an explicit dir, then
// $WHORL_HOME, then ~/.config/whorl. The directory is created if missing.
func ResolveProfile(dir string) (Profile, error) {
	root := dir
	if root == "" {
		root = os.Getenv(profileEnv)
	}
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Profile{}, err
		}
		root = filepath.Join(home, ".config", "whorl")
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return Profile{}, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Profile{}, err
	}
	return Profile{Root: root, DBPath: filepath.Join(root, profileDBName)}, nil
}
