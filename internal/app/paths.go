package app

import (
	"os"
	"path/filepath"

	"github.com/corey/seek/internal/config"
)

// DirName is the data directory created under the base directory.
const DirName = ".seek"

// Paths holds all resolved filesystem paths for the .seek/ data directory.
type Paths struct {
	Root   string // .seek/
	DB     string // .seek/seek.db
	Config string // .seek/config.yaml

	LogDir string // .seek/log/

	RunDir   string // .seek/run/
	PIDFile  string // .seek/run/daemon.pid
	PortFile string // .seek/run/http.port
}

// NewPaths constructs all resolved paths from a base directory.
func NewPaths(baseDir string) *Paths {
	root := filepath.Join(baseDir, DirName)
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "seek.db"),
		Config: filepath.Join(root, config.FileName),

		LogDir: filepath.Join(root, "log"),

		RunDir:   filepath.Join(root, "run"),
		PIDFile:  filepath.Join(root, "run", "daemon.pid"),
		PortFile: filepath.Join(root, "run", "http.port"),
	}
}

// EnsureDirs creates all subdirectories under .seek/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes the PID and port files. Called on clean shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.PortFile)
}
