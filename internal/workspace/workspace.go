package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pagecrop/internal/geometry"
	"git.home.luguber.info/inful/pagecrop/internal/logfields"
)

// ArtifactExt is the extension of every per-page artifact.
const ArtifactExt = ".pdf"

// Manager owns one working area.
type Manager struct {
	baseDir string
	dir     string
}

// NewManager creates a workspace manager rooted at baseDir (os.TempDir when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create creates the working area directory. It fails if the directory
// already exists, so a working area is never shared.
func (m *Manager) Create() error {
	if m.dir != "" {
		return fmt.Errorf("workspace already created: %s", m.dir)
	}
	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace base directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	suffix := uuid.NewString()[:8]
	dir := filepath.Join(m.baseDir, fmt.Sprintf("pagecrop-%s-%s", timestamp, suffix))

	if err := os.Mkdir(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	m.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// GetPath returns the path to the workspace directory
func (m *Manager) GetPath() string {
	return m.dir
}

// ArtifactPath returns the deterministic artifact path for page.
func (m *Manager) ArtifactPath(page int) string {
	return filepath.Join(m.dir, strconv.Itoa(page)+ArtifactExt)
}

// Missing returns the pages of r whose artifact is absent.
func (m *Manager) Missing(r geometry.PageRange) []int {
	var missing []int
	for _, p := range r.Pages() {
		if _, err := os.Stat(m.ArtifactPath(p)); err != nil {
			missing = append(missing, p)
		}
	}
	return missing
}

// Cleanup removes the workspace directory and everything in it.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}
