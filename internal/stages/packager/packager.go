package packager

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/pkg/constants"
	"github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/utils"
)

// Packager owns the per-run working directory: it creates it, stores the
// wrapped source and removes everything once the run is over.
type Packager interface {
	PrepareWorkDir(runID string) (*WorkDirConfig, error)
	WriteSource(cfg *WorkDirConfig, sourcePath string, source string) error
	Cleanup(cfg *WorkDirConfig) error
}

type WorkDirConfig struct {
	RunID      string
	DirPath    string
	SourcePath string
}

type packager struct {
	workRoot string
	logger   *zap.SugaredLogger
}

func NewPackager(workRoot string) Packager {
	if workRoot == "" {
		workRoot = constants.DefaultWorkRoot
	}
	return &packager{
		workRoot: workRoot,
		logger:   logger.NewNamedLogger("packager"),
	}
}

// PrepareWorkDir creates a directory that no other run shares. It fails if
// the directory already exists.
func (p *packager) PrepareWorkDir(runID string) (*WorkDirConfig, error) {
	if err := os.MkdirAll(p.workRoot, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create work root %s: %w", errors.ErrWorkDir, p.workRoot, err)
	}

	dir, err := filepath.Abs(filepath.Join(p.workRoot, constants.WorkDirPrefix+runID))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrWorkDir, err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create %s: %w", errors.ErrWorkDir, dir, err)
	}

	p.logger.Infof("[RunID: %s] Created working directory %s", runID, dir)
	return &WorkDirConfig{RunID: runID, DirPath: dir}, nil
}

func (p *packager) WriteSource(cfg *WorkDirConfig, sourcePath string, source string) error {
	if filepath.Dir(sourcePath) != cfg.DirPath {
		return fmt.Errorf("%w: source %s is outside %s", errors.ErrWorkDir, sourcePath, cfg.DirPath)
	}
	if err := os.WriteFile(sourcePath, []byte(source), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write source: %w", errors.ErrWorkDir, err)
	}

	cfg.SourcePath = sourcePath
	return nil
}

func (p *packager) Cleanup(cfg *WorkDirConfig) error {
	if cfg == nil || cfg.DirPath == "" {
		return nil
	}
	if err := utils.RemoveIO(cfg.DirPath, true, false); err != nil {
		p.logger.Warnf("[RunID: %s] Failed to remove working directory %s: %s", cfg.RunID, cfg.DirPath, err)
		return fmt.Errorf("%w: %w", errors.ErrWorkDir, err)
	}

	p.logger.Infof("[RunID: %s] Removed working directory %s", cfg.RunID, cfg.DirPath)
	return nil
}
