package app

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
)

// SnapshotPath resolves the file a snapshot request writes to.
func (app *Application) SnapshotPath(name string) string {
	if name != SnapshotAuto {
		return name
	}
	cfg := app.cfgm.Current()
	file := fmt.Sprintf("%s-%s.png", cfg.Snapshot.Prefix, app.session[:8])
	return filepath.Join(cfg.Snapshot.Dir, file)
}

// WriteSnapshot captures the visible screen and writes it as a PNG.
// It returns the path written.
func (app *Application) WriteSnapshot(name string) (string, error) {
	path := app.SnapshotPath(name)

	img, err := app.screen.CaptureSnapshot()
	if err != nil {
		return "", NewComponentError("snapshot", "capture", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", NewComponentError("snapshot", "create dir", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", NewComponentError("snapshot", "create", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return "", NewComponentError("snapshot", "encode", err)
	}
	if err := f.Close(); err != nil {
		return "", NewComponentError("snapshot", "close", err)
	}
	return path, nil
}
