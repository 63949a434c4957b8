package download

import (
	"context"

	"github.com/charmbracelet/log"
)

// Installer receives a verified archive from the download cache.
// Extracting archives into the AddOns directory is not implemented; the
// archive in the cache is the final artifact of an update.
type Installer interface {
	InstallArchive(ctx context.Context, archivePath string) error
}

// KeepArchive leaves the archive where it was downloaded
type KeepArchive struct {
	Logger *log.Logger
}

// InstallArchive implements Installer
func (k KeepArchive) InstallArchive(_ context.Context, archivePath string) error {
	if k.Logger != nil {
		k.Logger.Debug("Archive kept in download cache", "path", archivePath)
	}
	return nil
}
