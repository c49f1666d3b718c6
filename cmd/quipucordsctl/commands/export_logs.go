package commands

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/internal/config"
	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
	"github.com/quipucords/quipucordsctl/internal/shell"
)

// NewExportLogsCommand creates the export-logs command.
func NewExportLogsCommand(cfg *config.Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export-logs",
		Short: "Export server logs into a compressed archive",
		Long: "Collect journal output for the server's services and the server's\n" +
			"own log files into a tar.gz archive for support and debugging.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = fmt.Sprintf("%s-logs-%s.tar.gz",
					config.ServerSoftwarePackage, time.Now().Format("20060102-150405"))
			}
			if err := runExportLogs(cmd.Context(), newRuntime(cfg), output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logs were exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "path of the archive to write")
	return cmd
}

func runExportLogs(ctx context.Context, rt *runtime, output string) error {
	stagingDir, err := os.MkdirTemp("", config.ProgramName+"-logs-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(stagingDir)

	collected := 0
	collected += exportJournals(ctx, rt, stagingDir)
	collected += copyServerLogs(rt, stagingDir)

	if collected == 0 {
		return qcerrors.UserError{
			Message:    "No logs could be collected.",
			Suggestion: "Check that the server is installed and has run at least once",
		}
	}
	rt.logger.Info("Collected %d log files.", collected)

	return writeArchive(stagingDir, output)
}

// exportJournals captures journal output for each server service. A service
// with no journal entries is skipped, not an error.
func exportJournals(ctx context.Context, rt *runtime, stagingDir string) int {
	timeout := time.Duration(config.DefaultJournalctlTimeoutSeconds) * time.Second
	collected := 0
	for _, service := range config.SystemdServiceNames {
		path := filepath.Join(stagingDir, strings.TrimSuffix(service, ".service")+".journal.log")
		file, err := os.Create(path)
		if err != nil {
			rt.logger.Warn("Could not create %s: %v", path, err)
			continue
		}
		_, _, runErr := rt.runner.Run(ctx, shell.Request{
			Argv:    []string{"journalctl", "--user", "--no-pager", "-u", service},
			Stdout:  file,
			Timeout: timeout,
		})
		closeErr := file.Close()
		if runErr != nil || closeErr != nil {
			rt.logger.Warn("Could not export the journal for %s.", service)
			os.Remove(path)
			continue
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			os.Remove(path)
			continue
		}
		collected++
	}
	return collected
}

// copyServerLogs copies the server's own log tree into the staging dir,
// preserving relative paths.
func copyServerLogs(rt *runtime, stagingDir string) int {
	logDir := filepath.Join(rt.cfg.ServerDataDir, "log")
	collected := 0
	walkErr := filepath.WalkDir(logDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(logDir, path)
		if relErr != nil {
			return nil
		}
		dest := filepath.Join(stagingDir, "server", rel)
		if copyErr := copyFile(path, dest); copyErr != nil {
			rt.logger.Warn("Could not copy %s: %v", path, copyErr)
			return nil
		}
		collected++
		return nil
	})
	if walkErr != nil {
		rt.logger.Debug("Server log directory %s is not readable: %v", logDir, walkErr)
	}
	return collected
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// writeArchive packs the staging directory's contents into a gzipped tar.
func writeArchive(stagingDir, output string) error {
	archive, err := os.Create(output)
	if err != nil {
		return err
	}

	gzWriter := gzip.NewWriter(archive)
	tarWriter := tar.NewWriter(gzWriter)

	walkErr := filepath.WalkDir(stagingDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(stagingDir, path)
		if err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		header := &tar.Header{
			Name:    filepath.ToSlash(rel),
			Mode:    0o644,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		_, copyErr := io.Copy(tarWriter, file)
		file.Close()
		return copyErr
	})

	if err := tarWriter.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := gzWriter.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := archive.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		os.Remove(output)
	}
	return walkErr
}
