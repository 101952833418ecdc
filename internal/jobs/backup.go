package jobs

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const backupKeep = 7

// BackupJob archives the upload directory into a timestamped tarball.
// Old archives beyond a retention count are pruned after each run.
type BackupJob struct {
	schedule  string
	uploadDir string
	backupDir string
	logger    *slog.Logger
}

func NewBackupJob(schedule, uploadDir, backupDir string, logger *slog.Logger) *BackupJob {
	return &BackupJob{
		schedule:  schedule,
		uploadDir: uploadDir,
		backupDir: backupDir,
		logger:    logger,
	}
}

func (j *BackupJob) Schedule() string {
	return j.schedule
}

func (j *BackupJob) Run() {
	start := time.Now()
	name := fmt.Sprintf("backup-%s.tar.gz", start.UTC().Format("20060102-150405"))
	dest := filepath.Join(j.backupDir, name)

	if err := os.MkdirAll(j.backupDir, 0o755); err != nil {
		j.logger.Error("backup: create backup dir", "error", err)
		return
	}

	if err := j.archive(dest); err != nil {
		j.logger.Error("backup failed", "error", err)
		os.Remove(dest)
		return
	}

	if err := j.prune(); err != nil {
		j.logger.Warn("backup: prune old archives", "error", err)
	}

	j.logger.Info("backup complete",
		"archive", dest,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (j *BackupJob) archive(dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	err = filepath.WalkDir(j.uploadDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(j.uploadDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("walk upload dir: %w", err)
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return out.Close()
}

func (j *BackupJob) prune() error {
	entries, err := os.ReadDir(j.backupDir)
	if err != nil {
		return err
	}

	var archives []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "backup-") && strings.HasSuffix(e.Name(), ".tar.gz") {
			archives = append(archives, e.Name())
		}
	}
	if len(archives) <= backupKeep {
		return nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(archives)
	for _, name := range archives[:len(archives)-backupKeep] {
		if err := os.Remove(filepath.Join(j.backupDir, name)); err != nil {
			return err
		}
	}
	return nil
}
