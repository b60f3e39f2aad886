package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const stampLayout = "2006-01-02_15-04-05"

// Scheduler copies the upload directory into a timestamped folder once a
// day and prunes copies older than the retention window.
type Scheduler struct {
	SrcDir    string
	BackupDir string
	Retention time.Duration
	Hour      int
	Minute    int

	now func() time.Time
}

func NewScheduler(srcDir, backupDir string, retention time.Duration, hour int) *Scheduler {
	return &Scheduler{
		SrcDir:    srcDir,
		BackupDir: backupDir,
		Retention: retention,
		Hour:      hour,
		now:       time.Now,
	}
}

// NextRun is the first hour:minute strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// Run blocks until ctx is done, backing up at the scheduled time each day.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := s.NextRun(s.now())
		log.Info().Time("next", next).Msg("⏳ next image backup scheduled")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if dest, err := s.RunOnce(); err != nil {
			log.Error().Err(err).Msg("❌ failed to back up images")
		} else {
			log.Info().Str("dest", dest).Msg("✅ images backed up")
		}
	}
}

// RunOnce takes one backup now and prunes old ones.
func (s *Scheduler) RunOnce() (string, error) {
	now := s.now()
	dest := filepath.Join(s.BackupDir, now.Format(stampLayout))
	if err := copyDir(s.SrcDir, dest); err != nil {
		return "", fmt.Errorf("backup %s: %w", s.SrcDir, err)
	}
	s.cleanupOld(now)
	return dest, nil
}

// copyDir recursively copies a folder
func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, destPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, destPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// cleanupOld removes backup folders whose timestamp name is older than the
// retention window. Folders with other names are left alone.
func (s *Scheduler) cleanupOld(now time.Time) {
	entries, err := os.ReadDir(s.BackupDir)
	if err != nil {
		log.Error().Err(err).Msg("❌ failed to read backup directory")
		return
	}

	cutoff := now.Add(-s.Retention)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		taken, err := time.ParseInLocation(stampLayout, entry.Name(), now.Location())
		if err != nil || !taken.Before(cutoff) {
			continue
		}
		folder := filepath.Join(s.BackupDir, entry.Name())
		if err := os.RemoveAll(folder); err != nil {
			log.Error().Err(err).Str("folder", folder).Msg("❌ failed to remove old backup")
			continue
		}
		log.Info().Str("folder", folder).Msg("🗑️ removed old backup")
	}
}
