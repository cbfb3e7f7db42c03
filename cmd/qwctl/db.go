package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/garnizeh/quantumwork/internal/app"
)

var sqliteHeader = []byte("SQLite format 3\x00")

func newMigrateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			d, err := app.OpenDB(cmd.Context(), cfg, true, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Database migrated.")
			return nil
		},
	}
}

func newBackupCmd(g *globals) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a consistent copy of the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.DatabasePath + ".bak"
			}
			d, err := app.OpenDB(cmd.Context(), cfg, false, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Backup(cmd.Context(), out); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Database backup written to %s.\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "backup file (default <database_path>.bak); must not exist")

	return cmd
}

func newRestoreCmd(g *globals) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the database with a backup; stop the server first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := g.load()
			if err != nil {
				return err
			}
			if in == "" {
				in = cfg.DatabasePath + ".bak"
			}
			if err := restoreFile(in, cfg.DatabasePath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Database restored from %s.\n", in)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in, "input", "i", "", "backup file (default <database_path>.bak)")

	return cmd
}

// restoreFile copies src over dst through a temporary file in dst's
// directory, so dst is either the old or the new database.
func restoreFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	head := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, sqliteHeader) {
		return fmt.Errorf("%s is not a sqlite database", src)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".restore-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, f); err != nil {
		tmp.Close()
		return fmt.Errorf("copy backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// stale journal files would be replayed against the restored file
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		_ = os.Remove(dst + suffix)
	}

	return os.Rename(tmp.Name(), dst)
}
