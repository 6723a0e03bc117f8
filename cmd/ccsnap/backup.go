package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ccsnap/internal/app"
)

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the snapshot database to a vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultName, _ := cmd.Flags().GetString("vault")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		a, err := newApp("backup")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Backup(cmd.Context(), app.BackupOptions{Vault: vaultName, Encrypt: encrypt})
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		fmt.Printf("Backed up %s to vault %s as %s version %d\n",
			humanize.IBytes(uint64(res.Size)), res.Vault, res.Name, res.Version)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List database backups in a vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultName, _ := cmd.Flags().GetString("vault")

		a, err := newApp("backup list")
		if err != nil {
			return err
		}
		defer a.Close()

		backups, err := a.ListBackups(cmd.Context(), vaultName)
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("No backups.")
			return nil
		}

		now := time.Now()
		for _, b := range backups {
			fmt.Printf("%-16s  %10s  %s\n", b.Name, humanize.IBytes(uint64(b.Size)), formatWhen(b.Modified, now))
		}
		return nil
	},
}

var backupGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Download a database backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultName, _ := cmd.Flags().GetString("vault")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = args[0]
		}

		a, err := newApp("backup get")
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		if err := a.FetchBackup(cmd.Context(), vaultName, args[0], f); err != nil {
			f.Close()
			os.Remove(output)
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Printf("Saved %s to %s\n", args[0], output)
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the snapshot database",
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the database schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("db status")
		if err != nil {
			return err
		}
		defer a.Close()

		status, err := a.MigrationStatus()
		if err != nil {
			return err
		}
		fmt.Printf("Database: %s\n", a.DatabasePath())
		fmt.Printf("Schema:   %s\n", status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.PersistentFlags().String("vault", "", "Vault name (default: first configured vault)")
	backupCmd.Flags().Bool("encrypt", false, "Encrypt the backup to the configured public key")
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupGetCmd)
	backupGetCmd.Flags().StringP("output", "o", "", "Destination file (default: NAME)")

	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbStatusCmd)
}
