package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage"
)

// passwordEnv supplies the backup password without putting it on the command line.
const passwordEnv = "TCG_BACKUP_PASSWORD"

var (
	backupDir     string
	backupName    string
	backupEncrypt bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up and restore the catalog and run history",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a backup of the database",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		dir, err := resolveBackupDir()
		if err != nil {
			return err
		}
		opts := storage.BackupOptions{Dir: dir, Name: backupName}
		if backupEncrypt {
			enc, err := backupEncryption()
			if err != nil {
				return err
			}
			opts.Encryption = enc
		}

		path, err := a.db.Backup(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Printf("Backup written to %s\n", path)
		return nil
	}),
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, err := resolveBackupDir()
		if err != nil {
			return err
		}
		backups, err := storage.ListBackups(dir)
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Printf("No backups in %s\n", dir)
			return nil
		}

		fmt.Println("Backups")
		fmt.Println("=======")
		for _, b := range backups {
			lock := ""
			if b.Encrypted {
				lock = " (encrypted)"
			}
			fmt.Printf("  %s  %-32s %8d bytes  %s%s\n",
				b.ModTime.Format("2006-01-02 15:04"), b.Name, b.Size, b.Checksum[:min(12, len(b.Checksum))], lock)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace the database with a backup",
	Long: `Replaces the database with a backup. The current database is kept next to
it with an .old.<timestamp> suffix. Encrypted backups read the password from
` + passwordEnv + `.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := cfg.DBPath()
		if err != nil {
			return err
		}

		var enc *storage.EncryptionConfig
		if encrypted, err := storage.IsEncrypted(args[0]); err != nil {
			return fmt.Errorf("failed to read backup: %w", err)
		} else if encrypted {
			if enc, err = backupEncryption(); err != nil {
				return err
			}
		}

		if err := storage.Restore(cmd.Context(), args[0], dbPath, enc); err != nil {
			return err
		}
		logger.Info("database restored", zap.String("backup", args[0]), zap.String("db", dbPath))
		fmt.Printf("Restored %s from %s\n", dbPath, args[0])
		return nil
	},
}

func init() {
	backupCmd.PersistentFlags().StringVar(&backupDir, "dir", "", "Backup directory (default: storage.backup_dir, or backups/ next to the database)")
	backupCreateCmd.Flags().StringVar(&backupName, "name", "", "Backup file name without extension (default: timestamp)")
	backupCreateCmd.Flags().BoolVar(&backupEncrypt, "encrypt", false, "Encrypt the backup with the password from "+passwordEnv)

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}

func resolveBackupDir() (string, error) {
	if backupDir != "" {
		return backupDir, nil
	}
	if dir, err := cfg.BackupDir(); err != nil || dir != "" {
		return dir, err
	}
	dbPath, err := cfg.DBPath()
	if err != nil {
		return "", err
	}
	return storage.DefaultBackupDir(dbPath), nil
}

func backupEncryption() (*storage.EncryptionConfig, error) {
	password := os.Getenv(passwordEnv)
	if password == "" {
		return nil, fmt.Errorf("%s must be set for encrypted backups", passwordEnv)
	}
	return storage.DefaultEncryptionConfig(password), nil
}
