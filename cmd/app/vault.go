package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/tasktrack/internal/config"
	"github.com/akyairhashvil/tasktrack/internal/database"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

const passphraseEnv = config.EnvPrefix + "EXPORT_PASSPHRASE"

// exportPassphrase reads the passphrase from the environment or prompts twice.
func exportPassphrase() (string, error) {
	if pass := os.Getenv(passphraseEnv); pass != "" {
		return pass, util.ValidatePassphrase(pass, config.MinPassphraseChars)
	}
	for tries := 0; tries < 3; tries++ {
		pass, err := promptForKey("Export passphrase: ")
		if err != nil {
			return "", err
		}
		if err := util.ValidatePassphrase(pass, config.MinPassphraseChars); err != nil {
			fmt.Fprintf(os.Stderr, "Passphrase too weak: %v\n", err)
			continue
		}
		confirm, err := promptForKey("Repeat passphrase: ")
		if err != nil {
			return "", err
		}
		if confirm != pass {
			fmt.Fprintln(os.Stderr, "Passphrases do not match.")
			continue
		}
		return pass, nil
	}
	return "", errors.New("no valid passphrase entered")
}

func newExportCmd(a *app) *cobra.Command {
	var out string
	var encrypt bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the whole board to a JSON vault file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			opts := database.ExportOptions{EncryptOutput: encrypt}
			if encrypt {
				if opts.Passphrase, err = exportPassphrase(); err != nil {
					return err
				}
			}
			data, err := db.ExportVault(ctx, opts)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(a.cfg.ReportsDir, fmt.Sprintf("%s-export-%s.json", config.AppName, time.Now().Format("20060102-150405")))
			}
			cleanupStaleArtifacts(out)
			if err := writeFileAtomic(out, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Export written: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file")
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "encrypt with a passphrase (argon2id + AES-GCM)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the board with a vault file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			pass := os.Getenv(passphraseEnv)
			err = db.ImportVault(ctx, data, pass)
			for tries := 0; errors.Is(err, database.ErrEncryptedExport) || (errors.Is(err, database.ErrWrongPassphrase) && tries < 3); tries++ {
				if pass, err = promptForKey("Import passphrase: "); err != nil {
					return err
				}
				if pass == "" {
					return database.ErrEncryptedExport
				}
				err = db.ImportVault(ctx, data, pass)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", args[0])
			return nil
		},
	}
}
