package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ccsnap/internal/app"
)

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		passphrase, err := readPassphrase("Passphrase for the private key: ", true)
		if err != nil {
			return err
		}
		if err := app.InitKeys(cfg.Encryption, passphrase); err != nil {
			return err
		}

		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s (passphrase protected)\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// decrypt command
var decryptCmd = &cobra.Command{
	Use:   "decrypt FILE",
	Short: "Decrypt an encrypted export or backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer in.Close()

		passphrase, err := readPassphrase("Passphrase: ", false)
		if err != nil {
			return err
		}

		var out io.Writer = os.Stdout
		if output != "" && output != "-" {
			f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			out = f
		}

		if err := app.Decrypt(cfg.Encryption, passphrase, in, out); err != nil {
			if output != "" && output != "-" {
				os.Remove(output)
			}
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysInitCmd)

	rootCmd.AddCommand(decryptCmd)
	decryptCmd.Flags().StringP("output", "o", "", "Write plaintext to file instead of stdout")
}
