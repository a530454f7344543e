package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmarchal/scriba/internal/core/config"
	"github.com/tmarchal/scriba/internal/core/crypto"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Store a Hugging Face token for diarization",
	Long: `Store the Hugging Face access token that the diarization service
needs to fetch pyannote models.

The token is encrypted with a 4-digit PIN of your choosing before it is
written to the config file; you will be asked for the PIN when a run
needs the token.

Get a token at https://huggingface.co/settings/tokens and accept the
pyannote model terms first.`,
	RunE: runAuth,
}

var authRmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Remove the stored Hugging Face token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadOrDefault()
		if cfg.Diarization.HFTokenEncrypted == "" {
			fmt.Println("No token stored.")
			return nil
		}
		cfg.Diarization.HFTokenEncrypted = ""
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println("Token removed.")
		return nil
	},
}

func init() {
	authCmd.AddCommand(authRmCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	token, err := promptHidden("Hugging Face token: ")
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("empty token")
	}

	pin, err := promptHidden("Choose a 4-digit PIN: ")
	if err != nil {
		return err
	}
	if err := crypto.ValidatePIN(pin); err != nil {
		return err
	}
	confirm, err := promptHidden("Confirm PIN: ")
	if err != nil {
		return err
	}
	if confirm != pin {
		return fmt.Errorf("PINs do not match")
	}

	encrypted, err := crypto.Encrypt(token, pin)
	if err != nil {
		return fmt.Errorf("encrypt token: %w", err)
	}

	cfg := config.LoadOrDefault()
	cfg.Diarization.HFTokenEncrypted = encrypted
	if err := cfg.Save(); err != nil {
		return err
	}

	path, _ := config.ConfigPath()
	fmt.Printf("Token stored in %s\n", path)
	return nil
}

// promptHidden reads a line from the terminal without echoing it.
func promptHidden(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// promptHFToken asks for a replacement token after a credential
// failure. Wired into the pipeline's one-shot retry.
func promptHFToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		token string
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		tok, err := promptHidden("Diarization token rejected. Enter a valid Hugging Face token (blank to skip): ")
		ch <- result{tok, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", r.err
		}
		if r.token == "" {
			return "", fmt.Errorf("no token provided")
		}
		return r.token, nil
	}
}
