package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/secrets"
)

var smtpPasswordCmd = &cobra.Command{
	Use:   "smtp-password",
	Short: "Manage the SMTP password in the OS keychain",
	Long: fmt.Sprintf(`Stores the password for notification.email in the OS keychain so it does
not have to live in the config file. %s takes precedence when set.`, secrets.SMTPPasswordEnv),
}

var smtpPasswordSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Read a password from stdin and store it",
	RunE:  runSMTPPasswordSet,
}

var smtpPasswordDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored password",
	RunE:  runSMTPPasswordDelete,
}

func init() {
	smtpPasswordCmd.AddCommand(smtpPasswordSetCmd, smtpPasswordDeleteCmd)
	rootCmd.AddCommand(smtpPasswordCmd)
}

func smtpAccount() (string, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return "", err
	}
	ec := cfg.Notification.Email
	if ec.Username == "" || ec.Host == "" {
		return "", errors.New("notification.email.host and username must be set in the config")
	}
	return secrets.SMTPKeyringAccount(ec.Username, ec.Host), nil
}

func runSMTPPasswordSet(cmd *cobra.Command, args []string) error {
	account, err := smtpAccount()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", account)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading password: %w", err)
	}
	if err := secrets.SetSMTPPassword(account, strings.TrimRight(line, "\r\n")); err != nil {
		return fmt.Errorf("storing password: %w", err)
	}
	fmt.Fprintln(os.Stderr, "stored")
	return nil
}

func runSMTPPasswordDelete(cmd *cobra.Command, args []string) error {
	account, err := smtpAccount()
	if err != nil {
		return err
	}
	if err := secrets.DeleteSMTPPassword(account); err != nil {
		return fmt.Errorf("deleting password: %w", err)
	}
	fmt.Fprintln(os.Stderr, "deleted")
	return nil
}
