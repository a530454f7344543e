package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tmarchal/scriba/internal/updater"
)

var upgradeCheck bool

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade scriba to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		if upgradeCheck {
			release, available, err := updater.CheckUpdate()
			if err != nil {
				return err
			}
			if !available {
				fmt.Println("Already up to date.")
				return nil
			}
			fmt.Printf("New version available: %s\n", release.Version())
			fmt.Println("Run 'scriba upgrade' to install it.")
			return nil
		}
		return updater.Update()
	},
}

func init() {
	upgradeCmd.Flags().BoolVar(&upgradeCheck, "check", false, "only check whether a newer release exists")
	rootCmd.AddCommand(upgradeCmd)
}
