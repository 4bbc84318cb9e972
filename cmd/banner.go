package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var bannerCmd = &cobra.Command{
	Use:   "banner",
	Short: "Show or hide the dashboard welcome banner",
}

var bannerDismissCmd = &cobra.Command{
	Use:   "dismiss",
	Short: "Hide the welcome banner",
	RunE: func(_ *cobra.Command, _ []string) error {
		return setBanner(true)
	},
}

var bannerResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Show the welcome banner again",
	RunE: func(_ *cobra.Command, _ []string) error {
		return setBanner(false)
	},
}

func init() {
	bannerCmd.AddCommand(bannerDismissCmd, bannerResetCmd)
	rootCmd.AddCommand(bannerCmd)
}

func setBanner(dismissed bool) error {
	data, err := openData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	if dismissed {
		data.store.SetBannerDismissed(true)
		fmt.Println("  Welcome banner dismissed.")
	} else {
		data.store.ResetBanner()
		fmt.Println("  Welcome banner will show on the dashboard.")
	}
	return nil
}
