package cmd

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rogersnm/calsync/internal/config"
	"github.com/rogersnm/calsync/internal/mode"
	"github.com/rogersnm/calsync/internal/store"
	"github.com/spf13/cobra"
)

const tokenURL = "https://airtable.com/create/tokens"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure calsync (mode, remote credentials)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetupPrompt(cmd)
	},
}

// runSetupPrompt presents the interactive setup choice.
func runSetupPrompt(cmd *cobra.Command) error {
	var choice string
	err := huh.NewSelect[string]().
		Title("How should calsync store events?").
		Options(
			huh.NewOption("Connect a remote table (cached locally)", "login"),
			huh.NewOption("Create an access token at "+tokenURL, "token"),
			huh.NewOption("Keep everything on this machine", "local"),
		).
		Value(&choice).
		Run()
	if err != nil {
		return fmt.Errorf("run 'calsync config login' to connect a remote table")
	}

	switch choice {
	case "login":
		return configLoginCmd.RunE(cmd, nil)
	case "token":
		openBrowser(tokenURL)
		fmt.Fprintln(cmd.OutOrStdout(), "Opening browser... after creating a token, run: calsync config login")
		return nil
	case "local":
		return setMode(cmd, mode.LocalOnly.String())
	}
	return fmt.Errorf("run 'calsync config login' to connect a remote table")
}

var configLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the remote table credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc := fileCfg.Remote
		flags := cmd.Flags()
		if flags.Changed("base-id") {
			rc.BaseID, _ = flags.GetString("base-id")
		}
		if flags.Changed("api-key") {
			rc.APIKey, _ = flags.GetString("api-key")
		}
		if flags.Changed("table") {
			rc.Table, _ = flags.GetString("table")
		}
		if flags.Changed("api-url") {
			rc.APIURL, _ = flags.GetString("api-url")
		}

		if rc.BaseID == "" || rc.APIKey == "" {
			if rc.Table == "" {
				rc.Table = store.DefaultTable
			}
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Base ID").Placeholder("appXXXXXXXXXXXXXX").Value(&rc.BaseID),
				huh.NewInput().Title("Access token").EchoMode(huh.EchoModePassword).Value(&rc.APIKey),
				huh.NewInput().Title("Table").Value(&rc.Table),
			))
			if err := form.Run(); err != nil {
				return fmt.Errorf("login cancelled")
			}
		}
		rc.BaseID = strings.TrimSpace(rc.BaseID)
		rc.APIKey = strings.TrimSpace(rc.APIKey)
		if rc.BaseID == "" || rc.APIKey == "" {
			return fmt.Errorf("both a base id and an access token are required")
		}

		fileCfg.Remote = rc
		if err := config.Save(dataDir, fileCfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		m := mode.Select(fileCfg.RemoteConfigured(), fileCfg.Mode)
		fmt.Fprintf(cmd.OutOrStdout(), "Remote configured (base %s); mode: %s\n", rc.BaseID, m)
		return nil
	},
}

var configLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the remote credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		fileCfg.Remote.APIKey = ""
		if err := config.Save(dataDir, fileCfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out; events stay in the local cache")
		return nil
	},
}

var configSetModeCmd = &cobra.Command{
	Use:   "set-mode <mode>",
	Short: "Override the storage mode (local-only, remote-only, hybrid, auto)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMode(cmd, args[0])
	},
}

func setMode(cmd *cobra.Command, value string) error {
	if strings.EqualFold(value, "auto") {
		fileCfg.Mode = ""
	} else {
		m, err := mode.Parse(value)
		if err != nil {
			return err
		}
		fileCfg.Mode = m.String()
	}
	if err := config.Save(dataDir, fileCfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	m := mode.Select(fileCfg.RemoteConfigured(), fileCfg.Mode)
	fmt.Fprintf(cmd.OutOrStdout(), "Mode: %s\n", m)
	if fileCfg.Mode != "" && m.String() != fileCfg.Mode {
		fmt.Fprintf(cmd.OutOrStdout(), "(%s needs a remote; run: calsync config login)\n", fileCfg.Mode)
	}
	return nil
}

var configStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		m := mode.Select(cfg.RemoteConfigured(), cfg.Mode)
		override := cfg.Mode
		if override == "" {
			override = "auto"
		}
		fmt.Fprintf(out, "Mode: %s (setting: %s)\n", m, override)
		fmt.Fprintf(out, "Data: %s\n", dataDir)
		fmt.Fprintf(out, "Cache backend: %s\n", cfg.Backend())
		if !cfg.RemoteConfigured() {
			fmt.Fprintln(out, "Remote: not configured. Run: calsync config login")
			return nil
		}
		table := cfg.Remote.Table
		if table == "" {
			table = store.DefaultTable
		}
		apiURL := cfg.Remote.APIURL
		if apiURL == "" {
			apiURL = store.DefaultAPIURL
		}
		fmt.Fprintf(out, "Remote: %s/%s/%s\n", apiURL, cfg.Remote.BaseID, table)
		fmt.Fprintf(out, "API key: %s...\n", cfg.Remote.APIKey[:min(8, len(cfg.Remote.APIKey))])
		return nil
	},
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		cmd.Start()
	}
}

func init() {
	configLoginCmd.Flags().String("base-id", "", "remote base id")
	configLoginCmd.Flags().String("api-key", "", "access token (skips the prompt together with --base-id)")
	configLoginCmd.Flags().String("table", "", "table name (default \""+store.DefaultTable+"\")")
	configLoginCmd.Flags().String("api-url", "", "API root (default "+store.DefaultAPIURL+")")

	configCmd.AddCommand(configLoginCmd)
	configCmd.AddCommand(configLogoutCmd)
	configCmd.AddCommand(configSetModeCmd)
	configCmd.AddCommand(configStatusCmd)
	rootCmd.AddCommand(configCmd)
}
