package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"contractguard-web/internal/bootstrap"
	"contractguard-web/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Read or change the stored colour theme",
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the active theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTheme(cmd, func(svc *theme.Service) (theme.Theme, error) {
			return svc.Current(), nil
		})
	},
}

var themeSetCmd = &cobra.Command{
	Use:       "set [light|dark]",
	Short:     "Store a theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(theme.Light), string(theme.Dark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		t, ok := theme.Parse(args[0])
		if !ok {
			return theme.ErrInvalidTheme
		}
		return withTheme(cmd, func(svc *theme.Service) (theme.Theme, error) {
			return t, svc.Set(t)
		})
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTheme(cmd, func(svc *theme.Service) (theme.Theme, error) {
			return svc.Toggle()
		})
	},
}

func init() {
	themeCmd.AddCommand(themeGetCmd, themeSetCmd, themeToggleCmd)
}

func withTheme(cmd *cobra.Command, fn func(*theme.Service) (theme.Theme, error)) error {
	svc, closeTheme, err := bootstrap.NewThemeService(cfg.ThemeFile)
	if err != nil {
		return err
	}
	defer closeTheme()

	t, err := fn(svc)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]string{"theme": string(t)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), t)
	return nil
}
