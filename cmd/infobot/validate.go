package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m3rciful/infobot/core/telegram/format"
	"github.com/m3rciful/infobot/internal/bot"
	"github.com/m3rciful/infobot/internal/config"
	"github.com/m3rciful/infobot/internal/content"
	"github.com/m3rciful/infobot/internal/navigation"
)

func newValidateCmd() *cobra.Command {
	var (
		path     string
		pageSize int
		markup   string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate a content bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pageSize < 1 || pageSize > config.MaxPageSize {
				return fmt.Errorf("--page-size must be between 1 and %d", config.MaxPageSize)
			}
			c, err := content.Load(path, content.WithTopicKeys(navigation.IsDetailKey))
			if err != nil {
				return err
			}
			screens, err := bot.CheckScreens(c, pageSize, format.New(markup))
			if err != nil {
				return err
			}
			source := path
			if source == "" {
				source = "embedded bundle"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok\n", source)
			fmt.Fprintf(out, "  %s: %d (%d pages of %d)\n", c.ListNoun(), c.Len(), navigation.PageCount(c.Len(), pageSize), pageSize)
			fmt.Fprintf(out, "  topics: %d\n", len(c.Topics()))
			fmt.Fprintf(out, "  screens checked: %d\n", screens)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "content", "", "bundle to validate (default: the embedded bundle)")
	cmd.Flags().StringVar(&markup, "format", "html", "markup dialect used to render screens: html, markdown or plain")
	cmd.Flags().IntVar(&pageSize, "page-size", config.DefaultPageSize, "page size used for the page count")
	return cmd
}
