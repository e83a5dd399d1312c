package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/robotalks/ethlink/pkg/l0/link"
)

var okColor = color.New(color.FgGreen).SprintFunc()

func init() {
	rootCmd.AddCommand(pingCmd, waitCmd)
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Handshake with the board, this side first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return session("ping", func(ctx context.Context, l *link.Link) error {
			if err := l.SyncAckFirst(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okColor("board is alive"))
			return nil
		})
	},
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the board handshake",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return session("wait", func(ctx context.Context, l *link.Link) error {
			if err := l.SyncAckLast(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okColor("board is alive"))
			return nil
		})
	},
}
