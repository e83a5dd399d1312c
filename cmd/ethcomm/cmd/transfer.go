package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/robotalks/ethlink/pkg/l0/link"
	"github.com/robotalks/ethlink/pkg/progress"
	"github.com/robotalks/ethlink/pkg/transfer"
)

var (
	sendFixed bool
	recvSize  int
	chunkSize = transfer.DefaultChunkSize
)

func init() {
	sendCmd.Flags().BoolVar(&sendFixed, "fixed", false, "Board expects the size, don't announce it.")
	recvCmd.Flags().IntVar(&recvSize, "size", 0, "Receive exactly this many bytes, 0 reads the size announced by the board.")
	for _, c := range []*cobra.Command{sendCmd, recvCmd} {
		c.Flags().IntVar(&chunkSize, "chunk-size", chunkSize, "Payload bytes per data frame, must match the board.")
	}
	rootCmd.AddCommand(sendCmd, recvCmd)
}

var sendCmd = &cobra.Command{
	Use:   "send FILE",
	Short: "Send a file to the board",
	Long: `Send a file to the board in frames of 1500 bytes, each echoed back
and compared. The size is announced first unless --fixed is given.

Examples:
  ethcomm send firmware.bin
  ethcomm send --backend local --fixed data.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkChunkSize(); err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return session("send", func(ctx context.Context, l *link.Link) error {
			t := newTransfer(cmd, l)
			send := t.SendVariable
			if sendFixed {
				send = t.Send
			}
			rep, err := send(ctx, data)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), "transmitted", rep)
			return nil
		})
	},
}

var recvCmd = &cobra.Command{
	Use:   "recv FILE",
	Short: "Receive a file from the board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if recvSize < 0 {
			return fmt.Errorf("invalid --size %d", recvSize)
		}
		if err := checkChunkSize(); err != nil {
			return err
		}
		return session("recv", func(ctx context.Context, l *link.Link) error {
			t := newTransfer(cmd, l)
			var (
				data []byte
				rep  *transfer.Report
				err  error
			)
			if recvSize > 0 {
				data, rep, err = t.Receive(ctx, recvSize)
			} else {
				data, rep, err = t.ReceiveVariable(ctx)
			}
			if err != nil {
				return err
			}
			if err = os.WriteFile(args[0], data, 0644); err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), "received", rep)
			return nil
		})
	},
}

func printReport(w io.Writer, verb string, rep *transfer.Report) {
	c := color.New(color.FgGreen)
	if rep.ErrorBytes > 0 {
		c = color.New(color.FgRed)
	}
	c.Fprintf(w, "File %s with %d errors...\n", verb, rep.ErrorBytes)
	fmt.Fprintf(w, "  id:      %s\n  bytes:   %d\n  frames:  %d\n  elapsed: %v\n",
		rep.ID, rep.Bytes, rep.Frames, rep.Elapsed)
}

func newTransfer(cmd *cobra.Command, l *link.Link) *transfer.Transfer {
	return transfer.New(l,
		transfer.WithChunkSize(chunkSize),
		transfer.WithProgress(progress.New(cmd.ErrOrStderr()).Report))
}

func checkChunkSize() error {
	if chunkSize <= 0 || chunkSize > link.MaxFrameSize {
		return fmt.Errorf("--chunk-size must be within 1..%d", link.MaxFrameSize)
	}
	return nil
}
