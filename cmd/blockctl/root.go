package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
	"github.com/phrazzld/memoryblocks/internal/platform/logger"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "blockctl",
		Short:         "Inspect and process memory block documents",
		Long:          "blockctl works on block documents stored as JSON arrays of {id, type, props, content} objects, or their CBOR encoding.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr: debug, info, warn or error")

	cmd.AddCommand(
		newTypesCmd(),
		newValidateCmd(opts),
		newRenderCmd(opts),
		newConvertCmd(),
	)
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return logger.New(cmd.ErrOrStderr(), o.logLevel)
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// readDocument reads a JSON or CBOR document. CBOR input is recognized by
// its leading array header.
func readDocument(cmd *cobra.Command, path string) (block.Document, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	if isCBOR(data) {
		return block.UnmarshalCBOR(data)
	}
	return block.DecodeDocument(data)
}

// isCBOR reports whether data starts with a CBOR array header (major type 4).
func isCBOR(data []byte) bool {
	return len(data) > 0 && data[0]>>5 == 4
}
