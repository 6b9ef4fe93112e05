package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
)

const (
	formatJSON = "json"
	formatCBOR = "cbor"
)

func newConvertCmd() *cobra.Command {
	var (
		to     string
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a block document between JSON and CBOR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			var data []byte
			switch to {
			case formatCBOR:
				data, err = block.MarshalCBOR(doc)
			case formatJSON:
				data, err = json.MarshalIndent(doc, "", "  ")
				data = append(data, '\n')
			default:
				return fmt.Errorf("unsupported output format %q (want %s or %s)", to, formatJSON, formatCBOR)
			}
			if err != nil {
				return fmt.Errorf("encode %s: %w", to, err)
			}

			if output != "" {
				return os.WriteFile(output, data, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&to, "to", formatCBOR, "Output format: json or cbor")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}
