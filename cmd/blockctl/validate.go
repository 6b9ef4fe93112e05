package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phrazzld/memoryblocks/internal/domain"
)

var errInvalidDocument = errors.New("document is invalid")

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a block document",
		Long:  "Validate checks every block and the document structure. Use - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger(cmd)

			doc, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			errs := domain.ValidateDocument(doc)
			out := cmd.OutOrStdout()
			if errs.Empty() {
				fmt.Fprintf(out, "valid: %d blocks, emotion %q\n", len(doc), doc.Emotion())
				return nil
			}

			for _, f := range errs.Fields {
				fmt.Fprintf(out, "%s: %s\n", f.Field, f.Message)
			}
			for _, i := range errs.BlockIndexes() {
				for _, bErr := range errs.Blocks[i] {
					fmt.Fprintf(out, "block %d (%s): %v\n", i, doc[i].Type, bErr)
				}
			}
			log.Debug("document failed validation",
				"fields", len(errs.Fields),
				"blocks", len(errs.Blocks))
			return errInvalidDocument
		},
	}
}
