package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sunshineplan/imgconv"

	"github.com/JaimeStill/idscan/internal/extraction"
)

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <image>",
		Short: "Print the field regions the detector finds in an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := imgconv.Open(args[0])
			if err != nil {
				return fmt.Errorf("%w: decode %s: %w", extraction.ErrFatalInput, args[0], err)
			}

			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			defer r.close()

			regions, err := r.pipeline.Detect(commandContext(cmd), img)
			if err != nil {
				return err
			}
			if regions == nil {
				regions = []extraction.Region{}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(regions)
		},
	}
}
