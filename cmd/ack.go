package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/galleryloom/gallerysync/internal/config"
	"github.com/galleryloom/gallerysync/internal/dupack"
)

// NewAckCommand creates a cobra command that reads or appends to the
// duplicates acknowledgement file under config-root.
func NewAckCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ack [target-path ...]",
		Short:        "Show or record acknowledged duplicate output paths",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				acked := dupack.LoadAcknowledged(cfg.ConfigRoot)
				if len(acked) == 0 {
					fmt.Println("no duplicates acknowledged")
					return nil
				}
				for path := range acked {
					fmt.Println(path)
				}
				return nil
			}
			return dupack.MarkAcknowledged(cfg.ConfigRoot, args...)
		},
	}
	return cmd
}
