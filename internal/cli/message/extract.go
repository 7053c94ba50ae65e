package message

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keyboxhn/keybox/internal/render"
)

func NewExtractCommand() *cobra.Command {
	var file, body string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "List the placeholders of a template",
		Long:  `Print every distinct {placeholder} of a template body, one per line, in order of first appearance.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readBody(cmd.InOrStdin(), file, body)
			if err != nil {
				return err
			}
			for _, name := range render.Extract(text) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Template file, - for stdin")
	cmd.Flags().StringVar(&body, "body", "", "Inline template body")

	return cmd
}
