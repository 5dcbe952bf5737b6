package cmd

import (
	"fmt"

	"github.com/hbagdi/hitview/pkg/version"
	"github.com/spf13/cobra"
)

func executeVersion(cmd *cobra.Command) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
	return err
}
