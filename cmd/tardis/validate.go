package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errInvalidRecords = errors.New("catalog has invalid records")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report catalog records that cannot be parsed or propagated",
	Long: `Read a catalog and list every record that was skipped, with the reason.
The command fails when at least one record is invalid.

Example:
  tardis validate -c active.txt
  curl -s $URL | tardis validate -c - --format omm`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, _ []string) error {
	c, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, f := range c.Failures {
		fmt.Fprintln(out, f.Error())
	}
	fmt.Fprintf(out, "%d valid, %d invalid\n", c.Len(), len(c.Failures))
	if len(c.Failures) > 0 {
		return errInvalidRecords
	}
	return nil
}
