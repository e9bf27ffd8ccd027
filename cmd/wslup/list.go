package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wslup/internal/app"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the steps a run would consider, in order",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	steps, err := newApp(cmd.ErrOrStderr(), nil).List(app.Options{ConfigPath: cfgFile})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STEP\tREQUIRED\tDESCRIPTION")
	for _, s := range steps {
		required := "yes"
		if s.Optional {
			required = "no"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, required, s.Description)
	}
	return w.Flush()
}
