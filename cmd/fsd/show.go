package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/groblegark/fieldscript/internal/model"
)

var showChangelogs bool

var showCmd = &cobra.Command{
	Use:   "show <config-id>",
	Short: "Show one field configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid config id %q", args[0])
		}

		path := fmt.Sprintf("/v1/configs/%d", id)
		if showChangelogs {
			path += "?changelogs=true"
		}

		var view model.ConfigView
		if err := newClient().get(path, &view); err != nil {
			return err
		}
		if jsonOutput {
			printJSON(&view)
			return nil
		}
		printConfigTable(&view)
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showChangelogs, "changelogs", false, "include edit history")
}
