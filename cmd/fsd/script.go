package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/groblegark/fieldscript/internal/model"
)

var scriptCmd = &cobra.Command{
	Use:   "script <config-id>",
	Short: "Resolve a configuration's script (cache read path)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid config id %q", args[0])
		}

		var script model.FieldScript
		if err := newClient().get(fmt.Sprintf("/v1/configs/%d/script", id), &script); err != nil {
			return err
		}
		if jsonOutput {
			printJSON(&script)
			return nil
		}
		fmt.Printf("Version:   %s\n", script.Version)
		fmt.Printf("Cacheable: %t\n", script.Cacheable)
		if script.ScriptBody != "" {
			fmt.Printf("Script:\n%s\n", indent(script.ScriptBody, "  "))
		}
		return nil
	},
}
