package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/groblegark/fieldscript/internal/model"
)

var (
	updateScriptFile string
	updateScript     string
	updateCacheable  bool
	updateComment    string
)

var updateCmd = &cobra.Command{
	Use:   "update <config-id>",
	Short: "Create or update a configuration's script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid config id %q", args[0])
		}

		body := updateScript
		if updateScriptFile != "" {
			data, err := os.ReadFile(updateScriptFile)
			if err != nil {
				return err
			}
			body = string(data)
		}

		req := map[string]any{
			"script_body": body,
			"cacheable":   updateCacheable,
			"comment":     updateComment,
		}

		var view model.ConfigView
		if err := newClient().do("PUT", fmt.Sprintf("/v1/configs/%d", id), req, &view); err != nil {
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
	updateCmd.Flags().StringVar(&updateScript, "script", "", "script body")
	updateCmd.Flags().StringVarP(&updateScriptFile, "file", "f", "", "read script body from file")
	updateCmd.Flags().BoolVar(&updateCacheable, "cacheable", true, "cache computed field values")
	updateCmd.Flags().StringVarP(&updateComment, "comment", "m", "", "edit comment (required for existing configs)")
}
