package main

import (
	"github.com/spf13/cobra"

	"github.com/groblegark/fieldscript/internal/model"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all scripted field configurations",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Configs []*model.ConfigView `json:"configs"`
		}
		if err := newClient().get("/v1/configs", &resp); err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp.Configs)
			return nil
		}
		printConfigListTable(resp.Configs)
		return nil
	},
}
