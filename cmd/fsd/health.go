package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Status string `json:"status"`
		}
		if err := newClient().get("/v1/health", &resp); err != nil {
			return err
		}
		fmt.Println(resp.Status)
		return nil
	},
}
