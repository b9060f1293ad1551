package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Clear the script cache cluster-wide",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().do("POST", "/v1/cache/invalidate", nil, nil); err != nil {
			return err
		}
		fmt.Println("cache cleared")
		return nil
	},
}
