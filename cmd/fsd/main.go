package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

var (
	serverURL  string
	authToken  string
	jsonOutput bool
	actor      string
)

func defaultActor() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "anonymous"
}

func defaultServer() string {
	if s := os.Getenv("FIELDSCRIPT_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

var rootCmd = &cobra.Command{
	Use:   "fsd",
	Short: "Scripted field configuration service and client",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "server base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("FIELDSCRIPT_TOKEN"), "bearer token")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "actor name recorded on edits")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(invalidateCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
