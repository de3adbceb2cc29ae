package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roomsignal",
	Short: "RoomSignal is a WebRTC room signaling and event streaming service.",
	Run: func(cmd *cobra.Command, args []string) {
		runApp()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signaling and streaming HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		runApp()
	},
}

// serverURL - адрес сервера для клиентских команд
var serverURL string

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// addClientFlags добавляет общие флаги клиентских команд.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:3000", "RoomSignal server address")
}
