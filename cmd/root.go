package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Face-recognition attendance tracking server and CLI",
	Long: `Attendance tracks who is at work using face recognition. People enroll
with a photo, then check in and out by taking a photo inside a geofenced
area. Face embeddings are matched against the enrolled set stored in
PostgreSQL (pgvector).`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
