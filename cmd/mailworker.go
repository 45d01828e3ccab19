/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/curriculo/apiserver/config"
	"github.com/curriculo/apiserver/internal/mailer"
	"github.com/curriculo/apiserver/internal/mq"
	"github.com/spf13/cobra"
)

// mailworkerCmd represents the mailworker command
var mailworkerCmd = &cobra.Command{
	Use:   "mailworker",
	Short: "Runs the outbound mail delivery worker",
	Long: `Runs the outbound mail delivery worker. Usage:

	curriculo mailworker
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		queue, err := mq.Open(cmd.Context(), cfg.MQ)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect to queue: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = queue.Close()
		}()

		worker := mailer.NewWorker(queue, cfg.Mail)
		if err := worker.Run(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "mailworker error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mailworkerCmd)
}
