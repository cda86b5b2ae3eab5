package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"lunelle.GO/cron"
)

var jobName string

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the cron scheduler or run a single job by name",
	Run: func(c *cobra.Command, args []string) {
		if jobName != "" {
			name := strings.ToLower(jobName)
			if j, ok := cron.Jobs()[name]; ok {
				fmt.Fprintf(c.OutOrStdout(), "Running cron job: %s\n", name)
				j.Run(args...)
				return
			}
			fmt.Fprintf(c.ErrOrStderr(), "Unknown job: %s\n", jobName)
			os.Exit(1)
		}
		fmt.Println("Starting cron scheduler...")
		sched := cron.StartCron()
		fmt.Println("Cron scheduler started. Press Ctrl+C to exit.")
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		<-sched.Stop().Done()
	},
}

var cronListCmd = &cobra.Command{
	Use:   "cron:list",
	Short: "List enabled cron jobs and their schedules",
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		scheduled := cron.Scheduled()
		names := make([]string, 0, len(scheduled))
		for name := range scheduled {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(c.OutOrStdout(), "%-16s %s\n", name, scheduled[name])
		}
	},
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	rootCmd.AddCommand(cronStartCmd, cronListCmd)
}
