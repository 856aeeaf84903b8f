package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/service"
)

func (c *cli) queueCmd() *cobra.Command {
	queue := &cobra.Command{Use: "queue", Short: "Work with task queues"}
	queue.AddCommand(c.queuePopCmd())
	return queue
}

func (c *cli) queuePopCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "pop <type>",
		Short: "Pop the oldest task id from a type's queue",
		Long: `pop blocks until a task id is available on <type>_INPUT or the
timeout passes. The id is removed from the queue, as a worker would do.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskType, err := domain.ParseTaskType(args[0])
			if err != nil {
				return fmt.Errorf("unknown task type %q: %w", args[0], err)
			}
			return c.withService(cmd, func(ctx context.Context, svc service.TaskService) error {
				id, ok, err := svc.Next(ctx, taskType, timeout)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "no task on %s within %s\n", taskType.QueueName(), timeout)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), id.String())
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "how long to wait for a task")
	return cmd
}
