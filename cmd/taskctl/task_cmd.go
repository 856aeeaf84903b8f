package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ctlabs/taskrouter/internal/api"
	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/service"
)

func (c *cli) taskCmd() *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Inspect and complete tasks"}
	task.AddCommand(c.taskShowCmd())
	task.AddCommand(c.taskFinishCmd())
	return task
}

func (c *cli) taskShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <uuid>",
		Short: "Show a task record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return c.withService(cmd, func(ctx context.Context, svc service.TaskService) error {
				task, err := svc.Get(ctx, id)
				if err != nil {
					return err
				}
				return printTask(cmd, task, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")
	return cmd
}

func (c *cli) taskFinishCmd() *cobra.Command {
	var (
		status  string
		code    int
		message string
		result  string
	)
	cmd := &cobra.Command{
		Use:   "finish <uuid>",
		Short: "Record a worker outcome for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			st, err := domain.ParseTaskStatus(status)
			if err != nil {
				return fmt.Errorf("invalid --status %q: %w", status, err)
			}

			input := service.FinishTaskInput{Status: st}
			if cmd.Flags().Changed("code") {
				input.Code = &code
			}
			if cmd.Flags().Changed("message") {
				input.Message = &message
			}
			if result != "" {
				if err := json.Unmarshal([]byte(result), &input.Result); err != nil {
					return fmt.Errorf("invalid --result: must be a JSON object: %w", err)
				}
			}

			return c.withService(cmd, func(ctx context.Context, svc service.TaskService) error {
				task, err := svc.Finish(ctx, id, input)
				if err != nil {
					return err
				}
				return printTask(cmd, task, false)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "new status: pending, done or error")
	cmd.Flags().IntVar(&code, "code", 0, "result code")
	cmd.Flags().StringVar(&message, "message", "", "result message")
	cmd.Flags().StringVar(&result, "result", "", "result payload as a JSON object")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func parseTaskID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid task id %q: %w", s, err)
	}
	return id, nil
}

func printTask(cmd *cobra.Command, task *domain.Task, asJSON bool) error {
	info := api.NewTaskInfoResponse(task)
	if asJSON {
		return printJSON(cmd.OutOrStdout(), info)
	}

	str := func(s string) string { return s }
	result := "-"
	if info.Result != nil {
		raw, err := json.Marshal(info.Result)
		if err != nil {
			return err
		}
		result = string(raw)
	}

	tw := newTable(cmd.OutOrStdout(), table.Row{"Field", "Value"})
	tw.AppendRows([]table.Row{
		{"uuid", info.UUID},
		{"type", info.Type},
		{"status", info.Status},
		{"external_id", orDash(info.ExternalID, str)},
		{"created", orDash(info.Created, str)},
		{"processed", orDash(info.Processed, str)},
		{"code", orDash(info.Code, strconv.Itoa)},
		{"message", orDash(info.Message, str)},
		{"result", result},
	})
	tw.Render()
	return nil
}
