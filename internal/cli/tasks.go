package cli

import (
	"taskdeck/internal/api"
	"taskdeck/internal/form"
	"taskdeck/internal/model"
	"taskdeck/internal/publish"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "List and change tasks (requires login)",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksExportCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(); err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := app.client.ListTasks(commandContext(cmd))
			if err != nil {
				return writeErr(cmd, apiFailure("Failed to fetch tasks", err))
			}
			return writeOut(cmd, app, tasks)
		},
	}
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task with its timestamps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(); err != nil {
				return writeErr(cmd, err)
			}
			t, err := app.client.GetTask(commandContext(cmd), args[0])
			if err != nil {
				return writeErr(cmd, apiFailure("Failed to view task", err))
			}
			return writeOut(cmd, app, t)
		},
	}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var d form.TaskDraft

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if errs := form.ValidateTask(d); len(errs) > 0 {
				return writeFormErrors(cmd, errs)
			}
			if err := app.setup(); err != nil {
				return writeErr(cmd, err)
			}
			t, err := app.client.CreateTask(commandContext(cmd), api.TaskInput{Title: d.Title, Description: d.Description})
			if err != nil {
				return writeErr(cmd, apiFailure("Failed to save task", err))
			}
			return writeOut(cmd, app, t)
		},
	}

	cmd.Flags().StringVar(&d.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&d.Description, "description", "", "Task description (markdown)")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var d form.TaskDraft

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change a task's title and/or description",
		Long: "Change a task's title and/or description. A field whose flag is not given keeps\n" +
			"its current value, read from the server first.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			titleSet, descSet := cmd.Flags().Changed("title"), cmd.Flags().Changed("description")
			if !titleSet && !descSet {
				return writeErr(cmd, errNothingToUpdate)
			}
			if err := app.setup(); err != nil {
				return writeErr(cmd, err)
			}
			ctx := commandContext(cmd)

			var current model.Task
			if !titleSet || !descSet {
				t, err := app.client.GetTask(ctx, id)
				if err != nil {
					return writeErr(cmd, apiFailure("Failed to view task", err))
				}
				current = t
				if !titleSet {
					d.Title = t.Title
				}
				if !descSet {
					d.Description = t.Description
				}
			}
			if errs := form.ValidateTask(d); len(errs) > 0 {
				return writeFormErrors(cmd, errs)
			}

			updated, err := app.client.UpdateTask(ctx, id, api.TaskInput{Title: d.Title, Description: d.Description})
			if err != nil {
				return writeErr(cmd, apiFailure("Failed to save task", err))
			}
			if updated != nil {
				return writeOut(cmd, app, updated)
			}
			current.ID = id
			current.Title = d.Title
			current.Description = d.Description
			return writeOut(cmd, app, current)
		},
	}

	cmd.Flags().StringVar(&d.Title, "title", "", "New title")
	cmd.Flags().StringVar(&d.Description, "description", "", "New description (markdown)")
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.client.DeleteTask(commandContext(cmd), args[0]); err != nil {
				return writeErr(cmd, apiFailure("Failed to delete task", err))
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "deleted": true})
		},
	}
}

func newTasksExportCmd(app *App) *cobra.Command {
	var (
		to        string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the task list as markdown files (index.md + tasks/<id>.md)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(); err != nil {
				return writeErr(cmd, err)
			}
			ctx := commandContext(cmd)

			tasks, err := app.client.ListTasks(ctx)
			if err != nil {
				return writeErr(cmd, apiFailure("Failed to fetch tasks", err))
			}
			sess, err := app.session.Current(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteTasks(tasks, to, publish.WriteOptions{
				Overwrite: overwrite,
				Owner:     sess.User.Username,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, res)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output directory (required)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
