package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"todosync/pkg/client"
)

// errReported marks a failure whose notice has already been printed.
type errReported struct{ err error }

func (e errReported) Error() string { return e.err.Error() }

func (e errReported) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil || errors.Is(err, client.ErrNotInMirror) || errors.Is(err, client.ErrEmptyPatch) {
		return err
	}
	return errReported{err}
}

func listCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("filter")
			filter, err := client.ParseFilter(raw)
			if err != nil {
				return err
			}

			c, err := opts.controller(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			if err := c.SetFilter(filter); err != nil {
				return err
			}

			renderList(cmd.OutOrStdout(), c)
			return nil
		},
	}

	cmd.Flags().StringP("filter", "f", "all", "Filter (all, pending, completed)")

	return cmd
}

func addCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")

			c, err := opts.controller(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			todo, err := c.Add(cmd.Context(), args[0], description)
			if err != nil {
				return reported(err)
			}

			ok(cmd.OutOrStdout(), fmt.Sprintf("Added %q (%s)", todo.Title, todo.ID))
			return nil
		},
	}

	cmd.Flags().StringP("description", "d", "", "Description")

	return cmd
}

func editCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a todo's title, description or state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch client.Patch

			if cmd.Flags().Changed("title") {
				title, _ := cmd.Flags().GetString("title")
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				description, _ := cmd.Flags().GetString("description")
				patch.Description = &description
			}
			if cmd.Flags().Changed("state") {
				raw, _ := cmd.Flags().GetString("state")
				state := client.State(raw)
				patch.State = &state
			}

			if patch.IsEmpty() {
				return client.ErrEmptyPatch
			}

			c, err := opts.controller(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			todo, err := c.Edit(cmd.Context(), args[0], patch)
			if err != nil {
				return reported(err)
			}

			ok(cmd.OutOrStdout(), "Updated "+renderTodo(todo))
			return nil
		},
	}

	cmd.Flags().StringP("title", "t", "", "New title")
	cmd.Flags().StringP("description", "d", "", "New description")
	cmd.Flags().StringP("state", "s", "", "New state (pending, completed)")

	return cmd
}

func toggleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [id]",
		Short: "Flip a todo between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.controller(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			todo, err := c.Toggle(cmd.Context(), args[0])
			if err != nil {
				return reported(err)
			}

			ok(cmd.OutOrStdout(), renderTodo(todo))
			return nil
		},
	}
}

func removeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.controller(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			if err := c.Remove(cmd.Context(), args[0]); err != nil {
				return reported(err)
			}

			ok(cmd.OutOrStdout(), "Todo deleted successfully.")
			return nil
		},
	}
}

func clearCompletedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every completed todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.controller(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			removed, err := c.ClearCompleted(cmd.Context())
			if removed > 0 {
				ok(cmd.OutOrStdout(), fmt.Sprintf("Cleared %d completed todos", removed))
			}
			return reported(err)
		},
	}
}

func summarizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Summarize pending todos and post the summary to Slack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.controller(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			summary, err := c.Summarize(cmd.Context())
			if err != nil {
				return reported(err)
			}

			ok(cmd.OutOrStdout(), summary.Message)
			panel(cmd.OutOrStdout(), []string{titleStyle.Render("Summary"), summary.Summary})
			return nil
		},
	}
}
