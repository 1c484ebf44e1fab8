package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Administer the matchmaking queue",
	}

	cmd.AddCommand(newQueueDetailsCmd())
	cmd.AddCommand(newQueueClearCmd())
	cmd.AddCommand(newQueueRemoveCmd())
	return cmd
}

func newQueueDetailsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "details",
		Short: "Show who is waiting in the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result QueueDetails

			if err := client.Get("/api/admin/queue/details", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newQueueClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove everyone from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result QueueCleared

			if err := client.Delete("/api/admin/queue/clear", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newQueueRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <nickname>",
		Short: "Remove one player from the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/admin/queue/remove/" + url.PathEscape(args[0])
			if err := client.Delete(path, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Removed " + args[0] + " from the queue")
			return nil
		},
	}
}
