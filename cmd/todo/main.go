package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"todosync/pkg/client"
)

var Version = "dev"

type options struct {
	apiURL string
	token  string
}

func main() {
	_ = godotenv.Load()

	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "todo",
		Short:         "Manage your todos from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", envOr("TODO_API_URL", "http://localhost:3000"), "Todo API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("TODO_API_TOKEN"), "Bearer token (TODO_API_TOKEN)")

	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(editCmd(opts))
	rootCmd.AddCommand(toggleCmd(opts))
	rootCmd.AddCommand(removeCmd(opts))
	rootCmd.AddCommand(clearCompletedCmd(opts))
	rootCmd.AddCommand(summarizeCmd(opts))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.As(err, new(errReported)) {
			fail(os.Stderr, err.Error())
		}
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// controller returns a controller with the mirror already loaded.
func (o *options) controller(ctx context.Context, cmd *cobra.Command) (*client.Controller, error) {
	if o.token == "" {
		return nil, errors.New("no token: pass --token or set TODO_API_TOKEN")
	}

	api := client.NewClient(o.apiURL, client.StaticToken(o.token))
	c := client.NewController(api, client.WithNoticeHandler(func(n client.Notice) {
		msg := n.Message
		if n.Err != nil && n.Err.Error() != msg {
			msg = fmt.Sprintf("%s (%v)", msg, n.Err)
		}
		fail(cmd.ErrOrStderr(), msg)
	}))

	if err := c.Load(ctx); err != nil {
		return nil, reported(err)
	}

	return c, nil
}
