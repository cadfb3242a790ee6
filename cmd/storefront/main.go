package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.0.0-dev"
	commit  = "main"
)

func main() {
	root := newRootCommand()
	root.AddCommand(newServeCommand())
	root.AddCommand(newCatalogCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Marble idol storefront API",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().String("env-file", ".env", "dotenv file with local overrides")
	cmd.Version = fmt.Sprintf("%s.%s", version, commit)
	return cmd
}
