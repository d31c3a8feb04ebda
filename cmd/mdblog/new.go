package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/mdblog/scaffold"
)

func newNewCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:     "new <name>",
		Short:   "Create a new blog project",
		Example: "  mdblog new myblog\n  mdblog new github.com/user/myblog",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := scaffold.NewData(args[0])
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Creating new mdblog project: %s\n\n", data.ProjectName)

			created, err := scaffold.Generate(dir, data)
			for _, p := range created {
				fmt.Fprintf(out, "  created %s\n", p)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Done! Next steps:")
			fmt.Fprintf(out, "  cd %s\n", data.ProjectName)
			fmt.Fprintln(out, "  go mod tidy")
			fmt.Fprintln(out, "  go run .")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Write posts in posts/*.md. Set PREVIEW_SECRET and SESSION_SECRET in .env to preview drafts.")
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "parent directory for the new project")
	return cmd
}
