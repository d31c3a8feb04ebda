package main

import (
	"encoding/json"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/eringen/mdblog"
	"github.com/eringen/mdblog/posts"
	"github.com/eringen/mdblog/views"
)

func newListCmd(g *globalFlags) *cobra.Command {
	var (
		asJSON bool
		drafts bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List posts, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.config().WithDefaults()
			list, err := posts.Open(cfg.ContentDir).ListPosts(cmd.Context())
			if err != nil {
				return err
			}
			if !drafts {
				list = mdblog.PublishedOnly(list)
			}

			if asJSON {
				if list == nil {
					list = []posts.Summary{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetAutoWrapText(false)
			table.SetHeader([]string{"#", "ID", "Title", "Date", "Draft"})
			for i, p := range list {
				draft := ""
				if p.Draft() {
					draft = "yes"
				}
				table.Append([]string{
					strconv.Itoa(i + 1),
					p.ID,
					p.Title,
					views.FormatDate(p.Date),
					draft,
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the listing as JSON")
	cmd.Flags().BoolVar(&drafts, "drafts", false, "include draft posts")
	return cmd
}
