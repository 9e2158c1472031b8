package main

import (
	"time"

	"contentengine/models"

	"github.com/spf13/cobra"
)

func newDraftsCmd(a *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "List, create and copy drafts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the ten most recently edited drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}
			drafts, err := c.RecentDrafts(cmd.Context())
			if err != nil {
				return err
			}
			if len(drafts) == 0 {
				printf(cmd, "No drafts yet. Create one with `contentctl drafts new`.\n")
				return nil
			}
			printf(cmd, "%-36s  %-6s  %-16s  %s\n", "ID", "TYPE", "UPDATED", "PREVIEW")
			for _, d := range drafts {
				printf(cmd, "%-36s  %-6s  %-16s  %s\n", d.DraftID, d.ContentType, formatTime(d.UpdatedAt), oneLine(d.Preview, 60))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "Show every draft, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}
			drafts, err := c.DraftHistory(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%-36s  %-6s  %-16s  %s\n", "ID", "TYPE", "CREATED", "TEXT")
			for _, d := range drafts {
				printf(cmd, "%-36s  %-6s  %-16s  %s\n", d.DraftID, d.ContentType, formatTime(d.CreatedAt), oneLine(d.ContentText, 60))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Create an empty draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}
			draft, err := c.CreateDraft(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", draft.DraftID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <draftID>",
		Short: "Print a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}
			draft, err := c.GetDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDraft(cmd, draft)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "duplicate <draftID>",
		Short: "Copy a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}
			draft, err := c.DuplicateDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", draft.DraftID)
			return nil
		},
	})

	return cmd
}

func printDraft(cmd *cobra.Command, d *models.Draft) {
	printf(cmd, "ID:      %s\nType:    %s\nCreated: %s\nUpdated: %s\n\n%s\n",
		d.DraftID, d.ContentType, formatTime(d.CreatedAt), formatTime(d.UpdatedAt), d.ContentText)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// oneLine flattens s and cuts it to n runes for table output
func oneLine(s string, n int) string {
	r := []rune(s)
	for i, c := range r {
		if c == '\n' || c == '\r' || c == '\t' {
			r[i] = ' '
		}
	}
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return string(r)
}
