package main

import (
	"context"

	"contentengine/config"
	"contentengine/editor"
	"contentengine/tui"
	"contentengine/utils"

	"github.com/spf13/cobra"
)

func newEditCmd(a *cli) *cobra.Command {
	var (
		platform string
		maxChars int
		autosave = config.Default().Editor.AutosaveInterval.Duration
		dir      string
	)
	cmd := &cobra.Command{
		Use:   "edit <draftID>",
		Short: "Open a draft in the terminal editor",
		Long: `Opens the draft full screen. The text is saved automatically every few
seconds and when you quit; the last save to reach the server wins.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}

			ed := editor.New(c, args[0], autosave)
			if err := ed.Load(cmd.Context()); err != nil {
				return err
			}
			if err := applyEditFlags(cmd, ed, platform, maxChars); err != nil {
				return err
			}

			// Log lines would corrupt the full-screen view.
			utils.Log = utils.NewNopLogger()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go ed.RunAutosave(ctx)

			export := func(name string, body []byte) (string, error) {
				return writeExport(a.fs, dir, name, body)
			}
			return tui.Run(ctx, ed, export, utils.GetLocalizer(a.lang))
		},
	}
	cmd.Flags().StringVar(&platform, "platform", string(editor.DefaultPlatform), "instagram, facebook, twitter, linkedin or tiktok")
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "character limit, 0 for none (default: the platform's limit)")
	cmd.Flags().DurationVar(&autosave, "autosave", autosave, "autosave interval")
	cmd.Flags().StringVar(&dir, "dir", ".", "directory for exports")
	return cmd
}

// applyEditFlags sets the platform before the limit so an explicit --max-chars survives the reset
func applyEditFlags(cmd *cobra.Command, ed *editor.Editor, platform string, maxChars int) error {
	if cmd.Flags().Changed("platform") {
		if err := ed.SetPlatform(editor.Platform(platform)); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("max-chars") {
		ed.SetMaxChars(maxChars)
	}
	return nil
}
