package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"contentengine/models"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newGenerateCmd(a *cli) *cobra.Command {
	var req models.GenerateRequest
	var contentType string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a draft with the language model",
		Long: `Generates a draft from a topic and optional keywords, using your brand profile.
With --draft the existing draft is overwritten, otherwise a new one is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}
			req.ContentType = models.ContentType(contentType)
			draft, err := c.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			printDraft(cmd, draft)
			return nil
		},
	}
	cmd.Flags().StringVarP(&contentType, "type", "t", string(models.ContentSocial), "content type: blog, social or email")
	cmd.Flags().StringVar(&req.Topic, "topic", "", "what the draft is about")
	cmd.Flags().StringVarP(&req.Keywords, "keywords", "k", "", "keywords to work in")
	cmd.Flags().StringVarP(&req.DraftID, "draft", "d", "", "draft to overwrite")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func newAnalyzeCmd(a *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Get SEO and tone feedback on some copy",
		Long: `Analyzes the given text. With --file the text is read from a file,
and "-" reads standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			switch {
			case file == "-":
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(data)
			case file != "":
				data, err := afero.ReadFile(a.fs, file)
				if err != nil {
					return err
				}
				text = string(data)
			}

			c, _, err := a.client()
			if err != nil {
				return err
			}
			analysis, err := c.Analyze(cmd.Context(), text)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", analysis)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file")
	return cmd
}

func newExportCmd(a *cli) *cobra.Command {
	var (
		draftID, title, prompt, output, dir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save copy as a .txt file",
		Long: `Exports a title, prompt and output as a UTF-8 text file named after the title.
With --draft the draft's text is exported as the output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.client()
			if draftID != "" {
				c, err = a.authed()
			}
			if err != nil {
				return err
			}

			var req models.ExportRequest
			flags := cmd.Flags()
			if draftID != "" {
				draft, err := c.GetDraft(cmd.Context(), draftID)
				if err != nil {
					return err
				}
				t := "Draft_" + draft.DraftID
				req.Title = &t
				req.Output = &draft.ContentText
			}
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("prompt") {
				req.Prompt = &prompt
			}
			if flags.Changed("output") {
				req.Output = &output
			}

			name, body, err := c.ExportTXT(cmd.Context(), req)
			if err != nil {
				return err
			}
			path, err := writeExport(a.fs, dir, name, body)
			if err != nil {
				return err
			}
			printf(cmd, "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&draftID, "draft", "d", "", "export this draft's text")
	cmd.Flags().StringVar(&title, "title", "", "title line")
	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt section")
	cmd.Flags().StringVar(&output, "output", "", "output section")
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to write into")
	return cmd
}

// writeExport stores body under dir. Only the base of the server-suggested name is used.
func writeExport(fs afero.Fs, dir, name string, body []byte) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := afero.WriteFile(fs, path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
