package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"contentengine/client"
	"contentengine/utils"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:3000"

var errNotLoggedIn = errors.New("not logged in; run `contentctl login` first")

// cli carries the global flags and the filesystem every command works against
type cli struct {
	fs          afero.Fs
	sessionPath string
	server      string
	lang        string
	verbose     bool
	timeout     time.Duration
}

func newCLI() *cli {
	return &cli{
		fs:          afero.NewOsFs(),
		sessionPath: defaultSessionPath(),
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".contentctl", "session.json")
	}
	return filepath.Join(home, ".config", "contentctl", "session.json")
}

// serverURL resolves the server: flag, then environment, then the saved session
func (a *cli) serverURL(saved *session) string {
	if a.server != "" {
		return a.server
	}
	if v := os.Getenv("CONTENTCTL_SERVER"); v != "" {
		return v
	}
	if saved != nil && saved.Server != "" {
		return saved.Server
	}
	return defaultServer
}

// client returns an API client carrying the saved token, if any
func (a *cli) client() (*client.Client, *session, error) {
	saved, err := a.loadSession()
	if err != nil {
		return nil, nil, err
	}
	opts := []client.Option{client.WithTimeout(a.timeout)}
	if saved != nil {
		opts = append(opts, client.WithToken(saved.AccessToken))
	}
	return client.New(a.serverURL(saved), opts...), saved, nil
}

// authed is client but fails without a saved session
func (a *cli) authed() (*client.Client, error) {
	c, saved, err := a.client()
	if err != nil {
		return nil, err
	}
	if saved == nil || saved.AccessToken == "" {
		return nil, errNotLoggedIn
	}
	return c, nil
}

func newRootCmd(a *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "contentctl",
		Short: "Generate, analyze and manage marketing drafts",
		Long: `contentctl talks to a content engine server.

Sign in once with "contentctl login"; the session is kept in
~/.config/contentctl/session.json until you log out or it expires.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := utils.WARN
			if a.verbose {
				level = utils.DEBUG
			}
			utils.ConfigureLogger(utils.LogOptions{Level: level, Format: "console"})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = utils.Log.Sync()
		},
	}

	if a.lang == "" {
		a.lang = "en"
	}
	if a.timeout <= 0 {
		a.timeout = client.DefaultTimeout
	}
	root.PersistentFlags().StringVar(&a.server, "server", a.server, "server URL (or set CONTENTCTL_SERVER)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", a.sessionPath, "session file")
	root.PersistentFlags().StringVar(&a.lang, "lang", a.lang, "language for editor messages (en, ja)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", a.verbose, "enable debug logging")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", a.timeout, "request timeout")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newDraftsCmd(a),
		newProfileCmd(a),
		newGenerateCmd(a),
		newAnalyzeCmd(a),
		newExportCmd(a),
		newEditCmd(a),
	)
	return root
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
