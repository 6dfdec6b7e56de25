package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/web-analyzer-client/auth"
	"github.com/jrsteele09/web-analyzer-client/internal/config"
	"github.com/jrsteele09/web-analyzer-client/sessions"
	"github.com/jrsteele09/web-analyzer-client/token"
	"github.com/jrsteele09/web-analyzer-client/urls"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run the login command first")

func (c *cli) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Log in and store the session",
		Args:    cobra.NoArgs,
		PreRunE: c.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readSecret(cmd, "password", password)
			if err != nil {
				return err
			}
			resp, err := c.app.manager.Login(cmd.Context(), auth.LoginRequest{Username: username, Password: pw})
			if err != nil {
				return err
			}
			return c.emit(cmd, resp.User, func(w io.Writer) {
				fmt.Fprintf(w, "Logged in as %s <%s>\n", resp.User.Username, resp.User.Email)
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password; read from stdin when omitted")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create an account",
		Long:    "Create an account. Registering does not log in; run login afterwards.",
		Args:    cobra.NoArgs,
		PreRunE: c.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readSecret(cmd, "password", password)
			if err != nil {
				return err
			}
			resp, err := c.app.manager.Register(cmd.Context(), auth.RegisterRequest{Username: username, Email: email, Password: pw})
			if err != nil {
				return err
			}
			return c.emit(cmd, resp, func(w io.Writer) {
				fmt.Fprintf(w, "Registered %s (id %s). Log in to continue.\n", resp.Username, resp.ID)
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password; read from stdin when omitted")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	var localOnly bool
	cmd := &cobra.Command{
		Use:     "logout",
		Short:   "Forget the stored session",
		Args:    cobra.NoArgs,
		PreRunE: c.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if localOnly {
				c.app.manager.Logout(cmd.Context())
			} else {
				c.app.manager.EndSession(cmd.Context())
			}
			return c.emit(cmd, map[string]bool{"isLoggedIn": false}, func(w io.Writer) {
				fmt.Fprintln(w, "Logged out")
			})
		},
	}
	cmd.Flags().BoolVar(&localOnly, "local", false, "Only clear the stored session; do not notify the server")
	return cmd
}

type whoamiOutput struct {
	User  *sessions.UserIdentity `json:"user"`
	Token *tokenOutput           `json:"token,omitempty"`
}

type tokenOutput struct {
	Type      string     `json:"type,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Show the logged in user",
		Args:    cobra.NoArgs,
		PreRunE: c.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user := c.app.manager.User()
			if user == nil {
				return errNotLoggedIn
			}
			out := whoamiOutput{User: user}
			if details, err := token.Inspect(c.app.store.AccessToken(cmd.Context())); err == nil {
				out.Token = &tokenOutput{
					Type:      details.Type,
					Subject:   details.Subject,
					ExpiresAt: details.ExpiresAt,
					Expired:   details.Expired(time.Now()),
				}
			}
			return c.emit(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "%s <%s> (id %s)\n", user.Username, user.Email, user.ID)
				if out.Token != nil && out.Token.ExpiresAt != nil {
					state := "valid until"
					if out.Token.Expired {
						state = "expired at"
					}
					fmt.Fprintf(w, "access token %s %s\n", state, out.Token.ExpiresAt.Local().Format(time.RFC1123))
				}
			})
		},
	}
}

func (c *cli) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "refresh",
		Short:   "Exchange the stored refresh token for a new token pair",
		Args:    cobra.NoArgs,
		PreRunE: c.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !c.app.manager.IsAuthenticated() {
				return errNotLoggedIn
			}
			if _, err := c.app.manager.Refresh(cmd.Context()); err != nil {
				return err
			}
			return c.emit(cmd, map[string]bool{"refreshed": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Session refreshed")
			})
		},
	}
}

func (c *cli) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "analyze <url>",
		Short:   "Analyze the top words of a web page",
		Args:    cobra.ExactArgs(1),
		PreRunE: c.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.app.manager.IsAuthenticated() {
				return errNotLoggedIn
			}
			result, err := c.app.urls.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.emit(cmd, result, func(w io.Writer) {
				fmt.Fprintf(w, "%s\n", result.URL)
				printWords(w, result.TopWords)
			})
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	var page, size int
	var all bool
	cmd := &cobra.Command{
		Use:     "history",
		Short:   "List past analyses",
		Args:    cobra.NoArgs,
		PreRunE: c.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				result *urls.HistoryPage
				err    error
			)
			if all {
				result, err = c.app.urls.AllHistory(cmd.Context(), page, size)
			} else {
				if !c.app.manager.IsAuthenticated() {
					return errNotLoggedIn
				}
				result, err = c.app.urls.History(cmd.Context(), page, size)
			}
			if err != nil {
				return err
			}
			return c.emit(cmd, result, func(w io.Writer) {
				printHistory(w, result, all)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", urls.DefaultPage, "Page number")
	cmd.Flags().IntVar(&size, "size", urls.DefaultPageSize, "Page size")
	cmd.Flags().BoolVar(&all, "all", false, "List analyses of every user")
	return cmd
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.New()
			if c.jsonOut {
				return c.emit(cmd, map[string]string{"name": cfg.GetAppName(), "version": cfg.GetAppVersion()}, nil)
			}
			banner := figure.NewFigure(cfg.GetAppName(), "cybermedium", true)
			fmt.Fprintln(cmd.OutOrStdout(), banner.String())
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (%s)\n", appName, cfg.GetAppVersion(), cfg.GetEnv())
			return nil
		},
	}
}

func printWords(w io.Writer, words []urls.WordCount) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, wc := range words {
		fmt.Fprintf(tw, "  %d.\t%s\t%d\n", i+1, wc.Word, wc.Count)
	}
	_ = tw.Flush()
}

func printHistory(w io.Writer, page *urls.HistoryPage, withUser bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "ID\tURL\tTOP WORDS\tANALYZED AT"
	if withUser {
		header += "\tUSER"
	}
	fmt.Fprintln(tw, header)
	for _, item := range page.Items {
		words := make([]string, 0, len(item.TopWords))
		for _, wc := range item.TopWords {
			words = append(words, fmt.Sprintf("%s(%d)", wc.Word, wc.Count))
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s", item.ID, item.URL, strings.Join(words, " "), item.AnalyzedAt)
		if withUser {
			username := ""
			if item.User != nil {
				username = item.User.Username
			}
			row += "\t" + username
		}
		fmt.Fprintln(tw, row)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "page %d of %d (%d total)\n", page.Page, page.Pages, page.Total)
}
