package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"

	"github.com/jask/coinfeed/internal/config"
	"github.com/jask/coinfeed/internal/database/repository"
	"github.com/jask/coinfeed/internal/onboarding"
	"github.com/jask/coinfeed/internal/prefs"
	"github.com/jask/coinfeed/internal/session"
)

var errNotLoggedIn = errors.New("not logged in; run coinfeed to sign in first")

// entryLister is implemented by stores that can enumerate their rows.
type entryLister interface {
	Entries(ctx context.Context) ([]repository.Entry, error)
}

func newStatusCmd(get func() *env) *cobra.Command {
	var showKeys bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which screen the next launch opens and why",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runStatus(cmd, get()); err != nil {
				return err
			}
			if showKeys {
				return runKeys(cmd, get())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showKeys, "keys", false, "also list stored keys")
	return cmd
}

func runKeys(cmd *cobra.Command, e *env) error {
	l, ok := e.store.(entryLister)
	if !ok {
		return fmt.Errorf("store %s cannot list keys", e.storeDesc)
	}
	entries, err := l.Entries(cmd.Context())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nkey\tupdated\tvalue")
	for _, en := range entries {
		value := en.Value
		if len(value) > 40 {
			value = value[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", en.Key, en.UpdatedAt.Local().Format("2006-01-02 15:04"), value)
	}
	return w.Flush()
}

func runStatus(cmd *cobra.Command, e *env) error {
	ctx := cmd.Context()
	r := e.router()
	screen := r.Initialize(ctx)
	sess := r.Session(ctx)

	user := sess.UserName
	if user == "" {
		user = "-"
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "screen\t%s\n", screen)
	fmt.Fprintf(w, "logged in\t%s\n", yesNo(sess.Token != ""))
	fmt.Fprintf(w, "user\t%s\n", user)
	fmt.Fprintf(w, "preferences\t%s\n", yesNo(r.HasPrefsMarker(ctx)))
	if p, ok := prefs.NewCache(e.store).Load(ctx); ok {
		fmt.Fprintf(w, "assets\t%s\n", strings.Join(p.CryptoAssets, ", "))
		fmt.Fprintf(w, "profile\t%s\n", prefs.InvestorLabel(p.InvestorType))
	}
	fmt.Fprintf(w, "api\t%s\n", e.cfg.API.URL)
	fmt.Fprintf(w, "store\t%s\n", e.storeDesc)
	return w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newLogoutCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			r := e.router()
			r.Initialize(cmd.Context())
			r.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newGotoCmd(get func() *env) *cobra.Command {
	names := make([]string, len(session.Screens))
	for i, s := range session.Screens {
		names[i] = s.String()
	}
	return &cobra.Command{
		Use:       "goto <screen>",
		Short:     "Set the screen the next launch opens",
		Long:      "Set the screen the next launch opens. One of: " + strings.Join(names, ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGoto(cmd, get(), args[0])
		},
	}
}

func runGoto(cmd *cobra.Command, e *env, name string) error {
	target, err := session.ParseScreen(name)
	if err != nil {
		if s, ok := suggestScreen(name); ok {
			return fmt.Errorf("%w %q, did you mean %q?", session.ErrUnknownScreen, name, s)
		}
		return fmt.Errorf("%w %q", session.ErrUnknownScreen, name)
	}

	ctx := cmd.Context()
	r := e.router()
	r.Initialize(ctx)
	r.NavigateTo(ctx, target)

	// the hint is only honoured with a session and saved preferences
	next := e.router().Initialize(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "next launch opens %s\n", next)
	return nil
}

// suggestScreen returns the closest screen name within two edits.
func suggestScreen(input string) (session.Screen, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	var (
		best     session.Screen
		bestDist = 3
	)
	for _, s := range session.Screens {
		if d := levenshtein.ComputeDistance(in, s.String()); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, best != ""
}

func newPrefsCmd(get func() *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change your feed preferences",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the locally cached preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := prefs.NewCache(get().store).Load(cmd.Context())
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no preferences saved")
				return nil
			}
			printPrefs(cmd.OutOrStdout(), p)
			return nil
		},
	}

	var (
		assets  []string
		risk    string
		content []string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Save preferences without the interactive form",
		Example: `  coinfeed prefs set --assets btc,eth --risk medium --content news,signals
  coinfeed prefs set --assets ethereum,doge`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPrefs(assets, risk, content)
			if err != nil {
				return err
			}
			return runPrefsSet(cmd, get(), p)
		},
	}
	set.Flags().StringSliceVar(&assets, "assets", nil, "coins to follow (BTC, ETH, SOL, DOGE)")
	set.Flags().StringVar(&risk, "risk", "", "investor profile: low, medium or high")
	set.Flags().StringSliceVar(&content, "content", nil, "content types (news, education, signals)")

	cmd.AddCommand(show, set)
	return cmd
}

// buildPrefs resolves loosely typed flag values against the catalog.
func buildPrefs(assets []string, risk string, content []string) (prefs.Preferences, error) {
	p := prefs.Preferences{InvestorType: risk}
	for _, raw := range assets {
		sym, ok := prefs.ResolveAsset(raw)
		if !ok {
			return prefs.Preferences{}, fmt.Errorf("unknown asset %q", raw)
		}
		if !p.HasAsset(sym) {
			p.CryptoAssets = append(p.CryptoAssets, sym)
		}
	}
	for _, raw := range content {
		c := strings.ToLower(strings.TrimSpace(raw))
		if !prefs.ValidContentType(c) {
			return prefs.Preferences{}, fmt.Errorf("unknown content type %q", raw)
		}
		p.ContentTypes = append(p.ContentTypes, c)
	}
	p = p.Normalize()
	return p, p.Validate()
}

func runPrefsSet(cmd *cobra.Command, e *env, p prefs.Preferences) error {
	ctx := cmd.Context()
	r := e.router()
	r.Initialize(ctx)
	token := r.Session(ctx).Token
	if token == "" {
		return errNotLoggedIn
	}
	if err := onboarding.NewService(e.client, e.store, e.log).Save(ctx, token, p); err != nil {
		return err
	}
	r.CompleteOnboarding(ctx)
	printPrefs(cmd.OutOrStdout(), p)
	return nil
}

func printPrefs(out io.Writer, p prefs.Preferences) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "assets\t%s\n", strings.Join(p.CryptoAssets, ", "))
	fmt.Fprintf(w, "profile\t%s\n", prefs.InvestorLabel(p.InvestorType))
	fmt.Fprintf(w, "content\t%s\n", strings.Join(p.ContentTypes, ", "))
	_ = w.Flush()
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if err := config.Save(flags.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config written")
			return nil
		},
	})
	return cmd
}
