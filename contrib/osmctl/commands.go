package osmctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/osmx/osm-go"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrNotAuthorized is returned by commands that act as a user before authorize has run.
var ErrNotAuthorized = errors.New("no user credentials, run osmctl authorize first")

type cli struct {
	v *viper.Viper
}

// NewRootCommand builds the osmctl command tree. A nil v gets a fresh viper.
func NewRootCommand(v *viper.Viper) *cobra.Command {
	if v == nil {
		v = viper.New()
	}
	c := &cli{v: v}

	root := &cobra.Command{
		Use:           "osmctl",
		Short:         "Read sections, members, events and finances from Online Scout Manager",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return c.readConfig()
		},
	}

	defaults := NewConfig()
	flags := root.PersistentFlags()
	flags.String(keyConfig, "", "config file (default ./osmctl.yaml or $HOME/.osmctl/osmctl.yaml)")
	flags.String(keySite, defaults.Site, "OSM site: osm or osm_staging")
	flags.String(keyBaseURL, "", "override the site's base URL")
	flags.String(keyAPIID, "", "API application id")
	flags.String(keyToken, "", "API application token")
	flags.String(keyFormat, defaults.Format, "output format: json or yaml")
	flags.String(keyCache, defaults.Cache, "cache store: none, memory, redis or bolt")
	flags.String(keyRedisAddr, defaults.RedisAddr, "redis address, comma separated for a cluster")
	flags.String(keyCacheFile, defaults.CacheFile, "bolt cache file")
	flags.Duration(keyCacheTTL, defaults.CacheTTL, "time to keep cached responses")
	flags.String(keyLogFile, "", "write logs to this file instead of stderr")
	flags.BoolP(keyVerbose, "v", false, "log requests")
	_ = flags.MarkHidden(keyBaseURL)

	root.AddCommand(
		c.authorizeCommand(),
		c.sectionsCommand(),
		c.termsCommand(),
		c.membersCommand(),
		c.eventsCommand(),
		c.invoicesCommand(),
		c.smsReportsCommand(),
		c.emailReportsCommand(),
	)
	return root
}

func (c *cli) readConfig() error {
	c.v.SetEnvPrefix("OSMX")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	_ = c.v.BindEnv(keySite, constants.EnvSite)

	if file := c.v.GetString(keyConfig); file != "" {
		c.v.SetConfigFile(file)
	} else {
		c.v.SetConfigName("osmctl")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")
		c.v.AddConfigPath("$HOME/.osmctl")
	}

	err := c.v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil, errors.As(err, &notFound):
		return nil
	case errors.Is(err, os.ErrNotExist):
		// an explicit file that authorize has not written yet
		return nil
	}
	return err
}

type runFunc func(ctx context.Context, cmd *cobra.Command, s *Session) (any, error)

// run opens a session for the command and prints what fn returns.
func (c *cli) run(needsUser bool, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		conf := ConfigFromViper(c.v)
		s, err := Open(conf)
		if err != nil {
			return err
		}
		defer func() {
			_ = s.Close()
		}()
		if needsUser && !s.API.Authorized() {
			return ErrNotAuthorized
		}

		result, err := fn(cmd.Context(), cmd, s)
		if err != nil {
			return err
		}
		return Write(cmd.OutOrStdout(), conf.Format, result)
	}
}

// sectionFlag resolves --section, defaulting to the user's default section.
func sectionFlag(ctx context.Context, cmd *cobra.Command, a *osm.API) (int, error) {
	sectionID, err := cmd.Flags().GetInt("section")
	if err != nil {
		return 0, err
	}
	if sectionID > 0 {
		return sectionID, nil
	}
	section, err := osm.GetDefaultSection(ctx, a)
	if err != nil {
		return 0, err
	}
	return section.ID, nil
}

func addSectionFlag(cmd *cobra.Command) {
	cmd.Flags().Int("section", 0, "section id (default: the user's default section)")
}

func (c *cli) authorizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Sign in as an OSM user and store their credentials in the config file",
	}
	cmd.Flags().String("email", "", "OSM user's email address")
	cmd.Flags().String("password", "", "OSM user's password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		conf := ConfigFromViper(c.v)
		s, err := Open(conf)
		if err != nil {
			return err
		}
		defer func() {
			_ = s.Close()
		}()

		creds, err := s.API.Authorize(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if err := SaveCredentials(conf.ConfigFile, creds); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "authorised as user %s, credentials saved to %s\n", creds.UserID, conf.ConfigFile)
		return err
	}
	return cmd
}

func (c *cli) sectionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List the sections the user can access",
		RunE: c.run(true, func(ctx context.Context, _ *cobra.Command, s *Session) (any, error) {
			return osm.GetSections(ctx, s.API)
		}),
	}
}

func (c *cli) termsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "List terms, for every section or just one",
		RunE: c.run(true, func(ctx context.Context, cmd *cobra.Command, s *Session) (any, error) {
			sectionID, _ := cmd.Flags().GetInt("section")
			if sectionID > 0 {
				return osm.GetTermsForSection(ctx, s.API, sectionID)
			}
			return osm.GetTerms(ctx, s.API)
		}),
	}
	cmd.Flags().Int("section", 0, "section id (default: all sections)")
	return cmd
}

func (c *cli) membersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "List a section's members in a term",
		RunE: c.run(true, func(ctx context.Context, cmd *cobra.Command, s *Session) (any, error) {
			sectionID, err := sectionFlag(ctx, cmd, s.API)
			if err != nil {
				return nil, err
			}
			termID, _ := cmd.Flags().GetInt("term")
			return osm.GetMembers(ctx, s.API, sectionID, termID)
		}),
	}
	addSectionFlag(cmd)
	cmd.Flags().Int("term", 0, "term id (default: the current term)")
	return cmd
}

func (c *cli) eventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List a section's events",
		RunE: c.run(true, func(ctx context.Context, cmd *cobra.Command, s *Session) (any, error) {
			sectionID, err := sectionFlag(ctx, cmd, s.API)
			if err != nil {
				return nil, err
			}
			return osm.GetEvents(ctx, s.API, sectionID)
		}),
	}
	addSectionFlag(cmd)
	return cmd
}

func (c *cli) invoicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List a section's invoices",
		RunE: c.run(true, func(ctx context.Context, cmd *cobra.Command, s *Session) (any, error) {
			sectionID, err := sectionFlag(ctx, cmd, s.API)
			if err != nil {
				return nil, err
			}
			return osm.GetInvoices(ctx, s.API, sectionID)
		}),
	}
	addSectionFlag(cmd)
	return cmd
}

func (c *cli) smsReportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sms-reports",
		Short: "Show delivery reports for a section's text messages",
		RunE: c.run(true, func(ctx context.Context, cmd *cobra.Command, s *Session) (any, error) {
			sectionID, err := sectionFlag(ctx, cmd, s.API)
			if err != nil {
				return nil, err
			}
			return osm.GetSMSDeliveryReports(ctx, s.API, sectionID)
		}),
	}
	addSectionFlag(cmd)
	return cmd
}

func (c *cli) emailReportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email-reports",
		Short: "Show delivery reports for a section's emails",
		RunE: c.run(true, func(ctx context.Context, cmd *cobra.Command, s *Session) (any, error) {
			sectionID, err := sectionFlag(ctx, cmd, s.API)
			if err != nil {
				return nil, err
			}
			return osm.GetEmailDeliveryReports(ctx, s.API, sectionID)
		}),
	}
	addSectionFlag(cmd)
	return cmd
}
