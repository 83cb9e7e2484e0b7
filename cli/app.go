// Package cli is the eventspot command line tool.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"eventspot/api"
	"eventspot/config"
	"eventspot/factory"
	"eventspot/guard"
	"eventspot/logger"
	"eventspot/output"
	"eventspot/session"
	"eventspot/vault"
)

// errReported marks a failure the user has already been told about.
var errReported = errors.New("cli: reported")

// App holds what every command shares. Fields left nil are built from the
// configuration on first use.
type App struct {
	Version string

	printer *output.Printer
	input   *bufio.Reader
	cfgFile string
	verbose bool

	factory factory.Factory
	store   session.Store
	nav     *guard.PromptNavigator
	guard   *guard.Guard
	client  *api.Client
}

func NewApp(version string, in io.Reader, out, errOut io.Writer, useColors bool) *App {
	logger.SetOutput(errOut)
	return &App{
		Version: version,
		printer: output.NewPrinter(out, errOut, useColors),
		input:   bufio.NewReader(in),
		nav:     guard.NewPromptNavigator(out),
		factory: factory.NewFactory(),
	}
}

// Command returns the root command with every subcommand attached.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "eventspot",
		Short: "Event Spot from the terminal",
		Long: `eventspot browses and books events, lets organizers submit events for
moderation, and gives admins the moderation console.

Example usage:
  eventspot login --email me@example.com
  eventspot events
  eventspot book <event-id> --tickets 2
  eventspot create-event`,
		Version:       a.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.nav.SetLocation("/" + strings.Join(append([]string{cmd.Name()}, args...), "/"))
			return a.loadConfig(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().String("backend", "", "backend base url")
	_ = viper.BindPFlag(config.BackendURL, root.PersistentFlags().Lookup("backend"))

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.signupCommand(),
		a.confirmCommand(),
		a.resendCodeCommand(),
		a.eventsCommand(),
		a.eventCommand(),
		a.myEventsCommand(),
		a.deleteEventCommand(),
		a.bookCommand(),
		a.createEventCommand(),
		a.updateEventCommand(),
		a.moderateCommand(),
		a.usersCommand(),
		a.analyticsCommand(),
		a.chatbotUploadCommand(),
		a.unbookedCommand(),
		a.serveCommand(),
	)
	return root
}

// Execute runs the command line and prints any failure not yet reported.
func (a *App) Execute(ctx context.Context, args []string) error {
	defer a.factory.Close()

	root := a.Command()
	root.SetArgs(args)
	root.SetOut(a.printer.Out())
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		a.printer.Error(userMessage(err))
	}
	return err
}

func (a *App) loadConfig(ctx context.Context) error {
	if a.cfgFile != "" {
		viper.SetConfigFile(a.cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("loadConfig: error reading config %s: %w", a.cfgFile, err)
		}
	}

	level := viper.GetString(config.LogLevel)
	if a.verbose {
		level = "debug"
	}
	logger.SetLevel(level)

	if token := viper.GetString(config.VaultToken); token != "" {
		v, err := vault.New(token, viper.GetString(config.VaultAddress), viper.GetString(config.VaultSecretPath))
		if err != nil {
			return err
		}
		if _, err := vault.Overlay(ctx, v, config.Secrets, viper.Set); err != nil {
			logger.Warnf(ctx, "cli: vault secrets not loaded: %+v", err)
		}
	}
	return nil
}

func (a *App) sessionStore(ctx context.Context) (session.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	switch kind := viper.GetString(config.SessionStore); kind {
	case "memory":
		a.store = session.NewMemoryStore()
	case "redis":
		client := a.factory.Redis(ctx)
		if client == nil {
			return nil, fmt.Errorf("sessionStore: %s is redis but %s is not set", config.SessionStore, config.RedisAddress)
		}
		a.store = session.NewRedisStore(client, viper.GetString(config.SessionRedisPrefix))
	case "file", "":
		path := viper.GetString(config.SessionPath)
		if path == "" {
			var err error
			if path, err = session.DefaultPath(); err != nil {
				return nil, err
			}
		}
		a.store = session.NewFileStore(path, viper.GetString(config.SessionSealKey))
	default:
		return nil, fmt.Errorf("sessionStore: unknown session store %q", kind)
	}
	return a.store, nil
}

func (a *App) sessionGuard(ctx context.Context) (*guard.Guard, error) {
	if a.guard != nil {
		return a.guard, nil
	}
	store, err := a.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	a.guard = guard.New(store, a.nav, viper.GetString(config.LoginURL), guard.WithSkew(viper.GetDuration(config.ExpirySkew)))
	return a.guard, nil
}

func (a *App) api(ctx context.Context) (*api.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	g, err := a.sessionGuard(ctx)
	if err != nil {
		return nil, err
	}
	a.client = api.New(viper.GetString(config.BackendURL), g,
		api.WithTimeout(viper.GetDuration(config.BackendTimeout)),
		api.WithDefaultKey(viper.GetString(config.RazorpayKeyID)),
	)
	return a.client, nil
}

// prompt asks for one line of input. An empty answer keeps def.
func (a *App) prompt(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(a.printer.Out(), "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(a.printer.Out(), "%s: ", label)
	}
	line, err := a.input.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("prompt: no answer for %s: %w", label, err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// userMessage never shows raw transport errors.
func userMessage(err error) string {
	var urlErr *url.Error
	switch {
	case errors.As(err, &urlErr):
		return "Could not reach Event Spot. Please try again."
	case errors.Is(err, api.ErrUnauthenticated):
		return "Please sign in first."
	case errors.Is(err, api.ErrSessionEnded):
		return "Your session has ended. Please sign in again."
	case errors.Is(err, api.ErrSuggestionRequired):
		return "Please add a suggestion for the organizer when disapproving."
	case errors.Is(err, api.ErrNotPDF):
		return "Only PDF files can be uploaded."
	}
	return api.Message(err, err.Error())
}
