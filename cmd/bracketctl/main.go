package main

import (
	"bufio"
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/render"
	"github.com/Dosada05/tournament-bracket/repositories"
	"github.com/Dosada05/tournament-bracket/services"
)

//go:embed help.txt
var helpText string

type cmdHandler func(ctx context.Context, args []string) error

var commands = map[string]cmdHandler{
	"help":    handleHelp,
	"show":    handleShow,
	"select":  handleSelect,
	"preview": handlePreview,
}

var (
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149")).Bold(true)
	championship = lipgloss.NewStyle().Foreground(lipgloss.Color("#e3b341")).Bold(true)
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	handler, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err := handler(ctx, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(cliMessage(err)))
		os.Exit(1)
	}
}

// cliMessage prefers the operator text of known errors and falls back to
// the raw error for flag and argument problems.
func cliMessage(err error) string {
	if msg := services.UserMessage(err); msg != services.MsgUnexpected {
		return msg
	}
	return err.Error()
}

func usage() {
	fmt.Printf("%v", helpText)
}

func handleHelp(ctx context.Context, args []string) error {
	usage()
	return nil
}

// common holds the flags shared by every command.
type common struct {
	api        string
	tournament string
	timeout    time.Duration
	theme      string
	verbose    bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.api, "api", os.Getenv("UPSTREAM_API_URL"), "Upstream API base URL")
	fs.StringVar(&c.tournament, "t", "", "Tournament id")
	fs.DurationVar(&c.timeout, "timeout", 10*time.Second, "Upstream request timeout")
	fs.StringVar(&c.theme, "theme", brackets.ThemeLight, "Theme: light or dark")
	fs.BoolVar(&c.verbose, "v", false, "Verbose logging")
}

func (c *common) logger() *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// view wires a one-off bracket view for the tournament. The CLI has no hub,
// the championship signal is printed instead.
func (c *common) view(out io.Writer) (*services.BracketView, error) {
	if c.tournament == "" {
		return nil, errors.New("tournament id is required (-t)")
	}
	if c.api == "" {
		return nil, errors.New("upstream API URL is required (-api or UPSTREAM_API_URL)")
	}

	logger := c.logger()
	repo, err := repositories.NewHTTPBracketRepository(c.api, nil, c.timeout)
	if err != nil {
		return nil, err
	}
	// Тикеты живут только в этом процессе
	tickets, err := services.NewTicketIssuer(uuid.NewString(), time.Minute)
	if err != nil {
		return nil, err
	}

	builder := brackets.NewBuilder(brackets.DefaultSpacing(), brackets.RenderContext{Theme: c.theme}, logger)
	loader := services.NewSnapshotLoader(repo, builder, logger)
	registry := services.NewViewRegistry(loader, repo, tickets, printCelebrator{out: out}, nil, logger)
	return registry.View(c.tournament), nil
}

type printCelebrator struct {
	out io.Writer
}

func (p printCelebrator) Celebrate(_ context.Context, event services.ChampionshipDecided) error {
	_, err := fmt.Fprintln(p.out, championship.Render(event.Message()))
	return err
}

func handleShow(ctx context.Context, args []string) error {
	var c common
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	v, err := c.view(os.Stdout)
	if err != nil {
		return err
	}
	tree, err := v.Reload(ctx)
	if err != nil {
		return err
	}
	fmt.Println(render.Text(tree))
	return nil
}

func handlePreview(ctx context.Context, args []string) error {
	var c common
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	c.register(fs)
	round := fs.Int("round", 1, "Last round to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v, err := c.view(os.Stdout)
	if err != nil {
		return err
	}
	tree, err := v.Preview(ctx, *round)
	if err != nil {
		return err
	}
	fmt.Println(render.Text(tree))
	return nil
}

func handleSelect(ctx context.Context, args []string) error {
	var c common
	fs := flag.NewFlagSet("select", flag.ExitOnError)
	c.register(fs)
	yes := fs.Bool("y", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected exactly one match:player argument")
	}
	target, err := parseTarget(fs.Arg(0))
	if err != nil {
		return err
	}

	v, err := c.view(os.Stdout)
	if err != nil {
		return err
	}
	if _, err := v.Reload(ctx); err != nil {
		return err
	}

	pending, err := v.Controller.Select(target)
	if err != nil {
		return err
	}

	if !*yes && !confirm(os.Stdin, os.Stdout, fmt.Sprintf("%s (%s) [y/N]: ", pending.Prompt, pending.PlayerName)) {
		fmt.Println("Cancelled.")
		return v.Controller.Decline()
	}

	outcome, err := v.Controller.Confirm(ctx, pending.Ticket)
	if err != nil {
		return err
	}
	if outcome.ReloadErr != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(services.UserMessage(outcome.ReloadErr)))
		return nil
	}
	fmt.Println(render.Text(outcome.Tree))
	return nil
}

// parseTarget reads "match:player".
func parseTarget(s string) (brackets.Target, error) {
	m, p, ok := strings.Cut(s, ":")
	if !ok {
		return brackets.Target{}, fmt.Errorf("invalid target %q, expected match:player", s)
	}
	matchID, err := strconv.Atoi(m)
	if err != nil {
		return brackets.Target{}, fmt.Errorf("invalid match id %q", m)
	}
	playerID, err := strconv.Atoi(p)
	if err != nil {
		return brackets.Target{}, fmt.Errorf("invalid player id %q", p)
	}
	return brackets.Target{MatchID: matchID, PlayerID: playerID}, nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
