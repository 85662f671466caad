// Package cmd implements the tempo CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (simulate, resolve, play, version).
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-drift/tempo/cmd/tempo/internal/config"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Env is what a command runs against: resolved configuration, output
// streams and a logger.
type Env struct {
	Context context.Context
	Config  *config.Resolved
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
}

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(env *Env, args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "tempo",
	Short: "tempo - hierarchical clocks and key-frame animation",
	Long: `tempo evaluates storyboard documents: trees of timelines whose leaves
animate typed values through key frames.

Use "tempo <command> --help" for more information about a command.`,
	Usage: "tempo <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with the process arguments. It cancels running
// commands on SIGINT and SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := Main(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// Main runs the CLI with explicit arguments and output streams.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Handle no arguments
	if len(args) == 0 {
		printHelp(stdout, rootCmd)
		return nil
	}

	// Handle global flags and extract --dir and --log-level
	var (
		dir, level   string
		filteredArgs []string
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(stdout, rootCmd)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version":
			if len(filteredArgs) == 0 {
				printVersion(stdout)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--dir", "--log-level":
			if i+1 >= len(args) {
				return fmt.Errorf("%s requires a value", arg)
			}
			if arg == "--dir" {
				dir = args[i+1]
			} else {
				level = args[i+1]
			}
			i++
		default:
			if v, ok := strings.CutPrefix(arg, "--dir="); ok {
				dir = v
				continue
			}
			if v, ok := strings.CutPrefix(arg, "--log-level="); ok {
				level = v
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp(stdout, rootCmd)
		return nil
	}

	// Find and execute the command
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(stderr, rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	// Check for help flag on subcommand
	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(stdout, cmd)
			return nil
		}
	}

	env, err := newEnv(ctx, dir, level, stdout, stderr)
	if err != nil {
		return err
	}
	return cmd.Run(env, cmdArgs)
}

func newEnv(ctx context.Context, dir, level string, stdout, stderr io.Writer) (*Env, error) {
	if dir == "" {
		root, err := config.FindProjectRoot()
		if err != nil {
			return nil, err
		}
		dir = root
	}
	cfg, err := config.Resolve(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
		}
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return &Env{
		Context: ctx,
		Config:  cfg,
		Stdout:  stdout,
		Stderr:  stderr,
		Logger:  logger,
	}, nil
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "tempo version %s (built %s)\n", Version, BuildTime)
}

func printHelp(w io.Writer, cmd *Command) {
	fmt.Fprintln(w, cmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", cmd.Usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(w, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -h, --help           Show help for a command")
	fmt.Fprintln(w, "  -v, --version        Show version information")
	fmt.Fprintln(w, "  --dir DIR            Project directory holding tempo.yaml (default: nearest)")
	fmt.Fprintln(w, "  --log-level LEVEL    debug, info, warn or error")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  TEMPO_STEP, TEMPO_MAX_TIME, TEMPO_FRAME_RATE, TEMPO_SPEED, TEMPO_LOG_LEVEL")
	fmt.Fprintln(w, "                       Override tempo.yaml (also read from .env)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  tempo simulate intro.yaml          Print values every simulation step")
	fmt.Fprintln(w, "  tempo resolve intro.yaml           Print resolved key-frame offsets")
	fmt.Fprintln(w, "  tempo play --speed 0.5 intro.yaml  Play in real time at half speed")
}

func printCommandHelp(w io.Writer, cmd *Command) {
	fmt.Fprintln(w, cmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", cmd.Usage)
}
