// Package repl runs the interactive ESG preference conversation in a terminal.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/steveyegge/esgmatch/internal/conversation"
	"github.com/steveyegge/esgmatch/internal/report"
	"github.com/steveyegge/esgmatch/internal/storage"
)

// REPL represents the interactive shell
type REPL struct {
	tracker  *conversation.Tracker
	store    storage.Storage
	dialogue *Dialogue
	out      io.Writer
	ctx      context.Context
	history  string
	plain    bool
	saved    bool
	commands map[string]CommandHandler
}

// CommandHandler handles a specific slash command
type CommandHandler func(args []string) error

// Config holds REPL configuration
type Config struct {
	Tracker *conversation.Tracker
	// Store receives the profile when the conversation completes (optional)
	Store storage.Storage
	// Out defaults to stdout
	Out io.Writer
	// HistoryFile persists readline history; empty keeps it in memory
	HistoryFile string
	// Plain prints Markdown as-is instead of rendering it
	Plain bool
}

// New creates a new REPL instance
func New(cfg *Config) (*REPL, error) {
	if cfg == nil || cfg.Tracker == nil {
		return nil, fmt.Errorf("tracker is required")
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	r := &REPL{
		tracker:  cfg.Tracker,
		store:    cfg.Store,
		out:      out,
		history:  cfg.HistoryFile,
		plain:    cfg.Plain,
		commands: make(map[string]CommandHandler),
	}
	r.registerCommands()
	return r, nil
}

// Run starts the REPL loop
func (r *REPL) Run(ctx context.Context) error {
	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("you> "),
		HistoryFile:       r.history,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdout:            r.out,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	r.start(ctx)

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				// Ctrl+C - just show prompt again
				continue
			} else if errors.Is(err, io.EOF) {
				// Ctrl+D - exit
				return r.finish()
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(r.out, "%s %v\n", red("Error:"), err)
		}
	}
}

// start opens a new conversation and prints its first question
func (r *REPL) start(ctx context.Context) {
	r.ctx = ctx
	r.dialogue = NewDialogue(ctx, r.tracker)
	r.saved = false
	r.say(r.dialogue.Start(ctx))
	fmt.Fprintln(r.out, "Type '/help' for commands, '/quit' to stop early.")
	fmt.Fprintln(r.out)
}

// processInput handles one line: a slash command or a conversation turn
func (r *REPL) processInput(line string) error {
	if strings.HasPrefix(line, "/") {
		parts := strings.Fields(line)
		if handler, ok := r.commands[strings.ToLower(parts[0])]; ok {
			return handler(parts[1:])
		}
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(r.out, "%s Unknown command %s. Use '/help' for available commands.\n", yellow("Note:"), parts[0])
		return nil
	}

	reply, err := r.dialogue.Respond(r.ctx, line)
	if errors.Is(err, ErrDialogueComplete) {
		return r.finishAndExit()
	}
	if err != nil {
		return fmt.Errorf("failed to process turn: %w", err)
	}

	if n := len(reply.Result.MatchedFields); n > 0 && reply.Result.CommitmentDetected {
		gray := color.New(color.FgHiBlack).SprintFunc()
		fmt.Fprintf(r.out, "%s\n", gray(fmt.Sprintf("(recorded %d field(s))", n)))
	}
	r.say(reply.Text)

	if reply.Done {
		return r.finishAndExit()
	}
	return nil
}

// say prints assistant text
func (r *REPL) say(text string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.markdown(text))
}

func (r *REPL) markdown(text string) string {
	if r.plain {
		return text
	}
	rendered, err := report.Render(text, 0)
	if err != nil {
		slog.Debug("markdown rendering failed", "error", err)
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

func (r *REPL) finishAndExit() error {
	if err := r.finish(); err != nil {
		return err
	}
	return io.EOF // Signal to exit the loop
}

// finish prints the profile and saves it once
func (r *REPL) finish() error {
	if r.saved {
		return nil
	}
	r.saved = true

	profile := r.dialogue.Profile()
	r.say(report.Markdown(profile))

	if r.store == nil {
		return nil
	}
	if err := r.store.SaveProfile(r.ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Profile saved as %s\n", green("✓"), profile.SessionID)
	return nil
}

// registerCommands registers all built-in commands
func (r *REPL) registerCommands() {
	r.commands["/help"] = r.cmdHelp
	r.commands["/?"] = r.cmdHelp
	r.commands["/progress"] = r.cmdProgress
	r.commands["/topic"] = r.cmdTopic
	r.commands["/summary"] = r.cmdSummary
	r.commands["/quit"] = r.cmdQuit
	r.commands["/exit"] = r.cmdQuit
}

// cmdHelp shows help information
func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"/help, /?", "Show this help message"},
		{"/progress", "Show how many topics are covered"},
		{"/topic", "Repeat the current question"},
		{"/summary", "Show the preference profile so far"},
		{"/quit, /exit", "Finish now and show the profile"},
	}
	for _, cmd := range commands {
		fmt.Fprintf(r.out, "  %-14s %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Anything else you type is your answer to the current question.")
	fmt.Fprintln(r.out)
	return nil
}

// cmdProgress shows topic progress
func (r *REPL) cmdProgress(args []string) error {
	p := r.dialogue.Progress()
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(r.out, "\n%s topic %d of %d (%d%% covered), %d field(s) recorded\n\n",
		cyan("Progress:"), p.Current, p.Total, p.Percentage, r.dialogue.Session().Ledger.Len())
	return nil
}

// cmdTopic repeats the current topic introduction
func (r *REPL) cmdTopic(args []string) error {
	if r.dialogue.Done() {
		fmt.Fprintln(r.out, "Every topic has been covered.")
		return nil
	}
	r.say(CategoryIntro(r.dialogue.Current()))
	return nil
}

// cmdSummary prints the profile so far without ending the conversation
func (r *REPL) cmdSummary(args []string) error {
	r.say(report.Markdown(r.dialogue.Profile()))
	return nil
}

// cmdQuit ends the conversation early
func (r *REPL) cmdQuit(args []string) error {
	if err := r.finish(); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s Goodbye!\n", green("✓"))
	return io.EOF // Signal to exit the loop
}
