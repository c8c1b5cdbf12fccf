package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vinke29/taskdeck/internal/app"
	"github.com/vinke29/taskdeck/internal/cache"
	"github.com/vinke29/taskdeck/internal/dates"
	"github.com/vinke29/taskdeck/internal/remote"
	"github.com/vinke29/taskdeck/internal/session"
	"github.com/vinke29/taskdeck/internal/ui"
	"github.com/vinke29/taskdeck/internal/ui/theme"
)

var (
	version = "0.1.0"
)

func main() {
	// Subcommand handling
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "add":
			handleAdd(os.Args[2:])
			return
		case "version":
			fmt.Printf("taskdeck v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}

	// Parse flags for TUI mode
	userFlag := flag.String("user", envOrDefault("TASKDECK_USER", "default"), "User to sign in as")
	remoteFlag := flag.String("remote", envOrDefault("TASKDECK_REMOTE", "http://localhost:8787"), "Remote store base URL")
	dataDirFlag := flag.String("data-dir", "", "Data directory (default ~/.local/share/taskdeck)")
	themeFlag := flag.String("theme", "", "Theme name (nord, dracula, gruvbox, catppuccin)")
	flag.Parse()

	if err := runTUI(*userFlag, *remoteFlag, *dataDirFlag, *themeFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `taskdeck - A task manager with subtasks that syncs

Usage:
  taskdeck                  Start the TUI
  taskdeck add <task>       Quick add a task
  taskdeck version          Show version
  taskdeck help             Show this help

Quick Add Syntax:
  taskdeck add "Buy groceries"
  taskdeck add "Book flights due:friday"

  Due date:  due:today due:tomorrow due:friday due:2026-01-15

TUI Options:
  --user <name>     User to sign in as (default: default)
  --remote <url>    Remote store base URL
  --data-dir <dir>  Data directory
  --theme <name>    Theme (nord, dracula, gruvbox, catppuccin)

Keybindings:
  Navigation:   ↑/↓ or j/k    Move cursor
                g/G           Go to top/bottom
                ]             Jump between sections

  Actions:      a             Add task
                A             Add subtask
                enter         Edit
                tab           Toggle done
                t             Set due date
                d             Delete (with confirm)
                r             Reorder with j/k
                s             Sort by due date
                u             Restore from completed

  System:       ctrl+t        Cycle theme
                ?             Help
                q             Quit`

	fmt.Println(help)
}

func handleAdd(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: taskdeck add <task>")
		fmt.Fprintln(os.Stderr, "Example: taskdeck add \"Buy groceries due:tomorrow\"")
		os.Exit(1)
	}

	text := strings.Join(args, " ")
	title, due := parseQuickAdd(text)
	if title == "" {
		fmt.Fprintln(os.Stderr, "Error: empty task text")
		os.Exit(1)
	}

	// Quick add goes through a short-lived session: the cache write is
	// synchronous, the remote flush gets a moment to run.
	cfg := app.DefaultConfig()
	localCache, err := cache.Open(cfg.CachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening cache: %v\n", err)
		os.Exit(1)
	}
	defer localCache.Close()

	sess := session.New(session.Config{
		Remote:   remote.NewClient(envOrDefault("TASKDECK_REMOTE", cfg.RemoteURL)),
		Cache:    localCache,
		Debounce: 50 * time.Millisecond,
	})
	defer sess.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user := envOrDefault("TASKDECK_USER", "default")
	if err := sess.SignIn(ctx, user); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tasks: %v\n", err)
		os.Exit(1)
	}

	sess.AddTask(title, due)

	// Let the debounced flush fire before the session closes. A dead
	// remote is fine; the task is already in the cache.
	time.Sleep(300 * time.Millisecond)

	fmt.Printf("Created: %s\n", title)
	if due != nil {
		fmt.Printf("Due: %s\n", dates.FormatDue(*due, time.Now()))
	}
}

func parseQuickAdd(text string) (string, *time.Time) {
	words := strings.Fields(text)
	var titleParts []string
	var due *time.Time

	for _, word := range words {
		if strings.HasPrefix(strings.ToLower(word), "due:") {
			dateStr := strings.TrimPrefix(strings.ToLower(word), "due:")
			if parsed := dates.ParseNatural(dateStr, time.Now()); parsed != nil {
				due = parsed
				continue
			}
		}
		titleParts = append(titleParts, word)
	}

	return strings.Join(titleParts, " "), due
}

func runTUI(user, remoteURL, dataDir, themeName string) error {
	cfg := app.DefaultConfig()
	if dataDir != "" {
		cfg.DataDir = dataDir
		cfg.CachePath = filepath.Join(dataDir, "cache.db")
	}
	cfg.RemoteURL = remoteURL

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	if themeName != "" {
		if t, ok := theme.ByName(themeName); ok {
			theme.SetTheme(t)
		} else {
			return fmt.Errorf("unknown theme %q", themeName)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err = application.SignIn(ctx, user)
	cancel()
	if err != nil {
		return err
	}

	model := ui.NewRootModel(application.Session)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	// Failed remote writes flip the header to offline.
	application.SetSyncListener(func(err error) {
		p.Send(ui.SyncErrorMsg{Err: err})
	})

	_, err = p.Run()
	return err
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
