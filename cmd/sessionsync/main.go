package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wesm/sessionsync/internal/config"
	"github.com/wesm/sessionsync/internal/db"
	"github.com/wesm/sessionsync/internal/sync"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "sync":
			runSync(os.Args[2:])
			return
		case "stale":
			runStale(os.Args[2:])
			return
		case "resync":
			runResync(os.Args[2:])
			return
		case "locate":
			runLocate(os.Args[2:])
			return
		case "sessions":
			runSessions(os.Args[2:])
			return
		case "search":
			runSearch(os.Args[2:])
			return
		case "projects":
			runProjects(os.Args[2:])
			return
		case "version", "--version", "-v":
			fmt.Printf("sessionsync %s (commit %s, built %s)\n",
				version, commit, buildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	printUsage()
	os.Exit(2)
}

func printUsage() {
	fmt.Printf(`sessionsync %s - index AI agent session logs into SQLite

Ingests Claude Code and Codex CLI session files into a local
searchable database. Unchanged files are skipped by size and
content fingerprint, so repeated syncs are cheap.

Usage:
  sessionsync sync [-force]              Sync all session files
  sessionsync stale <session-id>         Check if a session's source changed
  sessionsync resync <session-id>        Force-resync one session
  sessionsync locate <session-id>        Print a session's source path
  sessionsync sessions [-project] [-limit]   List stored sessions
  sessionsync search [-project] [-limit] <query>  Full-text search
  sessionsync projects                   List projects with session counts
  sessionsync version                    Show version information
  sessionsync help                       Show this help

Environment variables:
  CLAUDE_PROJECTS_DIR   Claude Code projects directory
  CODEX_SESSIONS_DIR    Codex sessions directory
  SESSIONSYNC_DATA_DIR  Data directory (database)
  SESSIONSYNC_MACHINE   Machine tag stored with each session

Data is stored in ~/.sessionsync/ by default.
`, version)
}

func runSync(args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	force := fs.Bool("force", false,
		"reparse every file, ignoring stored fingerprints")
	mustParse(fs, args)

	engine, database := mustEngine()
	defer database.Close()

	stats := engine.SyncAll(*force)
	fmt.Printf("%d sessions (%d synced, %d skipped)\n",
		stats.TotalSessions, stats.Synced, stats.Skipped)
}

func runStale(args []string) {
	id := mustID("stale", args)

	engine, database := mustEngine()
	defer database.Close()

	fmt.Println(engine.IsStale(id))
}

func runResync(args []string) {
	id := mustID("resync", args)

	engine, database := mustEngine()
	defer database.Close()

	sess, err := engine.SyncSession(context.Background(), id)
	if err != nil {
		log.Fatalf("resyncing %s: %v", id, err)
	}
	if sess == nil {
		fmt.Fprintf(os.Stderr, "session %s not found\n", id)
		os.Exit(1)
	}
	fmt.Printf("%s: %d messages (%s)\n",
		sess.ID, sess.MessageCount, sess.Project)
}

func runLocate(args []string) {
	id := mustID("locate", args)

	engine, database := mustEngine()
	defer database.Close()

	path := engine.FindSourceFile(id)
	if path == "" {
		fmt.Fprintf(os.Stderr, "session %s not found\n", id)
		os.Exit(1)
	}
	fmt.Println(path)
}

func runSessions(args []string) {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	project := fs.String("project", "", "filter by project name")
	limit := fs.Int("limit", db.DefaultSessionLimit,
		"maximum sessions to list")
	mustParse(fs, args)

	database := mustOpenDB()
	defer database.Close()

	sessions, err := database.GetSessions(
		context.Background(), *project, *limit,
	)
	if err != nil {
		log.Fatalf("listing sessions: %v", err)
	}
	for _, s := range sessions {
		started := ""
		if s.StartedAt != nil {
			started = *s.StartedAt
		}
		fmt.Printf("%s\t%s\t%s\t%d msgs\n",
			s.ID, s.Project, started, s.MessageCount)
	}
}

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	project := fs.String("project", "", "filter by project name")
	limit := fs.Int("limit", db.DefaultSearchLimit,
		"maximum results")
	mustParse(fs, args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: sessionsync search [flags] <query>")
		os.Exit(2)
	}
	query := fs.Arg(0)

	database := mustOpenDB()
	defer database.Close()

	if !database.HasFTS() {
		log.Fatal("full-text search unavailable: " +
			"SQLite built without FTS5")
	}

	results, err := database.Search(
		context.Background(), query, *project, *limit,
	)
	if err != nil {
		log.Fatalf("searching: %v", err)
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\t%s\n\t%s\n",
			r.SessionID, r.Project, r.Role, r.Snippet)
	}
}

func runProjects(args []string) {
	mustParse(flag.NewFlagSet("projects", flag.ExitOnError), args)

	database := mustOpenDB()
	defer database.Close()

	projects, err := database.GetProjects(context.Background())
	if err != nil {
		log.Fatalf("listing projects: %v", err)
	}
	for _, p := range projects {
		fmt.Printf("%s\t%d sessions\n", p.Name, p.SessionCount)
	}
}

func mustParse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}
}

func mustID(cmd string, args []string) string {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintf(os.Stderr,
			"usage: sessionsync %s <session-id>\n", cmd)
		os.Exit(2)
	}
	return args[0]
}

func mustConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("creating data dir: %v", err)
	}
	return cfg
}

func mustOpenDB() *db.DB {
	cfg := mustConfig()
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	return database
}

func mustEngine() (*sync.Engine, *db.DB) {
	cfg := mustConfig()
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	engine := sync.NewEngine(
		database, cfg.ClaudeProjectsDir,
		cfg.CodexSessionsDir, cfg.Machine,
	)
	return engine, database
}
