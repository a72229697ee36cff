package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"todo-gateway/adapters/auth"
	"todo-gateway/adapters/backend"
	"todo-gateway/config"
	"todo-gateway/core"
	"todo-gateway/session"
)

const usage = `usage: todoctl <command> [args]

commands:
  whoami                         show the authenticated user
  list [-filter f] [-sort s]     list tasks (f: all|pending|completed, s: title|createdAt)
  get <id>                       show one task
  add <title> [-d description]   create a task
  done <id>                      mark completed
  undone <id>                    mark pending
  edit <id> [-title t] [-d d]    update title/description
  rm <id> [<id>...]              delete tasks
  stats                          pending/completed/total counts
`

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoadClient("")
	log := mustMakeLogger(cfg.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	provider := auth.NewClient(log, cfg.AuthURL, cfg.Timeout)
	store := session.NewStore(log, provider, cfg.CookieHeader)
	defer store.Subscribe(func(s core.Session, ok bool) {
		log.Debug("session updated", "present", ok, "has_token", ok && s.Token != "")
	})()

	engine := core.NewEngine(backend.NewClient(log, cfg.BackendURL, store, cfg.Timeout))

	ctx := context.Background()
	if err := run(ctx, os.Args[1], os.Args[2:], store, engine); err != nil {
		log.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, store *session.Store, engine *core.Engine) error {
	switch command {
	case "whoami":
		sess, ok, err := store.Refresh(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return core.ErrUnauthenticated
		}
		fmt.Printf("%s <%s>\n", sess.User.Name, sess.User.Email)
		if sess.Token == "" {
			fmt.Println("warning: no bearer token, privileged calls will fail")
		}
		return nil

	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		filter := fs.String("filter", string(core.FilterAll), "all|pending|completed")
		sortBy := fs.String("sort", string(core.SortCreatedAt), "title|createdAt")
		_ = fs.Parse(args)

		if err := engine.SetFilter(core.ViewFilter(*filter)); err != nil {
			return err
		}
		if err := engine.SetSort(core.ViewSort(*sortBy)); err != nil {
			return err
		}
		if err := engine.Refresh(ctx); err != nil {
			return err
		}
		return printTasks(engine.FilteredAndSorted())

	case "get":
		if len(args) < 1 {
			return fmt.Errorf("%w: get needs an id", core.ErrValidation)
		}
		t, err := engine.GetByID(ctx, args[0])
		if err != nil {
			return err
		}
		return printTasks([]core.Task{t})

	case "add":
		if len(args) < 1 {
			return fmt.Errorf("%w: add needs a title", core.ErrValidation)
		}
		title := args[0]
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		desc := fs.String("d", "", "description")
		_ = fs.Parse(args[1:])

		var d *string
		if *desc != "" {
			d = desc
		}
		t, err := engine.Create(ctx, title, d)
		if err != nil {
			return err
		}
		fmt.Printf("created %s\n", t.ID)
		return nil

	case "done", "undone":
		if len(args) < 1 {
			return fmt.Errorf("%w: %s needs an id", core.ErrValidation, command)
		}
		status := core.StatusCompleted
		if command == "undone" {
			status = core.StatusPending
		}
		_, err := engine.UpdateStatus(ctx, args[0], status)
		return err

	case "edit":
		if len(args) < 1 {
			return fmt.Errorf("%w: edit needs an id", core.ErrValidation)
		}
		fs := flag.NewFlagSet("edit", flag.ExitOnError)
		title := fs.String("title", "", "new title")
		desc := fs.String("d", "", "new description")
		_ = fs.Parse(args[1:])

		var p core.TaskPatch
		if *title != "" {
			p.Title = title
		}
		if *desc != "" {
			p.Description = desc
		}
		_, err := engine.UpdateFields(ctx, args[0], p)
		return err

	case "rm":
		if len(args) < 1 {
			return fmt.Errorf("%w: rm needs at least one id", core.ErrValidation)
		}
		sel := core.NewSelection()
		sel.SelectAll(args)
		for _, id := range sel.ToArray() {
			if err := engine.Delete(ctx, id); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			fmt.Printf("deleted %s\n", id)
		}
		return nil

	case "stats":
		st, err := engine.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("pending %d, completed %d, total %d\n", st.Pending, st.Completed, st.Total)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("%w: unknown command %q", core.ErrValidation, command)
	}
}

func printTasks(tasks []core.Task) error {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tCREATED")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Title, t.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func mustMakeLogger(logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
