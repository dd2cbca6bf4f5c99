package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cms "github.com/autophileaozora/smk-kristen5-website-sub003"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/bulk"
	contentcmd "github.com/autophileaozora/smk-kristen5-website-sub003/internal/commands/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/google/uuid"
)

const usage = `usage: portal [-config file] <command> [flags]

commands:
  serve                          run the admin and public HTTP APIs
  submit|approve|unpublish|delete -id <uuid>
  reject -id <uuid> -reason <text>
  bulk-delete -ids <uuid,uuid,...>
  import -file <path.md>

lifecycle commands also take -actor <uuid> and -role administrator|contributor.
`

var moduleBuilder = cms.New

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("portal: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("portal", flag.ContinueOnError)
	configPath := global.String("config", "", "Optional yaml/json/toml/env config file; the environment always applies")
	global.Usage = func() {
		fmt.Fprint(global.Output(), usage)
		fmt.Fprintln(global.Output(), "\nenvironment:")
		fmt.Fprint(global.Output(), cms.ConfigUsage())
	}
	if err := global.Parse(args); err != nil {
		return err
	}
	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return flag.ErrHelp
	}

	cfg, err := cms.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	module, err := moduleBuilder(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	verb, verbArgs := rest[0], rest[1:]
	if verb == "serve" {
		return serve(module, cfg)
	}
	return runCommand(module, verb, verbArgs, stdout)
}

func serve(module *cms.Module, cfg cms.Config) error {
	handler, err := module.Handler()
	if err != nil {
		return err
	}
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("portal: listening on %s", cfg.HTTP.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runCommand(module *cms.Module, verb string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(verb, flag.ContinueOnError)
	actorID := fs.String("actor", "", "Actor UUID")
	role := fs.String("role", string(domain.RoleContributor), "Actor role (administrator or contributor)")
	id := fs.String("id", "", "Content UUID")
	ids := fs.String("ids", "", "Comma separated content UUIDs")
	reason := fs.String("reason", "", "Rejection reason")
	file := fs.String("file", "", "Markdown file with YAML front matter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ref := contentcmd.ActorRef{Role: domain.Role(strings.ToLower(strings.TrimSpace(*role)))}
	if strings.TrimSpace(*actorID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*actorID))
		if err != nil {
			return fmt.Errorf("parse actor: %w", err)
		}
		ref.ActorID = parsed
	}
	contentID, err := optionalUUID(*id)
	if err != nil {
		return fmt.Errorf("parse id: %w", err)
	}

	subscriptions := contentcmd.Subscribe(module.Commands())
	defer func() {
		for _, sub := range subscriptions {
			sub.Unsubscribe()
		}
	}()

	ctx := context.Background()
	switch verb {
	case "submit":
		return dispatch(ctx, stdout, contentcmd.SubmitContentCommand{ContentID: contentID, ActorRef: ref}, contentID)
	case "approve":
		return dispatch(ctx, stdout, contentcmd.ApproveContentCommand{ContentID: contentID, ActorRef: ref}, contentID)
	case "unpublish":
		return dispatch(ctx, stdout, contentcmd.UnpublishContentCommand{ContentID: contentID, ActorRef: ref}, contentID)
	case "delete":
		return dispatch(ctx, stdout, contentcmd.DeleteContentCommand{ContentID: contentID, ActorRef: ref}, contentID)
	case "reject":
		return dispatch(ctx, stdout, contentcmd.RejectContentCommand{ContentID: contentID, Reason: *reason, ActorRef: ref}, contentID)
	case "bulk-delete":
		list, err := parseUUIDList(*ids)
		if err != nil {
			return fmt.Errorf("parse ids: %w", err)
		}
		report := &bulk.Report{}
		if err := dispatcher.Dispatch(ctx, contentcmd.BulkDeleteContentCommand{ContentIDs: list, ActorRef: ref, Report: report}); err != nil {
			return err
		}
		return writeJSON(stdout, report)
	case "import":
		source, err := os.ReadFile(strings.TrimSpace(*file))
		if err != nil {
			return fmt.Errorf("read markdown: %w", err)
		}
		created := &content.Item{}
		if err := dispatcher.Dispatch(ctx, contentcmd.ImportMarkdownCommand{Source: source, ActorRef: ref, Result: created}); err != nil {
			return err
		}
		return writeJSON(stdout, created)
	default:
		return fmt.Errorf("unknown command %q", verb)
	}
}

type lifecycleMessage interface {
	Type() string
	Validate() error
}

func dispatch[T lifecycleMessage](ctx context.Context, stdout io.Writer, msg T, id uuid.UUID) error {
	if err := dispatcher.Dispatch(ctx, msg); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s %s ok\n", msg.Type(), id)
	return nil
}

func optionalUUID(value string) (uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(value)
}

func parseUUIDList(value string) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func writeJSON(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
