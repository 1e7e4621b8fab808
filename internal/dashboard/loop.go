package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"cryptoanalyzer/internal/valuation"
)

// DefaultRefreshInterval matches the cache freshness window.
const DefaultRefreshInterval = 300 * time.Second

// ErrUnknownCommand is returned for a command line the loop cannot parse.
var ErrUnknownCommand = fmt.Errorf("%w: unknown command", valuation.ErrInvalidInput)

// Renderer is the display surface.
type Renderer interface {
	Snapshot(Snapshot)
	Detail(Detail)
	Message(string)
	Error(error)
}

// Command is a parsed user line.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a line into a command name and its arguments.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrUnknownCommand)
	}
	cmd := Command{Name: strings.ToLower(fields[0]), Args: fields[1:]}
	if cmd.Name == "rm" {
		cmd.Name = "remove"
	}
	if cmd.Name == "exit" {
		cmd.Name = "quit"
	}
	want, ok := arity[cmd.Name]
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, fields[0])
	}
	if len(cmd.Args) < want[0] || len(cmd.Args) > want[1] {
		return Command{}, fmt.Errorf("%w: usage: %s", valuation.ErrInvalidInput, usage[cmd.Name])
	}
	return cmd, nil
}

// arity is the [min, max] argument count per command.
var arity = map[string][2]int{
	"add":        {1, 1},
	"remove":     {1, 1},
	"refresh":    {0, 0},
	"detail":     {1, 1},
	"value":      {2, 2},
	"export":     {0, 1},
	"invalidate": {1, 1},
	"help":       {0, 0},
	"quit":       {0, 0},
}

var usage = map[string]string{
	"add":        "add SYM",
	"remove":     "remove SYM",
	"refresh":    "refresh",
	"detail":     "detail SYM",
	"value":      "value SYM QTY",
	"export":     "export [path]",
	"invalidate": "invalidate SYM",
	"help":       "help",
	"quit":       "quit",
}

// Help lists the commands in display order.
func Help() string {
	order := []string{"add", "remove", "refresh", "detail", "value", "export", "invalidate", "help", "quit"}
	lines := make([]string, 0, len(order))
	for _, name := range order {
		lines = append(lines, "  "+usage[name])
	}
	return "commands:\n" + strings.Join(lines, "\n")
}

var errQuit = errors.New("quit")

// Loop drives the service from a single goroutine: periodic refreshes and
// user commands never overlap.
type Loop struct {
	svc      *Service
	render   Renderer
	interval time.Duration
	log      *zap.Logger
}

func NewLoop(svc *Service, render Renderer, interval time.Duration, log *zap.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{svc: svc, render: render, interval: interval, log: log}
}

// Run renders an initial snapshot and then serves ticks and commands until
// ctx is done, commands is closed, or a quit command arrives.
func (l *Loop) Run(ctx context.Context, commands <-chan string) error {
	l.refresh(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.log.Debug("periodic refresh")
			l.refresh(ctx)
		case line, ok := <-commands:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			err := l.Execute(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				l.render.Error(err)
			}
			// a manual refresh restarts the countdown
			if isRefresh(line) {
				ticker.Reset(l.interval)
			}
		}
	}
}

func isRefresh(line string) bool {
	cmd, err := ParseCommand(line)
	return err == nil && cmd.Name == "refresh"
}

func (l *Loop) refresh(ctx context.Context) {
	snap := l.svc.Refresh(ctx)
	l.render.Snapshot(l.svc.schedule(snap.RefreshedAt.Add(l.interval)))
}

// Execute runs one command line against the service.
func (l *Loop) Execute(ctx context.Context, line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		return err
	}
	l.log.Debug("command", zap.String("name", cmd.Name), zap.Strings("args", cmd.Args))

	switch cmd.Name {
	case "add":
		added, err := l.svc.AddSymbol(cmd.Args[0])
		if err != nil {
			return err
		}
		if !added {
			l.render.Message(strings.ToUpper(cmd.Args[0]) + " is already in the watchlist")
			return nil
		}
		l.refresh(ctx)
	case "remove":
		if !l.svc.RemoveSymbol(cmd.Args[0]) {
			l.render.Message(strings.ToUpper(cmd.Args[0]) + " is not in the watchlist")
			return nil
		}
		l.refresh(ctx)
	case "refresh":
		l.refresh(ctx)
	case "detail":
		d, err := l.svc.Detail(ctx, cmd.Args[0])
		if err != nil {
			return err
		}
		l.render.Detail(d)
	case "value":
		v, err := l.svc.Value(ctx, cmd.Args[0], cmd.Args[1])
		if err != nil {
			return err
		}
		l.render.Message(fmt.Sprintf("%s %s = %s", cmd.Args[1], strings.ToUpper(cmd.Args[0]), v))
	case "export":
		path := ""
		if len(cmd.Args) == 1 {
			path = cmd.Args[0]
		}
		written, err := l.svc.Export(ctx, path)
		if err != nil {
			return err
		}
		l.render.Message("exported to " + written)
	case "invalidate":
		if err := l.svc.Invalidate(cmd.Args[0]); err != nil {
			return err
		}
		l.render.Message(strings.ToUpper(cmd.Args[0]) + " will be refetched on next refresh")
	case "help":
		l.render.Message(Help())
	case "quit":
		return errQuit
	}
	return nil
}
