package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aweisser/plog/internal/config"
	"github.com/aweisser/plog/internal/engine"
	"github.com/aweisser/plog/internal/plogapi"
	"github.com/aweisser/plog/internal/push"
	"github.com/aweisser/plog/internal/store"
	"github.com/aweisser/plog/internal/timelog"
	"github.com/aweisser/plog/internal/watch"
)

const usage = `Usage: plog <command> [flags]

Start, stop and push your daily work logs.

Commands:
  start    Start a new work timer (no-op if one is already running)
  stop     Stop the running work timer
  status   Show the last timer; -a for all timers and the total, -w for a live view
  push     Submit hours to the timekeeping API (-m <description> [-t <hours>])
  reset    Clear all timer state
  token    Fetch a personal API token and copy it to the clipboard (admin)
`

const timeStamp = "2006-01-02 15:04:05"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if store.IsCorrupt(err) {
			fmt.Fprintln(os.Stderr, "Run 'plog reset' to clear the broken state.")
		}
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch command {
	case "start":
		return withEngine(cfg, cmdStart)
	case "stop":
		return withEngine(cfg, cmdStop)
	case "status":
		return cmdStatus(cfg, args)
	case "push":
		return cmdPush(cfg, args)
	case "reset":
		return withEngine(cfg, cmdReset)
	case "token":
		return cmdToken(cfg, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func withEngine(cfg *config.Config, fn func(*engine.Engine) error) error {
	st, err := store.Open(cfg.State.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(engine.New(st))
}

func cmdStart(eng *engine.Engine) error {
	started, err := eng.Start()
	if err != nil {
		return err
	}
	if started {
		fmt.Println("New timer started.")
	} else {
		fmt.Println("Timer is already running.")
	}
	return nil
}

func cmdStop(eng *engine.Engine) error {
	stopped, err := eng.Stop()
	if err != nil {
		return err
	}
	if stopped {
		fmt.Println("Timer stopped.")
	} else {
		fmt.Println("No timer is currently running.")
	}
	return nil
}

func cmdReset(eng *engine.Engine) error {
	if err := eng.Reset(); err != nil {
		return err
	}
	fmt.Println("Timer has been reset.")
	return nil
}

func cmdStatus(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	var all, live bool
	fs.BoolVar(&all, "a", false, "show every timer and the total")
	fs.BoolVar(&all, "all", false, "show every timer and the total")
	fs.BoolVar(&live, "w", false, "live view, refreshed every second")
	fs.BoolVar(&live, "watch", false, "live view, refreshed every second")
	fs.Parse(args)

	return withEngine(cfg, func(eng *engine.Engine) error {
		if live {
			return runWatch(eng)
		}
		report, err := eng.Status(all)
		if err != nil {
			return err
		}
		renderStatus(report, all)
		return nil
	})
}

func renderStatus(report engine.Report, all bool) {
	if len(report.Entries) == 0 {
		fmt.Println("No timer started.")
		return
	}

	if all {
		for i, e := range report.Entries {
			fmt.Printf("Timer %d: Start: %s, End: %s, Duration: %s\n",
				i+1,
				e.Record.StartedAt.Format(timeStamp),
				endLabel(e),
				timelog.FormatDuration(e.Duration))
		}
		fmt.Printf("\nTotal time worked: %s.\n", timelog.FormatDuration(report.Total))
		return
	}

	e := report.Entries[0]
	fmt.Printf("Last timer: Start: %s, End: %s, Duration: %s\n",
		e.Record.StartedAt.Format(timeStamp),
		endLabel(e),
		timelog.FormatDuration(e.Duration))
}

func endLabel(e engine.Entry) string {
	if e.Running {
		return "Currently Running"
	}
	return e.Record.StoppedAt.Format(timeStamp)
}

func runWatch(eng *engine.Engine) error {
	p := tea.NewProgram(watch.NewModel(eng), tea.WithAltScreen())

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			p.Send(watch.MsgTick{})
		}
	}()

	_, err := p.Run()
	return err
}

func cmdPush(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("push", flag.ExitOnError)
	var message string
	var hours float64
	fs.StringVar(&message, "m", "", "description of the work performed")
	fs.StringVar(&message, "message", "", "description of the work performed")
	fs.Float64Var(&hours, "t", 0, "manual hours to push instead of the timer duration")
	fs.Float64Var(&hours, "time", 0, "manual hours to push instead of the timer duration")
	fs.Parse(args)

	var manual *float64
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" || f.Name == "time" {
			manual = &hours
		}
	})

	if cfg.API.BaseURL == "" || cfg.API.Token == "" {
		return errors.New("PLOG_API_URL and PLOG_API_TOKEN must be set to push")
	}

	st, err := store.Open(cfg.State.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	client := plogapi.NewClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.FunctionKey)
	svc := push.NewService(st, client)

	req, err := svc.Push(context.Background(), message, manual)
	if err != nil {
		return err
	}
	fmt.Printf("Pushed %.2f hours for %s.\n", req.DurationHours, req.Date)
	return nil
}

func cmdToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	var email string
	fs.StringVar(&email, "e", "", "email of the user to fetch a token for")
	fs.StringVar(&email, "email", "", "email of the user to fetch a token for")
	fs.Parse(args)

	if cfg.API.BaseURL == "" {
		return errors.New("PLOG_API_URL must be set to fetch tokens")
	}
	if cfg.API.FunctionKey == "" {
		return errors.New("PLOG_TOKEN_FUNCTION_KEY must be set to fetch tokens")
	}

	client := plogapi.NewClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.FunctionKey)
	token, err := client.Token(context.Background(), email)
	if err != nil {
		return err
	}
	if err := clipboard.WriteAll(token); err != nil {
		return fmt.Errorf("copying token to clipboard: %w", err)
	}
	fmt.Println("The token has been copied to the clipboard.")
	return nil
}
