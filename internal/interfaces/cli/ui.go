package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// UI is the interactive terminal frontend. It owns no business rules: every
// decision is delegated to the services, and the UI only renders their state.
type UI struct {
	in       *bufio.Scanner
	out      io.Writer
	workflow *usecase.WorkflowService
	board    *usecase.LeaderboardService
	history  *usecase.HistoryService
	auth     *usecase.AuthService
	profile  *usecase.ProfileService
	admin    *usecase.AdminService
	logger   *logging.Logger
}

type Config struct {
	Input       io.Reader
	Output      io.Writer
	Workflow    *usecase.WorkflowService
	Leaderboard *usecase.LeaderboardService
	History     *usecase.HistoryService
	Auth        *usecase.AuthService
	Profile     *usecase.ProfileService
	Admin       *usecase.AdminService
	Logger      *logging.Logger
}

func New(cfg Config) (*UI, error) {
	if cfg.Workflow == nil || cfg.Leaderboard == nil || cfg.History == nil ||
		cfg.Auth == nil || cfg.Profile == nil || cfg.Admin == nil {
		return nil, fmt.Errorf("all services are required")
	}
	if cfg.Input == nil || cfg.Output == nil {
		return nil, fmt.Errorf("input and output streams are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &UI{
		in:       bufio.NewScanner(cfg.Input),
		out:      cfg.Output,
		workflow: cfg.Workflow,
		board:    cfg.Leaderboard,
		history:  cfg.History,
		auth:     cfg.Auth,
		profile:  cfg.Profile,
		admin:    cfg.Admin,
		logger:   logger,
	}, nil
}

// Run drives the main menu until the user quits or the context is canceled.
func (u *UI) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		u.printHeader()
		choice, ok := u.prompt("> ")
		if !ok {
			return nil
		}

		var err error
		switch strings.ToLower(strings.TrimSpace(choice)) {
		case "1":
			err = u.guarded(ctx, u.predictionsPage)
		case "2":
			err = u.leaderboardPage(ctx)
		case "3":
			err = u.guarded(ctx, u.historyPage)
		case "4":
			err = u.guarded(ctx, u.profilePage)
		case "5":
			err = u.guarded(ctx, u.adminPage)
		case "l":
			err = u.loginPage(ctx)
		case "r":
			err = u.registerPage(ctx)
		case "o":
			err = u.logoutAction(ctx)
		case "q", "quit", "exit":
			return nil
		case "":
			continue
		default:
			u.printf("Unknown choice %q.\n", choice)
			continue
		}

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			u.printf("Error: %s\n", userFacingMessage(err))
		}
	}
}

// guarded runs an authenticated page, or explains how to log in.
func (u *UI) guarded(ctx context.Context, page func(context.Context) error) error {
	if err := u.auth.RequireAuth(); err != nil {
		u.printf("This page needs a login. Choose 'l' to log in first.\n")
		return nil
	}
	return page(ctx)
}

func (u *UI) printHeader() {
	u.printf("\n=== Prediction League ===\n")
	if sess, ok := u.auth.CurrentSession(); ok {
		u.printf("Logged in as %s\n", sess.Profile.DisplayName())
	} else {
		u.printf("Not logged in\n")
	}
	u.printf("1) Predictions  2) Leaderboard  3) History  4) Profile  5) Admin\n")
	u.printf("l) Log in  r) Register  o) Log out  q) Quit\n")
}

func (u *UI) prompt(label string) (string, bool) {
	u.printf("%s", label)
	if !u.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(u.in.Text()), true
}

func (u *UI) promptInt64(label string) (int64, bool) {
	for {
		raw, ok := u.prompt(label)
		if !ok {
			return 0, false
		}
		if raw == "" {
			return 0, true
		}
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			u.printf("Please enter a number.\n")
			continue
		}
		return value, true
	}
}

func (u *UI) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}

func userFacingMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return "your session has expired, please log in again"
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return "the prediction service is temporarily unavailable, try again shortly"
	default:
		return err.Error()
	}
}
