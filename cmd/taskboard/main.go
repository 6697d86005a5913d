package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/internal/client"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

var (
	app = kingpin.New("taskboard", "Command line client for the task board")

	serverURL = app.Flag("server", "Server URL (default TASKBOARD_SERVER_URL)").String()
	noColor   = app.Flag("no-color", "Disable colored output").Bool()
	retries   = app.Flag("retries", "Attempts for calls failing with a store failure").Default("3").Int()

	boardCmd = app.Command("board", "Show every column of the board").Default()

	listCmd    = app.Command("list", "List tasks")
	listStatus = listCmd.Flag("status", "Only tasks in this status").String()

	createCmd         = app.Command("create", "Create a new task")
	createTitle       = createCmd.Arg("title", "Task title").Required().String()
	createDescription = createCmd.Flag("description", "Task description").String()
	createAssign      = createCmd.Flag("assign", "Assignee user ID").String()
	createStatus      = createCmd.Flag("status", "Initial status").String()

	updateCmd = app.Command("update", "Change fields of a task")
	updateID  = updateCmd.Arg("id", "Task ID").Required().String()

	updateTitle       = optionalFlag(updateCmd.Flag("title", "New title"))
	updateDescription = optionalFlag(updateCmd.Flag("description", "New description, empty to clear"))
	updateAssign      = optionalFlag(updateCmd.Flag("assign", "New assignee user ID, empty to clear"))
	updateStatus      = optionalFlag(updateCmd.Flag("status", "New status"))

	moveCmd    = app.Command("move", "Move a task to another column")
	moveID     = moveCmd.Arg("id", "Task ID").Required().String()
	moveStatus = moveCmd.Arg("status", "Target status").Required().String()

	deleteCmd = app.Command("delete", "Delete a task")
	deleteID  = deleteCmd.Arg("id", "Task ID").Required().String()

	usersCmd = app.Command("users", "List users")

	addUserCmd  = app.Command("add-user", "Register a user tasks can be assigned to")
	addUserName = addUserCmd.Arg("name", "User name").Required().String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadClientEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *serverURL == "" {
		*serverURL = env.ServerURL
	}
	if *noColor || env.NoColor {
		color.NoColor = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.NewClient(*serverURL, client.WithToken(env.Token))
	r := &runner{
		client: c,
		board:  board.New(c, board.WithRetry(*retries, 200*time.Millisecond)),
		out:    os.Stdout,
	}
	if err := r.run(ctx, command); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Error:"), describe(err))
		os.Exit(1)
	}
}

type runner struct {
	client *client.Client
	board  *board.Board
	out    io.Writer
}

func (r *runner) run(ctx context.Context, command string) error {
	switch command {
	case boardCmd.FullCommand():
		if err := r.board.Load(ctx); err != nil {
			return err
		}
		renderColumns(r.out, r.board.Columns())

	case listCmd.FullCommand():
		status, err := parseStatusArg(*listStatus)
		if err != nil {
			return err
		}
		if err := r.board.Load(ctx); err != nil {
			return err
		}
		for _, e := range r.board.Project(status) {
			renderEntry(r.out, e)
		}

	case createCmd.FullCommand():
		status, err := parseStatusArg(*createStatus)
		if err != nil {
			return err
		}
		t, err := r.board.Create(ctx, &task.CreateTaskRequest{
			Title:       *createTitle,
			Description: *createDescription,
			AssignedTo:  *createAssign,
			Status:      status,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Created %s\n", t.ID)
		renderTask(r.out, t, false)

	case updateCmd.FullCommand():
		req := &task.UpdateTaskRequest{
			Title:       updateTitle.ptr(),
			Description: updateDescription.ptr(),
			AssignedTo:  updateAssign.ptr(),
		}
		if s := updateStatus.ptr(); s != nil {
			status, err := parseStatusArg(*s)
			if err != nil {
				return err
			}
			if status == "" {
				return cerr.NewReasonError(cerr.InvalidArgument, cerr.ReasonValidation, "status must not be empty", nil)
			}
			req.Status = &status
		}
		if err := r.board.Load(ctx); err != nil {
			return err
		}
		t, err := r.board.Update(ctx, *updateID, req)
		if err != nil {
			return err
		}
		renderTask(r.out, t, false)

	case moveCmd.FullCommand():
		status, err := parseStatusArg(*moveStatus)
		if err != nil {
			return err
		}
		if err := r.board.Load(ctx); err != nil {
			return err
		}
		t, err := r.board.Transition(ctx, *moveID, status)
		if err != nil {
			return err
		}
		renderTask(r.out, t, false)

	case deleteCmd.FullCommand():
		if err := r.board.Load(ctx); err != nil {
			return err
		}
		if _, err := r.board.Delete(ctx, *deleteID); err != nil {
			return fmt.Errorf("task %s may not have been deleted: %w", *deleteID, err)
		}
		fmt.Fprintf(r.out, "Deleted %s\n", *deleteID)

	case usersCmd.FullCommand():
		users, err := r.client.ListUsers(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Fprintf(r.out, "%s  %s\n", color.New(color.Faint).Sprint(u.ID), u.Name)
		}

	case addUserCmd.FullCommand():
		u, err := r.client.CreateUser(ctx, *addUserName)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Created user %s (%s)\n", u.Name, u.ID)
	}
	return nil
}

// optionalString is a flag value that remembers whether it was given, so an
// explicit empty value can clear a field.
type optionalString struct {
	value string
	set   bool
}

func optionalFlag(f *kingpin.FlagClause) *optionalString {
	v := &optionalString{}
	f.SetValue(v)
	return v
}

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

var statusAliases = map[string]task.Status{
	"todo":        task.StatusToDo,
	"to-do":       task.StatusToDo,
	"in-progress": task.StatusInProgress,
	"inprogress":  task.StatusInProgress,
	"doing":       task.StatusInProgress,
	"done":        task.StatusDone,
}

// parseStatusArg accepts the wire values and a few shell-friendly aliases.
// An empty argument yields an empty status.
func parseStatusArg(s string) (task.Status, error) {
	if s == "" {
		return "", nil
	}
	if st, ok := statusAliases[strings.ToLower(s)]; ok {
		return st, nil
	}
	return task.ParseStatus(s)
}

// describe picks the message shown for each kind of failure.
func describe(err error) string {
	switch task.KindOf(err) {
	case task.KindNotFound:
		return "task not found: " + err.Error()
	case task.KindInvalidStatus:
		return "invalid status: " + err.Error()
	case task.KindInvalidReference:
		return "unknown assignee: " + err.Error()
	case task.KindValidation:
		return "invalid input: " + err.Error()
	case task.KindUnauthenticated:
		return "not authenticated, set TASKBOARD_TOKEN: " + err.Error()
	case task.KindStoreFailure:
		return "server unavailable, try again later: " + err.Error()
	default:
		if cerr.ReasonOf(err) == cerr.ReasonOutcomeUnknown {
			return "the server may have applied the change, run board to check: " + err.Error()
		}
		return err.Error()
	}
}
