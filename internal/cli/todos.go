package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/dmitrijs2005/lifetrack/internal/state"
)

var errUsage = errors.New("usage")

// usage prints the expected form of a command and returns errUsage.
func (a *App) usage(form string) error {
	fmt.Fprintln(a.out, "Usage:", form)
	return errUsage
}

// invalid reports bad input through the notifier.
func (a *App) invalid(err error) error {
	a.notify.Error(err.Error())
	return err
}

// Todos lists todos, optionally switching the filter first.
func (a *App) Todos(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "all":
			a.todos.SetFilter(state.TodoFilterAll)
		case "pending":
			a.todos.SetFilter(state.TodoFilterPending)
		case "done", "completed":
			a.todos.SetFilter(state.TodoFilterCompleted)
		default:
			return a.usage("todos [all|pending|done]")
		}
	}

	renderTodos(a.out, a.todos.Filtered())
	n := a.todos.Counts()
	fmt.Fprintf(a.out, "%d total, %d pending, %d done\n", n.Total, n.Pending, n.Completed)
	return nil
}

func (a *App) AddTodo(ctx context.Context, _ []string) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	prio, err := getSimpleText(a.reader, "Priority 1-5 (optional, 1 is most urgent)", a.out)
	if err != nil {
		return err
	}
	due, err := getSimpleText(a.reader, "Due date YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Category (optional)", a.out)
	if err != nil {
		return err
	}
	tags, err := getSimpleText(a.reader, "Tags, comma separated (optional)", a.out)
	if err != nil {
		return err
	}

	req := models.CreateTodoRequest{
		Title:       title,
		Description: optional(desc),
		DueDate:     optional(due),
		Category:    optional(category),
		Tags:        parseTags(tags),
	}
	if req.Priority, err = parseOptionalInt(prio); err != nil {
		return a.invalid(err)
	}
	if err := req.Validate(); err != nil {
		return a.invalid(err)
	}

	_, err = a.todos.Create(ctx, a.session, req)
	return err
}

// EditTodo prompts for each field; empty answers keep the current value.
func (a *App) EditTodo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("edittodo <id>")
	}
	id := args[0]

	cur, ok := a.todos.FindByID(id)
	if !ok {
		return a.invalid(fmt.Errorf("todo %s not found", id))
	}
	fmt.Fprintf(a.out, "Editing %q, leave a field empty to keep it.\n", cur.Title)

	var err error
	answers := make([]string, 6)
	prompts := []string{
		"Title", "Description", "Priority 1-5", "Due date YYYY-MM-DD",
		"Category", "Tags, comma separated (\"-\" clears)",
	}
	for i, p := range prompts {
		if answers[i], err = getSimpleText(a.reader, p, a.out); err != nil {
			return err
		}
	}

	req := models.UpdateTodoRequest{
		Title:       optional(answers[0]),
		Description: optional(answers[1]),
		DueDate:     optional(answers[3]),
		Category:    optional(answers[4]),
	}
	if req.Priority, err = parseOptionalInt(answers[2]); err != nil {
		return a.invalid(err)
	}
	req.Tags = editTags(answers[5])

	if req.Empty() {
		a.notify.Warning("nothing to change")
		return nil
	}
	if err := req.Validate(); err != nil {
		return a.invalid(err)
	}
	return a.todos.Update(ctx, a.session, id, req)
}

func (a *App) Done(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("done <id>")
	}
	_, err := a.todos.ToggleCompletion(ctx, a.session, args[0])
	return err
}

func (a *App) DelTodo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("deltodo <id>")
	}
	return a.todos.Delete(ctx, a.session, args[0])
}
