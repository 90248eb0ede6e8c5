package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/dmitrijs2005/lifetrack/internal/state"
)

// Ideas lists ideas. "fav" limits to favorites; remaining words are a
// local keyword filter.
func (a *App) Ideas(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "all":
			a.ideas.SetFilter(state.IdeaFilterAll)
			args = args[1:]
		case "fav", "favorites":
			a.ideas.SetFilter(state.IdeaFilterFavorites)
			args = args[1:]
		}
	}
	a.ideas.SetKeyword(strings.Join(args, " "))

	renderIdeas(a.out, a.ideas.Filtered())
	n := a.ideas.Counts()
	fmt.Fprintf(a.out, "%d total, %d favorites\n", n.Total, n.Favorites)
	return nil
}

func (a *App) AddIdea(ctx context.Context, _ []string) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}
	tags, err := getSimpleText(a.reader, "Tags, comma separated (optional)", a.out)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Category (optional)", a.out)
	if err != nil {
		return err
	}
	fav, err := getSimpleText(a.reader, "Favorite? y/n (optional)", a.out)
	if err != nil {
		return err
	}

	req := models.CreateIdeaRequest{
		Title:    title,
		Content:  content,
		Tags:     parseTags(tags),
		Category: optional(category),
	}
	if req.IsFavorite, err = parseYesNo(fav); err != nil {
		return a.invalid(err)
	}
	if err := req.Validate(); err != nil {
		return a.invalid(err)
	}

	_, err = a.ideas.Create(ctx, a.session, req)
	return err
}

// EditIdea prompts for each field; empty answers keep the current value.
func (a *App) EditIdea(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("editidea <id>")
	}
	id := args[0]

	cur, ok := a.ideas.FindByID(id)
	if !ok {
		return a.invalid(fmt.Errorf("idea %s not found", id))
	}
	fmt.Fprintf(a.out, "Editing %q, leave a field empty to keep it.\n", cur.Title)

	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}
	tags, err := getSimpleText(a.reader, "Tags, comma separated (\"-\" clears)", a.out)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Category", a.out)
	if err != nil {
		return err
	}

	req := models.UpdateIdeaRequest{
		Title:    optional(title),
		Content:  optional(content),
		Tags:     editTags(tags),
		Category: optional(category),
	}
	if req.Empty() {
		a.notify.Warning("nothing to change")
		return nil
	}
	if err := req.Validate(); err != nil {
		return a.invalid(err)
	}
	return a.ideas.Update(ctx, a.session, id, req)
}

func (a *App) Fav(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("fav <id>")
	}
	_, err := a.ideas.ToggleFavorite(ctx, a.session, args[0])
	return err
}

func (a *App) DelIdea(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("delidea <id>")
	}
	return a.ideas.Delete(ctx, a.session, args[0])
}

// Search asks the store rather than filtering the loaded ideas.
func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("search <keyword>")
	}
	items, err := a.ideas.Search(ctx, a.session, strings.Join(args, " "))
	if err != nil {
		return err
	}
	renderIdeas(a.out, items)
	return nil
}
