package cli

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/models"
)

// readFile is a seam for tests.
var readFile = os.ReadFile

// Achievements lists achievements. "recent" shows the last 30 days and
// "month" groups by month; otherwise the tag and date filters apply.
func (a *App) Achievements(ctx context.Context, args []string) error {
	mode := ""
	if len(args) > 0 {
		mode = args[0]
	}

	switch mode {
	case "":
		renderAchievements(a.out, a.achievements.Filtered())
	case "recent":
		renderAchievements(a.out, a.achievements.Recent(a.now()))
	case "month":
		groups := a.achievements.ByMonth()
		months := make([]string, 0, len(groups))
		for m := range groups {
			months = append(months, m)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(months)))
		for _, m := range months {
			fmt.Fprintf(a.out, "== %s ==\n", m)
			renderAchievements(a.out, groups[m])
		}
	case "range":
		if len(args) != 3 {
			return a.usage("achievements range <from> <to>")
		}
		if err := a.achievements.SetDateRange(args[1], args[2]); err != nil {
			return a.invalid(err)
		}
		renderAchievements(a.out, a.achievements.Filtered())
	default:
		return a.usage("achievements [recent|month|range <from> <to>]")
	}
	return nil
}

// loadImages reads image files from disk.
func loadImages(paths []string) ([]models.ImageFile, error) {
	out := make([]models.ImageFile, 0, len(paths))
	for _, p := range paths {
		data, err := readFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
		if ct == "" {
			ct = http.DetectContentType(data)
		}
		out = append(out, models.ImageFile{Name: filepath.Base(p), ContentType: ct, Data: data})
	}
	return out, nil
}

func (a *App) AddAch(ctx context.Context, _ []string) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}
	date, err := getSimpleText(a.reader, "Date YYYY-MM-DD (empty for today)", a.out)
	if err != nil {
		return err
	}
	tags, err := getSimpleText(a.reader, "Tags, comma separated (optional)", a.out)
	if err != nil {
		return err
	}
	paths, err := getSimpleText(a.reader, "Image files, comma separated (optional)", a.out)
	if err != nil {
		return err
	}

	if date == "" {
		date = a.now().Format(common.DateLayout)
	}
	req := models.CreateAchievementRequest{
		Title:   title,
		Content: content,
		Date:    date,
		Tags:    parseTags(tags),
	}
	if req.Images, err = loadImages(parseTags(paths)); err != nil {
		return a.invalid(err)
	}
	if err := req.Validate(); err != nil {
		return a.invalid(err)
	}

	_, err = a.achievements.Create(ctx, a.session, req)
	return err
}

// EditAch changes fields, appends image files and drops images by index.
// Empty answers keep the current value.
func (a *App) EditAch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("editach <id>")
	}
	id := args[0]

	cur, ok := a.achievements.FindByID(id)
	if !ok {
		return a.invalid(fmt.Errorf("achievement %s not found", id))
	}
	fmt.Fprintf(a.out, "Editing %q (%d images), leave a field empty to keep it.\n", cur.Title, len(cur.Images))

	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}
	var answers [4]string
	prompts := []string{
		"Date YYYY-MM-DD",
		"Tags, comma separated (\"-\" clears)",
		"Image files to add, comma separated",
		"Image indexes to remove, comma separated",
	}
	for i, p := range prompts {
		if answers[i], err = getSimpleText(a.reader, p, a.out); err != nil {
			return err
		}
	}

	req := models.UpdateAchievementRequest{
		Title:   optional(title),
		Content: optional(content),
		Date:    optional(answers[0]),
		Tags:    editTags(answers[1]),
	}
	if req.NewImages, err = loadImages(parseTags(answers[2])); err != nil {
		return a.invalid(err)
	}
	if len(req.NewImages) == 0 {
		req.NewImages = nil
	}
	if req.RemoveImages, err = parseIndexes(answers[3]); err != nil {
		return a.invalid(err)
	}
	if req.Empty() {
		a.notify.Warning("nothing to change")
		return nil
	}
	if err := req.Validate(); err != nil {
		return a.invalid(err)
	}
	return a.achievements.Update(ctx, a.session, id, req)
}

func (a *App) DelAch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("delach <id>")
	}
	return a.achievements.Delete(ctx, a.session, args[0])
}

// DelImg removes one image by zero-based index.
func (a *App) DelImg(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.usage("delimg <id> <index>")
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return a.invalid(fmt.Errorf("%w: %q", common.ErrInvalidIndex, args[1]))
	}
	return a.achievements.DeleteImage(ctx, a.session, args[0], idx)
}

// Tags without arguments lists known tags. With tags it filters
// achievements by any of them; "clear" resets the achievement filters.
func (a *App) Tags(ctx context.Context, args []string) error {
	switch {
	case len(args) == 0:
		fmt.Fprintln(a.out, "ideas:       ", strings.Join(a.ideas.AllTags(), ", "))
		fmt.Fprintln(a.out, "achievements:", strings.Join(a.achievements.AllTags(), ", "))
		return nil
	case len(args) == 1 && args[0] == "clear":
		a.achievements.ClearFilters()
		fmt.Fprintln(a.out, "Filters cleared.")
		return nil
	}

	a.achievements.SetTags(args)
	renderAchievements(a.out, a.achievements.Filtered())
	return nil
}
