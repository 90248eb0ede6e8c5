package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/lifetrack/internal/models"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func mark(v bool, on string) string {
	if v {
		return on
	}
	return " "
}

func renderTodos(w io.Writer, items []models.Todo) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No todos.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\t\tPRIORITY\tTITLE\tDUE\tCATEGORY\tTAGS")
	for _, t := range items {
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, mark(t.Completed, "x"), models.PriorityLabel(t.Priority), t.Title,
			deref(t.DueDate), t.Category, strings.Join(t.Tags, ","))
	}
	_ = tw.Flush()
}

func renderIdeas(w io.Writer, items []models.Idea) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No ideas.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\t\tTITLE\tCATEGORY\tTAGS")
	for _, i := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			i.ID, mark(i.IsFavorite, "*"), i.Title, i.Category, strings.Join(i.Tags, ","))
	}
	_ = tw.Flush()
}

func renderAchievements(w io.Writer, items []models.Achievement) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No achievements.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tDATE\tTITLE\tIMAGES\tTAGS")
	for _, a := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			a.ID, a.Date, a.Title, len(a.Images), strings.Join(a.Tags, ","))
	}
	_ = tw.Flush()
}
