package cmd

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ntpuassist-backend/lib/timezone"
)

func init() {
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(coursesCmd)
}

var courseCmd = &cobra.Command{
	Use:   "course <uid>",
	Short: "Looks up one course by its uid, e.g. 1121U0001.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, ok := client.LookupCourse(cmd.Context(), args[0])
		if !ok {
			log.Fatalf("no course found for %q", args[0])
		}

		t := newTable()
		t.AppendRows([]table.Row{
			{"uid", c.UID},
			{"title", c.Title},
			{"year", c.Year},
			{"term", c.Term},
			{"teachers", strings.Join(c.Teachers, ", ")},
			{"times", strings.Join(c.Times, ", ")},
			{"locations", strings.Join(c.Locations, ", ")},
			{"note", c.Note},
			{"detail url", c.DetailURL},
		})
		t.Render()
	},
}

var coursesCmd = &cobra.Command{
	Use:   "courses <year>",
	Short: "Lists every course offered in one ROC school year.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		year, err := strconv.Atoi(args[0])
		if err != nil || !timezone.ValidCourseYear(year) {
			log.Fatalf("invalid year %q", args[0])
		}

		courses := client.LookupCoursesByYear(cmd.Context(), year)
		uids := make([]string, 0, len(courses))
		for uid := range courses {
			uids = append(uids, uid)
		}
		sort.Strings(uids)

		t := newTable()
		t.AppendHeader(table.Row{"uid", "term", "title", "teachers", "times"})
		for _, uid := range uids {
			c := courses[uid]
			t.AppendRow(table.Row{
				c.UID, c.Term, c.Title,
				strings.Join(c.Teachers, ", "),
				strings.Join(c.Times, ", "),
			})
		}
		t.Render()
		fmt.Printf("%d courses\n", len(courses))
	},
}
