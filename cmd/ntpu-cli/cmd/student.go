package cmd

import (
	"fmt"
	"log"
	"unicode"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(studentCmd)
}

var studentCmd = &cobra.Command{
	Use:   "student <id|name>",
	Short: "Looks up a student by id, or searches cached names.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := args[0]

		if isDigits(query) {
			name, ok := client.LookupStudent(cmd.Context(), query)
			if !ok {
				log.Fatalf("no student found for %q", query)
			}
			line, err := client.FormatStudent(cmd.Context(), query, name, 3)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Println(line)
			return
		}

		hits := client.SearchStudentsByName(query)
		t := newTable()
		t.AppendHeader(table.Row{"id", "name"})
		for _, hit := range hits {
			t.AppendRow(table.Row{hit.ID, hit.Name})
		}
		t.Render()
	},
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
