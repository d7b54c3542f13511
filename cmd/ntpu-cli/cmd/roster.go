package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"

	"ntpuassist-backend/lib/timezone"
	"ntpuassist-backend/services/student"
)

func init() {
	rootCmd.AddCommand(rosterCmd)
}

var rosterCmd = &cobra.Command{
	Use:   "roster <year> <department>",
	Short: "Prints the roster of one department and enrollment year. The department may be a code (85) or a short name (資工).",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		year, err := strconv.Atoi(args[0])
		if err != nil || !timezone.ValidStudentYear(year) {
			log.Fatalf("invalid year %q", args[0])
		}

		department := args[1]
		if _, ok := student.DepartmentName[department]; !ok {
			code, ok := student.DepartmentCode[department]
			if !ok {
				log.Fatalf("unknown department %q", args[1])
			}
			department = code
		}

		students := client.LookupStudentsByYearAndDepartment(cmd.Context(), year, department)
		message, err := client.FormatRoster(cmd.Context(), year, department, students)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(message)
	},
}
