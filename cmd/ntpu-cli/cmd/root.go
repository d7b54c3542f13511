package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ntpuassist-backend/lib/endpoint"
	"ntpuassist-backend/lib/telemetry"
	"ntpuassist-backend/services/course"
	"ntpuassist-backend/services/lookup"
	"ntpuassist-backend/services/student"
)

var courseEndpoints []string
var studentEndpoints []string

var client *lookup.Service

var rootCmd = &cobra.Command{
	Use:   "ntpu-cli",
	Short: "ntpu-cli queries the school's course and portfolio portals directly.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(false)

		courseService := course.NewService(course.ServiceOptions{
			Resolver: endpoint.NewResolver(endpoint.ResolverOptions{
				Candidates:   courseEndpoints,
				TracerName:   "ntpuassist.portal.course",
				ProbeTimeout: time.Second * 10,
			}),
		})
		studentService := student.NewService(student.ServiceOptions{
			Resolver: endpoint.NewResolver(endpoint.ResolverOptions{
				Candidates:   studentEndpoints,
				TracerName:   "ntpuassist.portal.student",
				ProbeTimeout: time.Second * 10,
			}),
		})
		client = lookup.NewService(lookup.ServiceOptions{
			Course:  courseService,
			Student: studentService,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(
		&courseEndpoints, "course-endpoint",
		[]string{
			"http://120.126.197.52",
			"https://120.126.197.52",
			"https://sea.cc.ntpu.edu.tw",
		},
		"Course portal base URLs, probed in order.",
	)
	rootCmd.PersistentFlags().StringSliceVar(
		&studentEndpoints, "student-endpoint",
		[]string{
			"http://120.126.197.7",
			"https://120.126.197.7",
			"https://lms.ntpu.edu.tw",
		},
		"Portfolio portal base URLs, probed in order.",
	)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
