package main

import (
	"flag"
	"net/http"
	"time"

	"ntpuassist-backend/lib/configutil"
	"ntpuassist-backend/lib/endpoint"
	"ntpuassist-backend/lib/serviceutil"
	"ntpuassist-backend/services/course"
	"ntpuassist-backend/services/lookup"
	"ntpuassist-backend/services/student"
)

type PortalConfig struct {
	Endpoints []string `json:"endpoints"`
}

type Config struct {
	Port    int          `json:"port"`
	Course  PortalConfig `json:"course"`
	Student PortalConfig `json:"student"`
}

// The portals sit behind raw school IPs plus a DNS name. The IPs come
// first: the names resolve through the campus DNS, which drops out
// more often than the hosts themselves.
var defaultCourseEndpoints = []string{
	"http://120.126.197.52",
	"https://120.126.197.52",
	"https://sea.cc.ntpu.edu.tw",
}

var defaultStudentEndpoints = []string{
	"http://120.126.197.7",
	"https://120.126.197.7",
	"https://lms.ntpu.edu.tw",
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	renew := flag.Bool("renew", true, "Warm the student cache in the background on startup.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if len(cfg.Course.Endpoints) == 0 {
		cfg.Course.Endpoints = defaultCourseEndpoints
	}
	if len(cfg.Student.Endpoints) == 0 {
		cfg.Student.Endpoints = defaultStudentEndpoints
	}

	courseService := course.NewService(course.ServiceOptions{
		Resolver: endpoint.NewResolver(endpoint.ResolverOptions{
			Candidates:   cfg.Course.Endpoints,
			TracerName:   "ntpuassist.portal.course",
			ProbeTimeout: time.Second * 10,
		}),
	})
	studentService := student.NewService(student.ServiceOptions{
		Resolver: endpoint.NewResolver(endpoint.ResolverOptions{
			Candidates:   cfg.Student.Endpoints,
			TracerName:   "ntpuassist.portal.student",
			ProbeTimeout: time.Second * 10,
		}),
	})
	lookupService := lookup.NewService(lookup.ServiceOptions{
		Course:  courseService,
		Student: studentService,
	})

	if *renew {
		studentService.StartRenewal(ctx)
	}

	mux := http.NewServeMux()
	RegisterHandlers(mux, lookupService)

	go serviceutil.StartHttpServer(cfg.Port, mux)
	<-ctx.Done()
}
