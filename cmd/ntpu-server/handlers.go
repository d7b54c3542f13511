package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"ntpuassist-backend/lib/timezone"
	"ntpuassist-backend/services/lookup"
	"ntpuassist-backend/services/student"
)

func RegisterHandlers(mux *http.ServeMux, svc *lookup.Service) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		courseOK, studentOK := svc.HealthCheck(r.Context())
		status := http.StatusOK
		if !courseOK || !studentOK {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]bool{
			"course":  courseOK,
			"student": studentOK,
		})
	})

	mux.HandleFunc("GET /course", func(w http.ResponseWriter, r *http.Request) {
		uid := r.URL.Query().Get("uid")
		if uid == "" {
			http.Error(w, "missing uid", http.StatusBadRequest)
			return
		}
		c, ok := svc.LookupCourse(r.Context(), uid)
		if !ok {
			http.Error(w, "course not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, c)
	})

	mux.HandleFunc("GET /courses", func(w http.ResponseWriter, r *http.Request) {
		year, err := strconv.Atoi(r.URL.Query().Get("year"))
		if err != nil || !timezone.ValidCourseYear(year) {
			http.Error(w, "missing or invalid year", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, svc.LookupCoursesByYear(r.Context(), year))
	})

	mux.HandleFunc("GET /student", func(w http.ResponseWriter, r *http.Request) {
		if id := r.URL.Query().Get("id"); id != "" {
			name, ok := svc.LookupStudent(r.Context(), id)
			if !ok {
				http.Error(w, "student not found", http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, student.Student{ID: id, Name: name})
			return
		}
		if name := r.URL.Query().Get("name"); name != "" {
			writeJSON(w, http.StatusOK, svc.SearchStudentsByName(name))
			return
		}
		http.Error(w, "missing id or name", http.StatusBadRequest)
	})

	mux.HandleFunc("GET /roster", func(w http.ResponseWriter, r *http.Request) {
		year, err := strconv.Atoi(r.URL.Query().Get("year"))
		if err != nil || !timezone.ValidStudentYear(year) {
			http.Error(w, "missing or invalid year", http.StatusBadRequest)
			return
		}
		department := r.URL.Query().Get("department")
		if _, ok := student.DepartmentName[department]; !ok {
			// short names are accepted too
			if code, ok := student.DepartmentCode[department]; ok {
				department = code
			} else {
				http.Error(w, "unknown department", http.StatusBadRequest)
				return
			}
		}

		students := svc.LookupStudentsByYearAndDepartment(r.Context(), year, department)
		message, err := svc.FormatRoster(r.Context(), year, department, students)
		if err != nil {
			http.Error(w, "format roster", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"students": students,
			"message":  message,
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", "err", err)
	}
}
