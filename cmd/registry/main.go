// Command registry is the process entry point for the student records
// core: it wires configuration, logging, the SQLite store, repositories
// and services, and exposes the core operations as subcommands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eduregistry/internal/models"
	"eduregistry/internal/repository"
	"eduregistry/internal/service"
	"eduregistry/internal/store"
	"eduregistry/pkg/config"
	"eduregistry/pkg/logger"
	"eduregistry/pkg/storage"
)

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	records *service.RecordsService
	reports *service.ReportService
}

// withApp opens the full dependency graph, runs fn and tears it down.
func withApp(fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := store.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	if cfg.Seed.Enabled {
		if err := db.Seed(ctx); err != nil {
			return err
		}
	}

	students := repository.NewStudentRepository(db)
	courses := repository.NewCourseRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	stats := repository.NewStatsRepository(db)

	records := service.NewRecordsService(students, courses, enrollments, stats, nil, log)

	files, err := storage.NewFileStore(cfg.Reports.OutputDir)
	if err != nil {
		return err
	}
	reports := service.NewReportService(records, stats, files, service.ReportConfig{
		PDFEnabled: cfg.Reports.PDFEnabled,
		ResultTTL:  cfg.Reports.ResultTTL,
	}, log)

	return fn(ctx, &app{
		cfg:     cfg,
		logger:  log,
		store:   db,
		records: records,
		reports: reports,
	})
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "registry",
		Short:         "Student records registry",
		Long:          "Manages students, courses and enrollments in a local SQLite database and generates reports over them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newInfoCommand())
	cmd.AddCommand(newStatsCommand())
	cmd.AddCommand(newTranscriptCommand())
	cmd.AddCommand(newRosterCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newCleanupCommand())
	return cmd
}

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show per-table record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				counts, err := a.store.Info(ctx)
				if err != nil {
					return err
				}
				return printJSON(counts)
			})
		},
	}
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show system-wide statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				stats, err := a.records.GetStatistics(ctx)
				if err != nil {
					return err
				}
				return printJSON(stats)
			})
		},
	}
}

func newTranscriptCommand() *cobra.Command {
	var studentID int64
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Show a student's transcript with GPA",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				transcript, err := a.records.GetStudentTranscript(ctx, studentID)
				if err != nil {
					return err
				}
				if transcript == nil {
					return fmt.Errorf("student %d not found", studentID)
				}
				return printJSON(transcript)
			})
		},
	}
	cmd.Flags().Int64Var(&studentID, "student", 0, "student id (required)")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

func newRosterCommand() *cobra.Command {
	var courseID int64
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Show a course's enrolled students",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				roster, err := a.records.GetCourseRoster(ctx, courseID)
				if err != nil {
					return err
				}
				if roster == nil {
					return fmt.Errorf("course %d not found", courseID)
				}
				return printJSON(roster)
			})
		},
	}
	cmd.Flags().Int64Var(&courseID, "course", 0, "course id (required)")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func newReportCommand() *cobra.Command {
	var (
		format    string
		studentID int64
		courseID  int64
		status    string
	)
	cmd := &cobra.Command{
		Use:   "report <students|courses|transcript|roster|statistics>",
		Short: "Generate a report file under the output directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				artifact, err := a.reports.Generate(ctx, service.ReportRequest{
					Kind:      models.ReportKind(args[0]),
					Format:    models.ReportFormat(format),
					StudentID: studentID,
					CourseID:  courseID,
					Status:    models.StudentStatus(status),
				})
				if err != nil {
					return err
				}
				return printJSON(artifact)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "output format (csv|text|html|pdf)")
	cmd.Flags().Int64Var(&studentID, "student", 0, "student id, for transcript reports")
	cmd.Flags().Int64Var(&courseID, "course", 0, "course id, for roster reports")
	cmd.Flags().StringVar(&status, "status", "", "status filter, for student reports")
	return cmd
}

func newCleanupCommand() *cobra.Command {
	var reportAge time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove orphaned enrollments, flag stale students and purge old report files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				result, err := a.records.CleanupData(ctx)
				if err != nil {
					return err
				}
				removed, err := a.reports.CleanupOldReports(reportAge)
				if err != nil {
					return err
				}
				return printJSON(map[string]interface{}{
					"orphaned_enrollments_removed": result.OrphanedEnrollmentsRemoved,
					"students_marked_inactive":     result.StudentsMarkedInactive,
					"report_files_removed":         removed,
				})
			})
		},
	}
	cmd.Flags().DurationVar(&reportAge, "report-age", 0, "remove report files older than this (default: configured retention)")
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
