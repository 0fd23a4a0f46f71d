package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"epif/database"
	"epif/internal/config"
	"epif/internal/export"
	"epif/internal/logging"
	"epif/internal/repository"
	"epif/internal/services"

	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

func main() {
	parquetCmd := flag.NewFlagSet("parquet", flag.ExitOnError)
	startDate := parquetCmd.String("start", "", "Start date (YYYY-MM-DD), empty exports everything")
	endDate := parquetCmd.String("end", "", "End date (YYYY-MM-DD), inclusive")
	output := parquetCmd.String("out", "", "Output file (default assessments-YYYYMMDD.parquet)")

	purgeCmd := flag.NewFlagSet("purge", flag.ExitOnError)
	purgeDays := purgeCmd.Int("days", 0, "Delete assessments older than this many days (default RETENTION_DAYS)")

	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.New("info", "text").WithError(err).Fatal("Invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	switch os.Args[1] {
	case "parquet":
		parquetCmd.Parse(os.Args[2:])
		repo := connect(cfg, log)

		start, end, err := dateRange(*startDate, *endDate)
		if err != nil {
			log.Fatal(err)
		}
		path := *output
		if path == "" {
			path = fmt.Sprintf("assessments-%s.parquet", time.Now().Format("20060102"))
		}
		n, err := writeParquet(repo, start, end, path)
		if err != nil {
			log.WithError(err).Fatal("Export failed")
		}
		log.WithFields(logrus.Fields{"rows": n, "file": path}).Info("Export completed")

	case "purge":
		purgeCmd.Parse(os.Args[2:])
		repo := connect(cfg, log)

		days := *purgeDays
		if days == 0 {
			days = cfg.RetentionDays
		}
		job, err := services.NewRetentionJob(repo, days, cfg.RetentionSchedule, log)
		if err != nil {
			log.WithError(err).Fatal("Invalid retention settings")
		}
		if _, err := job.RunOnce(); err != nil {
			log.WithError(err).Fatal("Purge failed")
		}

	case "help":
		printHelp()

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func connect(cfg *config.Config, log *logrus.Logger) repository.AssessmentRepository {
	db, err := database.ConnectDatabase(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	return repository.NewAssessmentRepository(db)
}

// dateRange parses the optional bounds. Both empty means no range; the end
// date covers its whole day.
func dateRange(start, end string) (time.Time, time.Time, error) {
	if start == "" && end == "" {
		return time.Time{}, time.Time{}, nil
	}
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("both -start and -end are required for a date range")
	}
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return s, e.Add(24*time.Hour - time.Second), nil
}

func writeParquet(repo repository.AssessmentRepository, start, end time.Time, path string) (int, error) {
	if start.IsZero() {
		end = time.Now()
	}
	assessments, err := repo.GetAssessmentsByDateRange(start, end)
	if err != nil {
		return 0, fmt.Errorf("query assessments: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := export.NewWriter(f)
	if _, err := w.Write(assessments); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return w.Count(), f.Close()
}

func printHelp() {
	fmt.Println("EPIF assessment tool")
	fmt.Println("\nUsage:")
	fmt.Println("  export <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  parquet   Write stored assessments to a Parquet file")
	fmt.Println("  purge     Delete assessments older than the retention window")
	fmt.Println("  help      Show this help")
	fmt.Println("\nExamples:")
	fmt.Println("  export parquet -start 2026-01-01 -end 2026-03-31 -out q1.parquet")
	fmt.Println("  export purge -days 365")
}
