package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"

	"github.com/MiguelRiosT/tone-trace/pkg/logger"
	"github.com/MiguelRiosT/tone-trace/pkg/tonetrace"
	"github.com/MiguelRiosT/tone-trace/pkg/tonetrace/audio"
)

var (
	dbPath     string
	tempDir    string
	sampleRate int
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func createService() (tonetrace.Service, error) {
	return tonetrace.NewService(
		tonetrace.WithDBPath(dbPath),
		tonetrace.WithTempDir(tempDir),
		tonetrace.WithSampleRate(sampleRate),
	)
}

func main() {
	_ = godotenv.Load()

	dbPath = getEnvOrDefault("TONETRACE_DB_PATH", "tonetrace.sqlite3")
	tempDir = getEnvOrDefault("TONETRACE_TEMP_DIR", os.TempDir())
	sampleRate = 44100

	log := logger.GetLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Debugf("Executing command: %s", command)

	switch command {
	case "index":
		handleIndex()
	case "identify":
		handleIdentify()
	case "scan":
		handleScan()
	case "record":
		handleRecord()
	case "list":
		handleList()
	case "delete":
		handleDelete()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`tone-trace — audio identification by acoustic fingerprinting

Usage:
  tone-trace index <audio-file> [-title <name>]
  tone-trace identify <audio-file>
  tone-trace scan <fragment> <directory> [-block <seconds>] [-min-blocks <n>]
  tone-trace record <output.wav> [-seconds <n>]
  tone-trace list
  tone-trace delete <recording-id>

Environment:
  TONETRACE_DB_PATH   database file (default tonetrace.sqlite3)
  TONETRACE_TEMP_DIR  temp dir for audio conversion
  LOG_LEVEL           DEBUG|INFO|WARN|ERROR|FATAL
`)
}

func fail(log *logger.Logger, msg string, err error) {
	log.Errorf("%s: %v", msg, xerrors.New(err))
	os.Exit(1)
}

func handleIndex() {
	log := logger.GetLogger()

	fs := flag.NewFlagSet("index", flag.ExitOnError)
	title := fs.String("title", "", "Recording title (defaults to the file name)")

	args := os.Args[2:]
	if len(args) < 1 {
		fmt.Println("usage: tone-trace index <audio-file> [-title <name>]")
		os.Exit(1)
	}
	audioPath := args[0]
	fs.Parse(args[1:])

	if *title == "" {
		*title = audioPath
	}

	svc, err := createService()
	if err != nil {
		fail(log, "creating service", err)
	}
	defer svc.Close()

	id, err := svc.IndexRecording(context.Background(), audioPath, *title)
	if err != nil {
		fail(log, "indexing failed", err)
	}
	fmt.Printf("Indexed %q as %s\n", *title, id)
}

func handleIdentify() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("usage: tone-trace identify <audio-file>")
		os.Exit(1)
	}
	audioPath := os.Args[2]

	svc, err := createService()
	if err != nil {
		fail(log, "creating service", err)
	}
	defer svc.Close()

	matches, err := svc.Identify(context.Background(), audioPath)
	if err != nil {
		fail(log, "identification failed", err)
	}

	if len(matches) == 0 {
		fmt.Println("No match found.")
		return
	}
	for i, m := range matches {
		fmt.Printf("%2d. %-40s score=%d offset=%d\n", i+1, m.Title, m.Score, m.Offset)
	}
}

func handleScan() {
	log := logger.GetLogger()

	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	block := fs.Float64("block", 10, "Block duration in seconds")
	minBlocks := fs.Int("min-blocks", 2, "Blocks required above the dynamic threshold")

	args := os.Args[2:]
	if len(args) < 2 {
		fmt.Println("usage: tone-trace scan <fragment> <directory> [-block <seconds>] [-min-blocks <n>]")
		os.Exit(1)
	}
	fragment, dir := args[0], args[1]
	fs.Parse(args[2:])

	svc, err := createService()
	if err != nil {
		fail(log, "creating service", err)
	}
	defer svc.Close()

	matches, err := svc.ScanDirectory(context.Background(), fragment, dir, *block, *minBlocks)
	if err != nil {
		fail(log, "scan failed", err)
	}

	if len(matches) == 0 {
		fmt.Println("No match found.")
		return
	}
	for i, m := range matches {
		fmt.Printf("%2d. %-40s score=%d\n", i+1, m.Title, m.Score)
	}
}

func handleRecord() {
	log := logger.GetLogger()

	fs := flag.NewFlagSet("record", flag.ExitOnError)
	seconds := fs.Int("seconds", 10, "Recording length in seconds")

	args := os.Args[2:]
	if len(args) < 1 {
		fmt.Println("usage: tone-trace record <output.wav> [-seconds <n>]")
		os.Exit(1)
	}
	outPath := args[0]
	fs.Parse(args[1:])

	log.Infof("Recording %d seconds to %s", *seconds, outPath)
	if err := audio.RecordWAV(outPath, sampleRate, time.Duration(*seconds)*time.Second); err != nil {
		fail(log, "recording failed", err)
	}
	fmt.Printf("Saved %s\n", outPath)
}

func handleList() {
	log := logger.GetLogger()

	svc, err := createService()
	if err != nil {
		fail(log, "creating service", err)
	}
	defer svc.Close()

	recs, err := svc.ListRecordings()
	if err != nil {
		fail(log, "listing recordings", err)
	}

	if len(recs) == 0 {
		fmt.Println("No recordings indexed.")
		return
	}
	for _, r := range recs {
		fmt.Printf("%s  %-40s %6.1fs\n", r.ID, r.Title, float64(r.DurationMs)/1000)
	}
}

func handleDelete() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("usage: tone-trace delete <recording-id>")
		os.Exit(1)
	}
	id := os.Args[2]

	svc, err := createService()
	if err != nil {
		fail(log, "creating service", err)
	}
	defer svc.Close()

	if err := svc.DeleteRecording(id); err != nil {
		fail(log, "deleting recording", err)
	}
	fmt.Printf("Deleted %s\n", id)
}
