package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"SugarMill.twin/internal/client"
	"SugarMill.twin/internal/models"
	flag "github.com/spf13/pflag"
)

const usage = `usage: twinctl [flags] <command> [arg]

commands:
  state              full twin snapshot
  summary            health summary
  readings           current readings (--station, --type)
  stations           all stations
  station <id>       one station with its readings
  production         latest production snapshot
  boards             all metric boards
  board <name>       one metric board
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "twinctl:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("twinctl", flag.ContinueOnError)
	addr := fs.String("addr", envOr("TWIN_ADDR", "http://localhost:8000"), "twin server base URL")
	timeout := fs.Duration("timeout", 5*time.Second, "request timeout")
	station := fs.String("station", "", "filter readings by station id")
	sensorType := fs.String("type", "", "filter readings by sensor type")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	c := client.New(*addr, *timeout)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var (
		result any
		err    error
	)
	switch cmd := fs.Arg(0); cmd {
	case "state":
		result, err = c.State(ctx)
	case "summary":
		result, err = c.Summary(ctx)
	case "readings":
		var st models.SensorType
		if *sensorType != "" {
			var ok bool
			if st, ok = models.ParseSensorType(*sensorType); !ok {
				return fmt.Errorf("unknown sensor type %q", *sensorType)
			}
		}
		result, err = c.Readings(ctx, *station, st)
	case "stations":
		result, err = c.Stations(ctx)
	case "station":
		id, argErr := requireArg(fs, "station id")
		if argErr != nil {
			return argErr
		}
		result, err = c.Station(ctx, id)
	case "production":
		result, err = c.Production(ctx)
	case "boards":
		result, err = c.Boards(ctx)
	case "board":
		name, argErr := requireArg(fs, "board name")
		if argErr != nil {
			return argErr
		}
		result, err = c.Board(ctx, name)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func requireArg(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() < 2 {
		return "", fmt.Errorf("%s is required", what)
	}
	return fs.Arg(1), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
