// Command olexparse analyzes one Olex folder offline and prints its diagnostics
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"olexparser/internal/api/util"
	"olexparser/internal/config"
	"olexparser/internal/core/service"
	"olexparser/internal/discovery"
	"olexparser/internal/export"
	"olexparser/internal/logger"
)

func main() {
	gpxOut := flag.String("gpx", "", "write a GPX export to this file")
	geojsonOut := flag.String("geojson", "", "write a GeoJSON export to this file")
	reportOut := flag.String("report", "", "write the JSON case report to this file (- for stdout)")
	tokenFor := flag.String("issue-token", "", "print an API token for this subject and exit")
	tokenTTL := flag.Duration("token-ttl", 12*time.Hour, "lifetime of an issued token")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <olex folder>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	if err := logger.Setup(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}); err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}

	if *tokenFor != "" {
		if cfg.JWTSecret == "" {
			logrus.Fatal("JWT_SECRET is required to issue tokens")
		}
		token, err := util.IssueToken(cfg.JWTSecret, *tokenFor, "analyst", *tokenTTL)
		if err != nil {
			logrus.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	root := flag.Arg(0)

	res, err := discovery.Walk(root)
	if err != nil {
		logrus.Fatalf("Cannot read case folder: %v", err)
	}
	c, err := service.Assemble(context.Background(), res, service.Options{
		Location:  cfg.Location,
		Layout:    cfg.RecordLayout,
		Tolerance: cfg.Tolerance,
		Workers:   cfg.Workers,
	})
	if err != nil {
		logrus.Fatalf("Failed to assemble case: %v", err)
	}

	ds := c.Diagnostics()
	for _, d := range ds {
		logrus.WithFields(logrus.Fields{
			"kind":   d.Kind.String(),
			"source": d.Source,
		}).Warn(d.Message)
	}
	logrus.WithFields(logrus.Fields{
		"root":         root,
		"trip_files":   len(c.TripFiles()),
		"route_files":  len(c.RouteFiles()),
		"unassociated": len(c.UnassociatedSegments()),
		"diagnostics":  len(ds),
	}).Info("case analyzed")

	if *reportOut != "" {
		err := writeTo(*reportOut, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(service.BuildReport(c))
		})
		if err != nil {
			logrus.Fatalf("Failed to write report: %v", err)
		}
	}
	if *gpxOut != "" {
		if err := writeTo(*gpxOut, func(w io.Writer) error { return export.WriteGPX(w, c) }); err != nil {
			logrus.Fatalf("Failed to write GPX: %v", err)
		}
	}
	if *geojsonOut != "" {
		if err := writeTo(*geojsonOut, func(w io.Writer) error { return export.WriteGeoJSON(w, c) }); err != nil {
			logrus.Fatalf("Failed to write GeoJSON: %v", err)
		}
	}
}

// writeTo runs write against path, or stdout when path is "-"
func writeTo(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
