package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/tartampluch/go-lifeclock/internal/config"
	"github.com/tartampluch/go-lifeclock/internal/engine"
)

// printOptions are the -print inputs. Flags override the settings file.
type printOptions struct {
	ConfigPath string
	Birthday   string
	Lifetime   int
}

// printOutput is the JSON written by -print.
type printOutput struct {
	Birthday string    `json:"birthday"`
	Lifetime int       `json:"lifetime"`
	Now      time.Time `json:"now"`
	engine.Snapshot
}

// runPrint computes one snapshot at clock.Now() and writes it to out as JSON.
func runPrint(out io.Writer, opts printOptions, clock engine.Clock) error {
	s := config.DefaultSettings()
	if opts.ConfigPath != "" {
		loaded, err := config.ReadSettingsFile(opts.ConfigPath)
		if err != nil {
			return err
		}
		s = loaded
	}
	if opts.Birthday != "" {
		s.Birthday = opts.Birthday
	}
	if opts.Lifetime != 0 {
		s.Lifetime = opts.Lifetime
	}

	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return err
	}
	rec, err := engine.NewBirthRecord(s.Birthday, s.Lifetime)
	if err != nil {
		return err
	}

	now := clock.Now()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(printOutput{
		Birthday: engine.FormatBirthday(rec.BirthDate),
		Lifetime: rec.LifeExpectancyYears,
		Now:      now,
		Snapshot: engine.Compute(rec, now),
	}); err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeSnapshot, err)
	}
	return nil
}
