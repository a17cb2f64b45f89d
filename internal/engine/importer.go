package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-lifeclock/internal/config"
)

// ErrNoBirthday is returned when a contact stream holds no card with a full birth date.
var ErrNoBirthday = errors.New(config.ErrNoBirthday)

// ImportConfig describes where to read the user's own contact card from.
type ImportConfig struct {
	Mode      string // config.ImportModeLocal or config.ImportModeWeb
	LocalPath string // Path to a .vcf file
	WebURL    string // CardDAV or WebDAV URL
	WebUser   string // HTTP Basic Auth username
	WebPass   string // HTTP Basic Auth password
}

// ImportedBirthday is the birth date found in a contact card.
type ImportedBirthday struct {
	Name      string
	BirthDate time.Time
}

// Importer pulls a birthday out of a vCard stream.
type Importer struct {
	Fetcher VCardFetcher
}

// Import returns the first card in the stream that carries a BDAY with a year.
// Malformed cards and yearless birthdays are skipped.
func (im *Importer) Import(ctx context.Context, cfg ImportConfig) (ImportedBirthday, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompImport,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgImportStarted)

	reader, err := im.openStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return ImportedBirthday{}, ctx.Err()
		}
		return ImportedBirthday{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	found, cards, err := firstBirthday(ctx, reader)
	if err != nil {
		return ImportedBirthday{}, err
	}

	log.Info(config.MsgImportDone,
		config.LogKeyName, found.Name,
		config.LogKeyCards, cards,
		config.LogKeyDOB, FormatBirthday(found.BirthDate),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return found, nil
}

func (im *Importer) openStream(ctx context.Context, cfg ImportConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.ImportModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.ImportModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return im.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// firstBirthday decodes cards until one has a usable BDAY.
// It also returns how many cards were read.
func firstBirthday(ctx context.Context, r io.Reader) (ImportedBirthday, int, error) {
	decoder := vcard.NewDecoder(r)
	cards, failures := 0, 0

	for {
		if err := ctx.Err(); err != nil {
			return ImportedBirthday{}, cards, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			return ImportedBirthday{}, cards, ErrNoBirthday
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompImport,
				config.LogKeyError, err)
			failures++
			if errors.Is(err, io.ErrUnexpectedEOF) || failures >= config.MaxCardFailures {
				return ImportedBirthday{}, cards, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
			}
			continue
		}
		cards++
		failures = 0

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		date, yearKnown, err := parseDate(bday.Value)
		if err != nil || !yearKnown {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompImport,
				config.LogKeyValue, bday.Value)
			continue
		}

		return ImportedBirthday{Name: cardName(card), BirthDate: date}, cards, nil
	}
}

// cardName prefers FN (formatted) over N (structured).
func cardName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil {
		return n.Value
	}
	return ""
}
