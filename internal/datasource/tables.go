package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/chase-predictor/internal/models"
)

// Tokens that mark an absent cell in exported tables
var missingTokens = map[string]bool{
	"": true, "na": true, "n/a": true, "nan": true, "null": true, "none": true, "<na>": true, "#n/a": true,
}

// Loader reads the match and delivery tables
type Loader struct {
	factory *Factory
	logger  *logrus.Logger
}

// NewLoader creates a table loader backed by the factory's sources
func NewLoader(factory *Factory, logger *logrus.Logger) *Loader {
	return &Loader{factory: factory, logger: logger}
}

// LoadMatches reads the match table at location
func (l *Loader) LoadMatches(ctx context.Context, location string) ([]models.MatchRecord, error) {
	var out []models.MatchRecord
	err := l.withTable(ctx, location, func(r io.Reader) error {
		var err error
		out, err = ReadMatches(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.logLoaded("matches", location, len(out))
	return out, nil
}

// LoadDeliveries reads the delivery table at location
func (l *Loader) LoadDeliveries(ctx context.Context, location string) ([]models.DeliveryRecord, error) {
	var out []models.DeliveryRecord
	err := l.withTable(ctx, location, func(r io.Reader) error {
		var err error
		out, err = ReadDeliveries(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.logLoaded("deliveries", location, len(out))
	return out, nil
}

func (l *Loader) withTable(ctx context.Context, location string, read func(io.Reader) error) error {
	src, err := l.factory.SourceFor(location)
	if err != nil {
		return err
	}
	rc, err := src.Open(ctx, location)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := read(rc); err != nil {
		return fmt.Errorf("failed to read %s: %w", location, err)
	}
	return nil
}

func (l *Loader) logLoaded(table, location string, rows int) {
	if l.logger == nil {
		return
	}
	l.logger.WithFields(logrus.Fields{
		"table":    table,
		"location": location,
		"rows":     rows,
	}).Info("Loaded table")
}

// ReadMatches parses a match table. Columns are located by header name;
// id, city and winner are required, season, date and venue are optional.
func ReadMatches(r io.Reader) ([]models.MatchRecord, error) {
	t, err := newTable(r, []string{"id", "city", "winner"})
	if err != nil {
		return nil, err
	}

	var matches []models.MatchRecord
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		m := models.MatchRecord{
			ID:     rec.text("id"),
			City:   rec.text("city"),
			Winner: rec.text("winner"),
			Season: rec.text("season"),
			Venue:  rec.text("venue"),
		}
		if m.Season == "" {
			m.Season = seasonFromDate(rec.text("date"))
		}
		if m.ID == "" {
			return nil, rec.invalid("id", "empty match id")
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// ReadDeliveries parses a ball-by-ball table. The dismissal flag is read
// from player_dismissed (non-empty means dismissed) or, failing that, from
// an is_wicket column.
func ReadDeliveries(r io.Reader) ([]models.DeliveryRecord, error) {
	t, err := newTable(r, []string{"match_id", "inning", "over", "ball", "batting_team", "bowling_team", "total_runs"})
	if err != nil {
		return nil, err
	}

	dismissalCol := ""
	switch {
	case t.has("player_dismissed"):
		dismissalCol = "player_dismissed"
	case t.has("is_wicket"):
		dismissalCol = "is_wicket"
	default:
		return nil, fmt.Errorf("%w: player_dismissed or is_wicket", ErrMissingColumn)
	}

	var deliveries []models.DeliveryRecord
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		d := models.DeliveryRecord{
			MatchID:     rec.text("match_id"),
			BattingTeam: rec.text("batting_team"),
			BowlingTeam: rec.text("bowling_team"),
		}
		if d.Inning, err = rec.integer("inning"); err != nil {
			return nil, err
		}
		if d.Over, err = rec.integer("over"); err != nil {
			return nil, err
		}
		if d.Ball, err = rec.integer("ball"); err != nil {
			return nil, err
		}
		if d.TotalRuns, err = rec.integer("total_runs"); err != nil {
			return nil, err
		}

		if dismissalCol == "player_dismissed" {
			d.Dismissal = rec.text(dismissalCol) != ""
		} else {
			flag, err := rec.integer(dismissalCol)
			if err != nil {
				return nil, err
			}
			d.Dismissal = flag != 0
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

type table struct {
	reader *csv.Reader
	index  map[string]int
	line   int
}

func newTable(r io.Reader, required []string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty table", ErrInvalidData)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return &table{reader: reader, index: index, line: 1}, nil
}

func (t *table) has(col string) bool {
	_, ok := t.index[col]
	return ok
}

func (t *table) next() (*row, error) {
	fields, err := t.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	t.line++
	return &row{table: t, fields: fields, line: t.line}, nil
}

type row struct {
	table  *table
	fields []string
	line   int
}

// text returns the trimmed cell, or "" when the column is absent or the
// cell holds a missing-value token.
func (r *row) text(col string) string {
	i, ok := r.table.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	v := strings.TrimSpace(r.fields[i])
	if missingTokens[strings.ToLower(v)] {
		return ""
	}
	return v
}

// integer parses a whole number; "3.0" style exports are accepted.
func (r *row) integer(col string) (int, error) {
	v := r.text(col)
	if v == "" {
		return 0, r.invalid(col, "empty value")
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, r.invalid(col, fmt.Sprintf("not an integer: %q", v))
	}
	return int(f), nil
}

func (r *row) invalid(col, msg string) error {
	return fmt.Errorf("%w: line %d column %s: %s", ErrInvalidData, r.line, col, msg)
}

func seasonFromDate(s string) string {
	for _, layout := range []string{"2006-01-02", "02/01/2006", "2006/01/02"} {
		if d, err := time.Parse(layout, s); err == nil {
			return strconv.Itoa(d.Year())
		}
	}
	return ""
}
