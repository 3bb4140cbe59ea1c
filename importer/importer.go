// Package importer converts an exported spreadsheet into the dashboard's
// JSON dataset, archiving the previous dataset file first.
package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/spektr-org/gccdash/roster"
)

// ============================================================================
// IMPORTER: spreadsheet → db.json
// ============================================================================

// DefaultSheet is the worksheet holding the roster in exported workbooks.
const DefaultSheet = "Base Data"

// Indent is the indentation of the written dataset.
const Indent = "    "

// archiveLayout is appended to the output's stem when it is archived.
const archiveLayout = "_20060102_150405"

// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Option configures an Importer.
type Option func(*config)

type config struct {
	sheet         string
	sheetExplicit bool
	downloads     string
	now           func() time.Time
	log           logrus.FieldLogger
}

// WithSheet reads the named worksheet. A sheet chosen this way must exist.
func WithSheet(name string) Option {
	return func(c *config) {
		if name != "" {
			c.sheet = name
			c.sheetExplicit = true
		}
	}
}

// WithDownloadsDir overrides the fallback directory for relative source names.
func WithDownloadsDir(dir string) Option {
	return func(c *config) { c.downloads = dir }
}

// WithClock sets the clock used for archive names.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) { c.log = log }
}

// Importer converts spreadsheets into dataset files.
type Importer struct {
	cfg config
}

// New creates an Importer. Relative source names fall back to ~/Downloads.
func New(opts ...Option) *Importer {
	cfg := config{sheet: DefaultSheet, now: time.Now}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.downloads = filepath.Join(home, "Downloads")
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.log == nil {
		log := logrus.New()
		log.SetOutput(os.Stderr)
		cfg.log = log
	}
	return &Importer{cfg: cfg}
}

// Result describes a finished import.
type Result struct {
	Source   string   `json:"source"`
	Output   string   `json:"output"`
	Archived string   `json:"archived,omitempty"`
	Records  int      `json:"records"`
	Fields   []string `json:"fields"`
}

// Import reads src and writes its rows to out as a JSON array. The sheet is
// read before anything on disk changes; an existing out is then renamed
// aside and replaced.
func (im *Importer) Import(src, out string) (*Result, error) {
	path, err := im.Resolve(src)
	if err != nil {
		return nil, err
	}
	records, err := im.Read(path)
	if err != nil {
		return nil, err
	}

	archived, err := Archive(out, im.cfg.now())
	if err != nil {
		return nil, err
	}
	if archived != "" {
		im.cfg.log.WithFields(logrus.Fields{"from": out, "to": archived}).Info("existing dataset archived")
	}

	ds := roster.NewDataset(records, path, im.cfg.now())
	var buf bytes.Buffer
	if err := ds.WriteJSON(&buf, Indent); err != nil {
		return nil, errors.Wrap(err, "encode dataset")
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return nil, errors.Wrapf(err, "write %s", out)
	}

	im.cfg.log.WithFields(logrus.Fields{
		"source":  path,
		"output":  out,
		"records": ds.Len(),
	}).Info("import complete")

	return &Result{
		Source:   path,
		Output:   out,
		Archived: archived,
		Records:  ds.Len(),
		Fields:   ds.FieldNames(),
	}, nil
}

// Resolve locates src: as given when it exists, otherwise a relative name is
// looked up in the downloads directory.
func (im *Importer) Resolve(src string) (string, error) {
	if _, err := os.Stat(src); err == nil {
		return src, nil
	}
	if filepath.IsAbs(src) || im.cfg.downloads == "" {
		return "", errors.Errorf("the file %q was not found", src)
	}
	candidate := filepath.Join(im.cfg.downloads, src)
	if _, err := os.Stat(candidate); err != nil {
		return "", errors.Errorf("the file %q was not found", candidate)
	}
	return candidate, nil
}

// Read parses the spreadsheet at path into records, choosing the reader by
// file extension.
func (im *Importer) Read(path string) ([]*roster.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open spreadsheet")
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(f, im.cfg.sheet, im.cfg.sheetExplicit)
	case ".csv":
		return ReadCSV(f)
	default:
		return nil, errors.Wrap(ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Archive renames an existing file at path to <stem>_YYYYMMDD_HHMMSS<ext> in
// the same directory and returns the new path. A missing file is not an error
// and returns "".
func Archive(path string, now time.Time) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, "stat %s", path)
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	target := filepath.Join(filepath.Dir(path), stem+now.Format(archiveLayout)+ext)
	if err := os.Rename(path, target); err != nil {
		return "", errors.Wrapf(err, "archive %s", path)
	}
	return target, nil
}
