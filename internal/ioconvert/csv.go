package ioconvert

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/ebird"
	"github.com/aviatlas/avidb/pkg/report"
	"github.com/aviatlas/avidb/pkg/sources"
	"github.com/aviatlas/avidb/pkg/taxonomy"
	"github.com/cheggaaa/pb/v3"
	"github.com/gnames/gnlib"
)

// resolveCSV finds the taxonomy CSV to convert. An explicit
// --csv path wins; otherwise the release comes from sources.yaml
// and is downloaded to the cache directory when only its URL is
// known.
func (c *converter) resolveCSV(
	ctx context.Context,
) (string, []string, error) {
	if c.cfg.Convert.CSVPath != "" {
		return sources.ExpandHome(c.cfg.Convert.CSVPath), nil, nil
	}

	srcCfg, err := c.sources.Load()
	if err != nil {
		return "", nil, err
	}

	var warnings []string
	for _, w := range srcCfg.Warnings {
		warnings = append(warnings,
			fmt.Sprintf("sources.yaml: %s", w.Message))
	}

	release, err := srcCfg.Release(c.cfg.Convert.Version)
	if err != nil {
		return "", nil, UnknownVersionError(c.cfg.Convert.Version, err)
	}

	// Local file takes priority over downloading
	if _, err := os.Stat(release.File); err == nil {
		return release.File, warnings, nil
	}

	if release.URL == "" {
		return "", nil, CSVOpenError(release.File, os.ErrNotExist)
	}

	// Keep one cached copy per release file name
	cachePath := filepath.Join(
		config.CacheDir(c.cfg.HomeDir),
		filepath.Base(release.File),
	)
	if _, err := os.Stat(cachePath); err == nil {
		slog.Info("Using cached taxonomy file", "path", cachePath)
		return cachePath, warnings, nil
	}

	if err := downloadFile(ctx, release.URL, cachePath); err != nil {
		return "", nil, err
	}
	slog.Info("Downloaded taxonomy file",
		"url", release.URL, "path", cachePath)

	return cachePath, warnings, nil
}

// downloadFile fetches url into dest. The file lands under a
// temporary name first so an aborted download never poisons the
// cache.
func downloadFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, url, nil)
	if err != nil {
		return DownloadError(url, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return DownloadError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DownloadError(url,
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	tmp := dest + ".download"
	out, err := os.Create(tmp)
	if err != nil {
		return DownloadError(url, err)
	}

	var src io.Reader = resp.Body
	if resp.ContentLength > 0 {
		bar := pb.Full.Start64(resp.ContentLength)
		bar.Set(pb.Bytes, true)
		bar.Set("prefix", "Downloading taxonomy: ")
		bar.Set(pb.CleanOnFinish, true)
		src = bar.NewProxyReader(resp.Body)
		defer bar.Finish()
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(tmp)
		return DownloadError(url, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return DownloadError(url, err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return DownloadError(url, err)
	}

	return nil
}

// columnIndex maps the taxonomy columns avidb uses to their
// position in this file's header.
type columnIndex struct {
	taxonOrder   int
	category     int
	speciesCode  int
	commonName   int
	sciName      int
	order        int
	family       int
	speciesGroup int
}

// mapHeader locates the required columns. Column order varies
// between eBird releases, so positions are never assumed.
func mapHeader(header []string) (columnIndex, error) {
	idx := columnIndex{
		taxonOrder:   -1,
		category:     -1,
		speciesCode:  -1,
		commonName:   -1,
		sciName:      -1,
		order:        -1,
		family:       -1,
		speciesGroup: -1,
	}

	for i, name := range header {
		// The first cell of eBird exports often carries a BOM
		name = strings.TrimPrefix(name, "\ufeff")
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case ebird.ColTaxonOrder:
			idx.taxonOrder = i
		case ebird.ColCategory:
			idx.category = i
		case ebird.ColSpeciesCode:
			idx.speciesCode = i
		case ebird.ColCommonName:
			idx.commonName = i
		case ebird.ColSciName:
			idx.sciName = i
		case ebird.ColOrder:
			idx.order = i
		case ebird.ColFamily:
			idx.family = i
		case ebird.ColSpeciesGroup:
			idx.speciesGroup = i
		}
	}

	required := []struct {
		col string
		pos int
	}{
		{ebird.ColCategory, idx.category},
		{ebird.ColSpeciesCode, idx.speciesCode},
		{ebird.ColCommonName, idx.commonName},
		{ebird.ColSciName, idx.sciName},
		{ebird.ColOrder, idx.order},
		{ebird.ColFamily, idx.family},
	}
	for _, r := range required {
		if r.pos < 0 {
			return idx, fmt.Errorf("missing column %s", r.col)
		}
	}

	return idx, nil
}

// field returns the trimmed, UTF-8 repaired cell at pos, or ""
// when the record is too short or the column is absent.
func field(record []string, pos int) string {
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(gnlib.FixUtf8(record[pos]))
}

// rowFromRecord converts one CSV record into a classifier row.
func rowFromRecord(
	idx columnIndex,
	record []string,
	line int,
) ebird.Row {
	return ebird.Row{
		Line:         line,
		TaxonOrder:   field(record, idx.taxonOrder),
		Category:     field(record, idx.category),
		SpeciesCode:  field(record, idx.speciesCode),
		CommonName:   field(record, idx.commonName),
		SciName:      field(record, idx.sciName),
		Order:        field(record, idx.order),
		Family:       field(record, idx.family),
		SpeciesGroup: field(record, idx.speciesGroup),
	}
}

// readRows streams the taxonomy CSV, classifies every record and
// builds the tree. Malformed records are counted as row errors
// and never abort the run; only an unreadable file does.
func (c *converter) readRows(
	ctx context.Context,
	path string,
	rep *report.Conversion,
) (*taxonomy.Builder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, CSVOpenError(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, CSVOpenError(path, err)
	}

	bar := pb.Full.Start64(info.Size())
	bar.Set(pb.Bytes, true)
	bar.Set("prefix", "Reading taxonomy: ")
	bar.Set(pb.CleanOnFinish, true)
	defer bar.Finish()

	r := csv.NewReader(bar.NewProxyReader(f))
	// Ragged records are a row problem, not a file problem
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, CSVHeaderError(path, err)
	}
	idx, err := mapHeader(header)
	if err != nil {
		return nil, CSVHeaderError(path, err)
	}

	classifier := ebird.NewClassifier(c.cfg.Convert.Categories)
	builder := taxonomy.NewBuilder()

	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rep.Errors = append(rep.Errors, report.RowError{
					Row:    line,
					Reason: parseErr.Err.Error(),
				})
				continue
			}
			return nil, CSVReadError(path, line, err)
		}

		rep.TotalRows++
		if rep.TotalRows%1000 == 0 {
			select {
			case <-ctx.Done():
				return nil, CancelledError(ctx.Err())
			default:
			}
		}

		res := classifier.Classify(rowFromRecord(idx, record, line))
		switch res.Status {
		case ebird.StatusSkipped:
			rep.Skipped++
		case ebird.StatusRejected:
			rep.Errors = append(rep.Errors, report.RowError{
				Row:    line,
				Reason: res.Reason,
			})
		case ebird.StatusConverted:
			if _, err := builder.AddSpecies(res.Classified); err != nil {
				rep.Errors = append(rep.Errors, report.RowError{
					Row:    line,
					Reason: err.Error(),
				})
				continue
			}
			rep.Processed++
		}
	}

	return builder, nil
}
