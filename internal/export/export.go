// Package export writes generated DDL documents to disk under the
// schema_<dialect>_<date>.sql naming convention, optionally xz-compressed.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/SchemaCanvas/core/dialect"
	apperrors "github.com/FocuswithJustin/SchemaCanvas/core/errors"
	"github.com/FocuswithJustin/SchemaCanvas/core/sqlgen"
	"github.com/FocuswithJustin/SchemaCanvas/internal/logging"
)

// Result describes a completed export.
type Result struct {
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// Options control where and how the document is written.
type Options struct {
	Dir      string           // destination directory, created if missing; "." when empty
	Compress bool             // write .sql.xz instead of .sql
	Now      func() time.Time // file-name date source; nil means time.Now
}

// Filename returns the export name for a dialect at a point in time.
func Filename(d dialect.Dialect, at time.Time, compressed bool) string {
	name := fmt.Sprintf("schema_%s_%s.sql", d, at.Format("2006-01-02"))
	if compressed {
		name += ".xz"
	}
	return name
}

// Write stores the DDL text under opts.Dir. The fingerprint always covers
// the uncompressed text; SizeBytes is the on-disk size.
func Write(d dialect.Dialect, ddl string, opts Options) (*Result, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.Wrap(err, "create export directory")
	}

	data := []byte(ddl)
	if opts.Compress {
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, apperrors.Wrap(err, "create xz writer")
		}
		if _, err := w.Write(data); err != nil {
			return nil, apperrors.Wrap(err, "compress DDL")
		}
		if err := w.Close(); err != nil {
			return nil, apperrors.Wrap(err, "close xz stream")
		}
		data = buf.Bytes()
	}

	path := filepath.Join(dir, Filename(d, now(), opts.Compress))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, apperrors.Wrap(err, "write export file")
	}

	res := &Result{
		Path:        path,
		Fingerprint: sqlgen.Fingerprint(ddl),
		SizeBytes:   int64(len(data)),
	}
	logging.ExportWritten(res.Path, res.Fingerprint, res.SizeBytes)
	return res, nil
}
