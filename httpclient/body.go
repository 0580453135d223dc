// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: spec.md §4.9 (body-kind-specific response reading);
// original_source/tests/include/http_session_pooled.hpp's ResponseBody
// template parameter, generalized here into an explicit BodyKind enum.

package httpclient

import (
	"io"
	"net/http"
	"os"

	"github.com/coderealm-atlas/my-mysql/errs"
)

// Body-kind response limits. BufferedBodyLimit is the default for
// BodyBuffered and is overridable per call via BodyOptions.BufferedLimit.
const (
	BufferedBodyLimit = 4 << 20  // 4 MiB
	FileDownloadLimit = 10 << 30 // 10 GiB
)

// BodyKind selects how ReadBody consumes a response body.
type BodyKind int

const (
	// BodyDiscard reads and discards the body, returning nil data.
	BodyDiscard BodyKind = iota
	// BodyBuffered reads the body into memory up to BufferedLimit bytes.
	BodyBuffered
	// BodyFile streams the body to FilePath, returning nil data.
	BodyFile
)

// BodyOptions configures ReadBody.
type BodyOptions struct {
	Kind BodyKind

	// FilePath is required when Kind is BodyFile.
	FilePath string

	// BufferedLimit overrides BufferedBodyLimit when Kind is BodyBuffered
	// and BufferedLimit is positive.
	BufferedLimit int64
}

// ReadBody consumes resp.Body according to opts and closes it. For
// BodyDiscard and BodyFile the returned []byte is always nil.
func ReadBody(resp *http.Response, opts BodyOptions) ([]byte, error) {
	defer resp.Body.Close()

	switch opts.Kind {
	case BodyFile:
		return nil, downloadToFile(resp.Body, opts.FilePath)
	case BodyBuffered:
		limit := opts.BufferedLimit
		if limit <= 0 {
			limit = BufferedBodyLimit
		}
		return io.ReadAll(io.LimitReader(resp.Body, limit))
	default:
		_, err := io.Copy(io.Discard, resp.Body)
		return nil, err
	}
}

func downloadToFile(body io.Reader, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errs.Wrap(errs.DownloadFileOpenFailed, "opening download file failed", err)
	}
	defer f.Close()
	_, err = io.Copy(f, io.LimitReader(body, FileDownloadLimit))
	return err
}
