package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/vk/objwiz/convert"
	"github.com/vk/objwiz/internal/ctxlog"
	"github.com/vk/objwiz/internal/fsutil"
	"github.com/vk/objwiz/objinfo"
)

// Extension is the file extension template discovery looks for.
const Extension = ".json"

// Decode parses a template document into records. A sequence document
// decodes every entry it can: entries that fail (typically with
// convert.UnknownTypeError after a rename) are skipped, reported in the
// joined error, and do not abort the rest.
func Decode(ctx context.Context, conv *convert.Converter, doc []byte) ([]*objinfo.ObjectInfo, error) {
	var top any
	if err := json.Unmarshal(doc, &top); err != nil {
		return nil, fmt.Errorf("template is not valid JSON: %w", err)
	}

	switch d := top.(type) {
	case map[string]any:
		rec, err := conv.FromDict(ctx, d)
		if err != nil {
			return nil, err
		}
		return []*objinfo.ObjectInfo{rec}, nil

	case []any:
		logger := ctxlog.FromContext(ctx)
		var (
			records []*objinfo.ObjectInfo
			errs    []error
		)
		for i, entry := range d {
			obj, ok := entry.(map[string]any)
			if !ok {
				errs = append(errs, fmt.Errorf("entry %d: not an object", i))
				continue
			}
			rec, err := conv.FromDict(ctx, obj)
			if err != nil {
				logger.Warn("Skipping template entry.", "entry", i, "error", err)
				errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
				continue
			}
			records = append(records, rec)
		}
		return records, errors.Join(errs...)

	default:
		return nil, fmt.Errorf("template top level must be an object or a sequence, got %T", top)
	}
}

// Encode renders records into a template document: a single object for one
// record, a sequence otherwise.
func Encode(conv *convert.Converter, records ...*objinfo.ObjectInfo) ([]byte, error) {
	var top any
	if len(records) == 1 {
		top = conv.ToDict(records[0])
	} else {
		seq := make([]any, len(records))
		for i, rec := range records {
			seq[i] = conv.ToDict(rec)
		}
		top = seq
	}
	return json.MarshalIndent(top, "", "  ")
}

// LoadPath loads every template document under path, which may be a single
// file or a directory searched for .json files.
func LoadPath(ctx context.Context, conv *convert.Converter, path string) ([]*objinfo.ObjectInfo, error) {
	files, err := fsutil.ResolvePaths(path, Extension)
	if err != nil {
		return nil, err
	}

	var (
		records []*objinfo.ObjectInfo
		errs    []error
	)
	for _, file := range files {
		doc, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		recs, err := Decode(ctx, conv, doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
		}
		records = append(records, recs...)
	}
	return records, errors.Join(errs...)
}

// SavePath writes records as one template document.
func SavePath(conv *convert.Converter, path string, records ...*objinfo.ObjectInfo) error {
	doc, err := Encode(conv, records...)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(doc, '\n'), 0o644)
}
