// Package loader reads workload inputs from disk: image and PDF targets
// with pre-encoded request payloads, and optional reference texts for
// accuracy scoring.
package loader

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ocrbench/ocrbench/internal/config"
)

// Kind distinguishes single-image targets from multi-page documents.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

// Wire values for the service's fileType flag.
const (
	fileTypeImage    = 1
	fileTypeDocument = 0
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
}

// Target is one workload unit: a named input with its request body encoded
// once at load time. Targets are read-only and shared across all workers.
type Target struct {
	Name    string
	Kind    Kind
	Payload []byte
	SizeMB  float64
}

// Load reads targets from the configured image and PDF directories. A
// missing directory is skipped, matching the tolerance of the service's own
// tooling; an empty result is the caller's problem to reject.
func Load(data config.DataConfig, params config.OCRParams) ([]Target, error) {
	var targets []Target

	if data.ImagesDir != "" {
		loaded, err := loadDir(data.ImagesDir, KindImage, params)
		if err != nil {
			return nil, err
		}
		targets = append(targets, loaded...)
	}
	if data.PDFsDir != "" {
		loaded, err := loadDir(data.PDFsDir, KindDocument, params)
		if err != nil {
			return nil, err
		}
		targets = append(targets, loaded...)
	}

	if data.MaxTargets > 0 && len(targets) > data.MaxTargets {
		targets = targets[:data.MaxTargets]
	}
	if data.Shuffle {
		rand.Shuffle(len(targets), func(i, j int) {
			targets[i], targets[j] = targets[j], targets[i]
		})
	}
	return targets, nil
}

func loadDir(dir string, kind Kind, params config.OCRParams) ([]Target, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		switch kind {
		case KindImage:
			if imageExtensions[ext] {
				names = append(names, entry.Name())
			}
		case KindDocument:
			if ext == ".pdf" {
				names = append(names, entry.Name())
			}
		}
	}
	sort.Strings(names)

	targets := make([]Target, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		payload, err := encodeBody(base64.StdEncoding.EncodeToString(raw), kind, params)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}

		targets = append(targets, Target{
			Name:    name,
			Kind:    kind,
			Payload: payload,
			SizeMB:  float64(len(raw)) / (1024 * 1024),
		})
	}
	return targets, nil
}

// encodeBody serializes the request body the service expects: the base64
// file plus the OCR option flags, with fileType derived from the kind.
func encodeBody(fileBase64 string, kind Kind, params config.OCRParams) ([]byte, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	body := map[string]any{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}

	body["file"] = fileBase64
	if kind == KindDocument {
		body["fileType"] = fileTypeDocument
	} else {
		body["fileType"] = fileTypeImage
	}
	return json.Marshal(body)
}

// EncodeBody builds a request payload for an ad-hoc input, used for warmup
// requests that reuse the first target's file.
func EncodeBody(fileBase64 string, kind Kind, params config.OCRParams) ([]byte, error) {
	return encodeBody(fileBase64, kind, params)
}
