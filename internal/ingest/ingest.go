// Package ingest owns indicator extraction from local artifacts.
//
// Ownership boundary:
// - regex indicator table (ipv4, email, url, domain, hashes)
// - artifact hashing and mime guessing
// - merge/cap helpers over extracted indicator sets
package ingest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

const maxIndicatorsPerType = 500

var indicatorPatterns = map[string]*regexp.Regexp{
	"ipv4":   regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1?\d?\d)\.){3}(?:25[0-5]|2[0-4]\d|1?\d?\d)\b`),
	"email":  regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	"url":    regexp.MustCompile(`\bhttps?://[\w\-.]+(?::[0-9]+)?(?:/[\w\-./#%?=&+]*)?`),
	"domain": regexp.MustCompile(`\b(?:[A-Za-z0-9-]*[A-Za-z-][A-Za-z0-9-]*\.)+[A-Za-z]{2,}\b`),
	"sha256": regexp.MustCompile(`\b[A-Fa-f0-9]{64}\b`),
	"sha1":   regexp.MustCompile(`\b[A-Fa-f0-9]{40}\b`),
	"md5":    regexp.MustCompile(`\b[A-Fa-f0-9]{32}\b`),
}

// Digest holds the content hashes of one analyzed artifact.
type Digest struct {
	MD5    string `json:"md5"`
	SHA1   string `json:"sha1"`
	SHA256 string `json:"sha256"`
}

// Analysis is the result of analyzing one path.
type Analysis struct {
	Path       string              `json:"path"`
	Exists     bool                `json:"exists"`
	Size       int64               `json:"size,omitempty"`
	MimeGuess  string              `json:"mime_guess,omitempty"`
	Digest     *Digest             `json:"hash,omitempty"`
	Indicators map[string][]string `json:"iocs,omitempty"`
}

// IndicatorCount sums extracted indicators across types.
func (a Analysis) IndicatorCount() int {
	total := 0
	for _, vals := range a.Indicators {
		total += len(vals)
	}
	return total
}

// AnalyzePath hashes one file and extracts indicators from its text.
// A missing path is a normal result with Exists=false, not an error.
func AnalyzePath(path string) (Analysis, error) {
	out := Analysis{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return out, err
	}
	out.Exists = true
	out.Size = info.Size()

	out.MimeGuess = mime.TypeByExtension(filepath.Ext(path))
	if out.MimeGuess == "" {
		out.MimeGuess = "application/octet-stream"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	out.Digest = hashBytes(data)
	out.Indicators = ExtractIndicators(string(data))
	return out, nil
}

// ExtractIndicators runs the indicator regex table over text, deduplicating
// and capping matches per type.
func ExtractIndicators(text string) map[string][]string {
	found := map[string][]string{}
	for typ, pattern := range indicatorPatterns {
		matches := pattern.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		unique := dedupeSorted(matches)
		if len(unique) > maxIndicatorsPerType {
			unique = unique[:maxIndicatorsPerType]
		}
		found[typ] = unique
	}
	return found
}

func hashBytes(data []byte) *Digest {
	md5sum := md5.Sum(data)
	sha1sum := sha1.Sum(data)
	sha256sum := sha256.Sum256(data)
	return &Digest{
		MD5:    hex.EncodeToString(md5sum[:]),
		SHA1:   hex.EncodeToString(sha1sum[:]),
		SHA256: hex.EncodeToString(sha256sum[:]),
	}
}

func dedupeSorted(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
