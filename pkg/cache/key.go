package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const exportKind = "export"

// ExportOpts are the render options that change the exported bytes.
type ExportOpts struct {
	Format     string
	Scale      float64
	Background string
}

// Keyer builds cache keys. Scope is prepended to every key so several
// consumers can share one directory.
type Keyer struct {
	Scope string
}

// ExportKey returns "<scope>export:<sha256>" over the serialized drawing
// and the export options. Format and background are compared case
// insensitively.
func (k Keyer) ExportKey(doc []byte, opts ExportOpts) string {
	h := sha256.New()
	h.Write(doc)
	fmt.Fprintf(h, "\x00%s\x00%g\x00%s",
		strings.ToLower(opts.Format), opts.Scale, strings.ToLower(strings.TrimSpace(opts.Background)))
	return k.Scope + exportKind + ":" + hex.EncodeToString(h.Sum(nil))
}

// kind returns the key type between the scope and the hash, for hooks.
func kind(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return "unknown"
	}
	rest := key[:i]
	if j := strings.LastIndexByte(rest, ':'); j >= 0 {
		rest = rest[j+1:]
	}
	return rest
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
