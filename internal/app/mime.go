package app

import (
	"log/slog"
	"mime"
	"sort"
)

// staticTypes covers the assets under web/static and the dashboard export.
// Minimal container images often ship without /etc/mime.types.
var staticTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".csv":  "text/csv; charset=utf-8",
	".json": "application/json",
}

func init() {
	registerMimeTypes(slog.Default(), staticTypes)
}

// registerMimeTypes adds the types the host tables lack and returns the
// extensions it registered.
func registerMimeTypes(logger *slog.Logger, types map[string]string) []string {
	exts := make([]string, 0, len(types))
	for ext := range types {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	var added []string
	for _, ext := range exts {
		if mime.TypeByExtension(ext) != "" {
			continue
		}
		if err := mime.AddExtensionType(ext, types[ext]); err != nil {
			logger.Warn("register mime type", slog.String("ext", ext), slog.Any("error", err))
			continue
		}
		added = append(added, ext)
	}
	return added
}
