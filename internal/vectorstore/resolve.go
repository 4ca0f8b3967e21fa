package vectorstore

import "github.com/MycelicMemory/mycelicmemory/internal/logging"

var log = logging.GetLogger("vectorstore")

// Resolve picks the dense-vector backend: sqlite-vec when preferNative
// is set and the extension loads cleanly against dbPath, otherwise the
// in-process cosine scan. It never returns an error; a native backend
// that fails to open is logged and the fallback is used instead.
func Resolve(preferNative bool, dbPath string, dimensions int) Store {
	if !preferNative {
		return NewCosineScanStore()
	}

	native, err := OpenNative(dbPath, dimensions)
	if err != nil {
		log.Warn("native vector backend unavailable, falling back to cosine scan", "error", err)
		return NewCosineScanStore()
	}
	return native
}
