// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package filestore

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
)

// Handler serves stored files read-only through the backend.
//
// It expects the public prefix to be stripped already, i.e. the request path is the key.
// Disk deployments may mount http.FileServer on the root directory instead.
func (store *Store) Handler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodGet && request.Method != http.MethodHead {
			writer.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		key, err := store.KeyFromURL(store.URL(strings.TrimPrefix(request.URL.Path, "/")))
		if err != nil {
			http.NotFound(writer, request)
			return
		}

		data, err := store.Read(request.Context(), key)
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(writer, request)
			return
		}
		if err != nil {
			http.Error(writer, "storage unavailable", http.StatusBadGateway)
			return
		}

		if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
			writer.Header().Set("Content-Type", contentType)
		}
		writer.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		_, _ = writer.Write(data)
	})
}
