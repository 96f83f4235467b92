package server

import (
	"embed"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
)

//go:embed static/*
var staticFiles embed.FS

// assets is the embedded static tree rooted at static/.
var assets = mustSub(staticFiles, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("static assets: " + err.Error())
	}
	return sub
}

// StreamAsset writes the embedded asset at name. Only plain file names inside
// an asset directory are accepted.
func StreamAsset(w http.ResponseWriter, dir, name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid asset name %q", name)
	}

	assetPath := path.Join(dir, name)
	data, err := fs.ReadFile(assets, assetPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", assetPath, err)
	}

	ctype := mime.TypeByExtension(path.Ext(name))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(strings.ToLower(ctype), "charset=") {
		ctype += "; charset=utf-8"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Cache-Control", "public, max-age=300, must-revalidate")
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", assetPath, err)
	}
	return nil
}
