package scenery

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// AssetURLPrefix is the URL root every normalized asset path is served under.
const AssetURLPrefix = "assets/"

const assetsMarker = "/assets/"

var separatorReplacer = strings.NewReplacer("/", "_", "\\", "_")

// NormalizePath canonicalizes an opaque storage path into a loader-relative
// path. It never fails; identical inputs always yield identical outputs.
func NormalizePath(storagePath string) string {
	if i := strings.LastIndex(storagePath, assetsMarker); i >= 0 {
		return storagePath[i+len(assetsMarker):]
	}

	segments := strings.Split(storagePath, "/")
	for i, seg := range segments {
		if seg == "projects" && len(segments)-i-1 >= 2 {
			return strings.Join(segments[i+2:], "/")
		}
	}

	if base := segments[len(segments)-1]; base != "" {
		return base
	}
	return separatorReplacer.Replace(storagePath)
}

// AssetURL is the URL the asset loader receives for a storage path.
func AssetURL(storagePath string) string {
	return AssetURLPrefix + NormalizePath(storagePath)
}

// SplitModelURL splits an asset URL into the root URL (with trailing slash)
// and file name a model loader expects.
func SplitModelURL(url string) (rootURL, filename string) {
	dir, file := path.Split(url)
	return dir, file
}

// TextureBaseName extracts the comparable file name of a texture source: the
// query and fragment are dropped, the last path segment is kept and an
// uploader's UUID prefix is removed.
func TextureBaseName(source string) string {
	name := source
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	return stripUUIDPrefix(name)
}

func stripUUIDPrefix(name string) string {
	const uuidLen = 36
	if len(name) <= uuidLen {
		return name
	}
	if _, err := uuid.Parse(name[:uuidLen]); err != nil {
		return name
	}
	rest := name[uuidLen:]
	if rest[0] == '_' || rest[0] == '-' {
		rest = rest[1:]
	}
	if rest == "" {
		return name
	}
	return rest
}

// isEmbeddedTexture reports whether a texture source points inside its
// container file (e.g. "scene.glb#image0").
func isEmbeddedTexture(source string) bool {
	return strings.Contains(source, "#")
}
