package store

import (
	"path/filepath"
	"strings"
)

// shardWidths splits an identifier into directory segments. The last
// segment (the remainder) is the file name.
var shardWidths = []int{2, 2, 3}

// shardSegments splits id into its path segments, dropping empty ones so
// short prefixes produce short paths.
func shardSegments(id string) []string {
	segments := make([]string, 0, len(shardWidths)+1)
	rest := id
	for _, w := range shardWidths {
		if len(rest) <= w {
			break
		}
		segments = append(segments, rest[:w])
		rest = rest[w:]
	}
	if rest != "" {
		segments = append(segments, rest)
	}
	return segments
}

// shardPath joins dir with the shard segments of id. id must already be
// validated; that is what keeps the result inside dir.
func shardPath(dir, id string) string {
	return filepath.Join(append([]string{dir}, shardSegments(id)...)...)
}

// unshard reverses shardPath for a path found under dir.
func unshard(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(rel, string(filepath.Separator), "")
}
