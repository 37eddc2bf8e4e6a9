package trace

import (
	"net/url"

	"github.com/rs/zerolog/log"
)

// Resource types, matching the origin kinds a function can belong to.
const (
	ResourceTypeLibrary = "library"
	ResourceTypeWebhost = "webhost"
	ResourceTypeURL     = "url"
)

// ResourceTable describes the libraries and web origins functions belong to.
// It is the only table that grows after construction, and only through
// GetOrCreateForOrigin.
type ResourceTable struct {
	Name   []string `json:"name"`
	Host   []string `json:"host"`
	Type   []string `json:"type"`
	Length int      `json:"length"`
}

func (rt *ResourceTable) append(name, host, typ string) int {
	rt.Name = append(rt.Name, name)
	rt.Host = append(rt.Host, host)
	rt.Type = append(rt.Type, typ)
	rt.Length++
	return rt.Length - 1
}

// AttachURLResources synthesizes a webhost resource for every function that
// has none but carries a URL file name, deduplicating by origin. This is a
// construction-time normalization: the producer calls it before publishing
// the thread, after which all tables are immutable.
func (t *Thread) AttachURLResources() {
	originToResource := make(map[string]int, t.Resources.Length)
	for i := 0; i < t.Funcs.Length; i++ {
		if t.Funcs.Resource[i] != None || t.Funcs.FileName[i] == "" {
			continue
		}
		t.Funcs.Resource[i] = t.Resources.GetOrCreateForOrigin(t.Funcs.FileName[i], originToResource)
	}
}

// GetOrCreateForOrigin returns the resource describing the page origin a URL
// belongs to, inserting it when the origin was not seen before. Distinct URLs
// on the same scheme and host share one resource. originToResource is owned
// by the caller and deduplicates insertions across calls; it is only valid
// for this table. A string that does not parse as a URL yields None.
func (rt *ResourceTable) GetOrCreateForOrigin(origin string, originToResource map[string]int) int {
	if index, exists := originToResource[origin]; exists {
		return index
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		log.Debug().Str("origin", origin).Msg("origin is not a parsable URL, no resource synthesized")
		originToResource[origin] = None
		return None
	}
	originKey := u.Scheme + "://" + u.Host
	index, exists := originToResource[originKey]
	if !exists {
		index = rt.append(u.Host, u.Host, ResourceTypeWebhost)
		originToResource[originKey] = index
	}
	originToResource[origin] = index
	return index
}
