package callnode

import (
	"encoding/binary"
	"fmt"

	"github.com/stacklens/stacklens/internal/errorutil"
	"github.com/stacklens/stacklens/internal/trace"
)

// Path is an ordered sequence of function indices from the root to a call
// node: a content-addressable identity for the node that survives table
// rebuilds, unlike a raw index.
type Path []int

var errEmptyPath = fmt.Errorf("callnode: %w: call node path must be non-empty", errorutil.ErrDataIntegrity)

// PathForIndex returns the path identifying a call node, by walking prefix
// pointers to the root and reversing.
func PathForIndex(node int, table *Table) Path {
	path := make(Path, 0, table.Depth[node]+1)
	walk := table.Ancestors(node)
	for n, ok := walk.Next(); ok; n, ok = walk.Next() {
		path = append(path, table.Func[n])
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// IndexForPath resolves a path against a call-node table. A path that does
// not exist in this table yields trace.None: resolving a stale path against
// a freshly derived table is legitimate and recoverable. An empty path is
// not; it reports a data integrity error.
func IndexForPath(path Path, table *Table) (int, error) {
	if len(path) == 0 {
		return trace.None, errEmptyPath
	}
	node := trace.None
	for _, fn := range path {
		node = searchChild(table, node, fn)
		if node == trace.None {
			return trace.None, nil
		}
	}
	return node, nil
}

// searchChild finds the child of parent carrying fn. Children always appear
// after their parent by construction order, so the scan starts at parent+1.
func searchChild(table *Table, parent, fn int) int {
	for i := parent + 1; i < table.Length; i++ {
		if table.Prefix[i] == parent && table.Func[i] == fn {
			return i
		}
	}
	return trace.None
}

// PathResolver resolves paths against one Table instance, caching every
// resolved path prefix. The table is immutable once built, so the cache can
// never go stale within the table's lifetime; a rebuilt table requires a new
// resolver. A resolver accumulates cache state through plain writes and must
// not be shared across goroutines.
type PathResolver struct {
	table *Table
	cache map[string]int
}

func NewPathResolver(table *Table) *PathResolver {
	return &PathResolver{table: table, cache: make(map[string]int)}
}

// IndexForPath behaves like the package-level IndexForPath, resolving from
// the deepest already-cached ancestor of the path downward and caching every
// newly resolved prefix on the way.
func (r *PathResolver) IndexForPath(path Path) (int, error) {
	if len(path) == 0 {
		return trace.None, errEmptyPath
	}

	// Cache keys are the raw bytes of each path prefix.
	key := make([]byte, 8*len(path))
	for i, fn := range path {
		binary.LittleEndian.PutUint64(key[8*i:], uint64(fn))
	}

	node := trace.None
	depth := 0
	for depth = len(path); depth > 0; depth-- {
		if cached, exists := r.cache[string(key[:8*depth])]; exists {
			node = cached
			break
		}
	}
	for ; depth < len(path); depth++ {
		node = searchChild(r.table, node, path[depth])
		if node == trace.None {
			return trace.None, nil
		}
		r.cache[string(key[:8*(depth+1)])] = node
	}
	return node, nil
}
