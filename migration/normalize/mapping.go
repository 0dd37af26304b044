package normalize

import (
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const rootNodeID = "root"

// nonNumericNodeID ranks ids that are not integers after numeric ids up to a billion.
const nonNumericNodeID = 1_000_000_000

// mappingGraph is the id-indexed node table of a mapping export. Nodes carry an optional
// message and an ordered children list; traversal never follows references without
// consulting the visited set.
type mappingGraph struct {
	keyedNodes
}

func newMappingGraph(mapping gjson.Result) mappingGraph {
	return mappingGraph{keyedNodes: newKeyedNodes(mapping)}
}

func (g mappingGraph) children(id string) []string {
	kids := field(g.nodes[id], "children")
	if !kids.IsArray() {
		return nil
	}
	var out []string
	kids.ForEach(func(_, kid gjson.Result) bool {
		if kid.Type != gjson.Null {
			out = append(out, kid.String())
		}
		return true
	})
	return out
}

// nodeKey orders nodes that are not reached from the root: by message inserted_at, then
// numeric id, then id.
type nodeKey struct {
	ts        timestampKey
	numericID int64
	id        string
}

func (g mappingGraph) sortKey(id string) nodeKey {
	numericID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		numericID = nonNumericNodeID
	}
	return nodeKey{
		ts:        insertedAt(field(g.nodes[id], "message")),
		numericID: numericID,
		id:        id,
	}
}

// insertedAt reads only inserted_at. An empty string still counts as present.
func insertedAt(msg gjson.Result) timestampKey {
	v := field(msg, "inserted_at")
	switch v.Type {
	case gjson.Null:
		return timestampKey{}
	case gjson.Number:
		return timestampKey{present: true, numeric: true, num: v.Num}
	case gjson.String:
		return timestampKey{present: true, str: v.Str}
	default:
		return timestampKey{present: true, str: v.Raw}
	}
}

func (g mappingGraph) sortByKey(ids []string) {
	keys := make(map[string]nodeKey, len(ids))
	for _, id := range ids {
		keys[id] = g.sortKey(id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		ka, kb := keys[a], keys[b]
		if c := ka.ts.compare(kb.ts); c != 0 {
			return c
		}
		if ka.numericID != kb.numericID {
			if ka.numericID < kb.numericID {
				return -1
			}
			return 1
		}
		return strings.Compare(ka.id, kb.id)
	})
}

// seeds returns the ids the traversal starts from: the root's children when a root entry
// exists, otherwise the nodes nobody points at (no child reference, no resolvable parent).
func (g mappingGraph) seeds() []string {
	if _, ok := g.get(rootNodeID); ok {
		return g.children(rootNodeID)
	}

	referenced := make(map[string]struct{}, len(g.ids))
	for _, id := range g.ids {
		for _, kid := range g.children(id) {
			if kid != id {
				referenced[kid] = struct{}{}
			}
		}
	}
	var tops []string
	for _, id := range g.ids {
		if _, ok := referenced[id]; ok {
			continue
		}
		if parent := scalarString(field(g.nodes[id], "parent")); parent != "" {
			if _, ok := g.get(parent); ok {
				continue
			}
		}
		tops = append(tops, id)
	}
	g.sortByKey(tops)
	return tops
}

// OrderNodes returns the deterministic visitation order of a mapping graph: depth-first
// pre-order from the root's children (children in listed order), then from every node still
// unvisited, taken in (inserted_at, numeric id, id) order. Every node present in the mapping is
// returned exactly once; the root entry and dangling child references are never returned.
//
// A mapping with no root entry does not treat every node as an orphan. Traversal starts from
// the nodes no other node references, sorted the same way, so that exports keyed by message
// ids still come out in conversation order rather than in inserted_at order.
func OrderNodes(mapping gjson.Result) []string {
	return newMappingGraph(mapping).order()
}

func (g mappingGraph) order() []string {
	visited := make(map[string]struct{}, len(g.ids))
	order := make([]string, 0, len(g.ids))

	visit := func(start string) {
		stack := []string{start}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, ok := visited[id]; ok {
				continue
			}
			visited[id] = struct{}{}
			if _, ok := g.get(id); ok && id != rootNodeID {
				order = append(order, id)
			}
			kids := g.children(id)
			for i := len(kids) - 1; i >= 0; i-- {
				if _, ok := visited[kids[i]]; !ok {
					stack = append(stack, kids[i])
				}
			}
		}
	}

	for _, id := range g.seeds() {
		visit(id)
	}

	var orphans []string
	for _, id := range g.ids {
		if _, ok := visited[id]; !ok && id != rootNodeID {
			orphans = append(orphans, id)
		}
	}
	g.sortByKey(orphans)
	for _, id := range orphans {
		visit(id)
	}
	return order
}

func turnsFromMapping(mapping gjson.Result) []Turn {
	g := newMappingGraph(mapping)
	var turns []Turn
	for _, id := range g.order() {
		turns = append(turns, TurnsFromMessage(field(g.nodes[id], "message"))...)
	}
	return turns
}
