// Package graph holds the cycle checks for the two task graphs of a project:
// the parent/child hierarchy (one parent pointer per task) and the
// depends-on digraph (explicit edges). Both checks are iterative and work on
// plain in-memory views so they can be tested without storage.
package graph

// ParentView maps a task id to its parent id. Root tasks are absent or map to "".
type ParentView map[string]string

// DependencyView maps a task id to the ids it depends on.
type DependencyView map[string][]string

// HierarchyCycle reports whether making parentID the parent of taskID would
// make taskID its own ancestor. It walks upward from parentID following
// parent links and stops at a root or an already visited node.
func HierarchyCycle(parents ParentView, taskID, parentID string) bool {
	if parentID == "" {
		return false
	}
	if taskID == parentID {
		return true
	}

	visited := make(map[string]struct{}, len(parents))
	for cur := parentID; cur != ""; cur = parents[cur] {
		if cur == taskID {
			return true
		}
		if _, seen := visited[cur]; seen {
			// pre-existing loop that does not involve taskID
			return false
		}
		visited[cur] = struct{}{}
	}
	return false
}

// DependencyCycle reports whether adding the edge taskID -> dependsOnID would
// close a cycle, i.e. whether dependsOnID already reaches taskID through
// depends-on edges. Traversal is a depth-first walk with an explicit stack.
func DependencyCycle(deps DependencyView, taskID, dependsOnID string) bool {
	if taskID == dependsOnID {
		return true
	}

	visited := map[string]struct{}{dependsOnID: {}}
	stack := []string{dependsOnID}
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]

		for _, next := range deps[cur] {
			if next == taskID {
				return true
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			stack = append(stack, next)
		}
	}
	return false
}

// Ancestors returns the parent chain of taskID, nearest first. A loop in the
// view ends the walk at the first repeated node.
func Ancestors(parents ParentView, taskID string) []string {
	var out []string
	visited := map[string]struct{}{taskID: {}}
	for cur := parents[taskID]; cur != ""; cur = parents[cur] {
		if _, seen := visited[cur]; seen {
			break
		}
		visited[cur] = struct{}{}
		out = append(out, cur)
	}
	return out
}

// Descendants returns every task below taskID in the hierarchy, breadth first.
func Descendants(parents ParentView, taskID string) []string {
	children := make(map[string][]string, len(parents))
	for child, parent := range parents {
		if parent != "" {
			children[parent] = append(children[parent], child)
		}
	}

	var out []string
	visited := map[string]struct{}{taskID: {}}
	queue := []string{taskID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if _, seen := visited[c]; seen {
				continue
			}
			visited[c] = struct{}{}
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}

// HasDependencyCycle reports whether the view already contains a cycle.
// Used to audit stored graphs, since concurrent writers are not serialized.
func HasDependencyCycle(deps DependencyView) bool {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(deps))

	type frame struct {
		node string
		next int
	}

	for start := range deps {
		if color[start] != white {
			continue
		}
		stack := []frame{{node: start}}
		color[start] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := deps[top.node]
			if top.next >= len(edges) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			v := edges[top.next]
			top.next++
			switch color[v] {
			case gray:
				return true
			case white:
				color[v] = gray
				stack = append(stack, frame{node: v})
			}
		}
	}
	return false
}
