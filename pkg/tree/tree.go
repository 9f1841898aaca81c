// Package tree 将 (id, parentId, sort) 扁平行组装为森林，部门与菜单共用。
package tree

import (
	"cmp"
	"slices"
)

// Node 树节点
type Node[T any] struct {
	Item     T
	Children []*Node[T]
}

// Accessor 描述如何从行中取出 id / parentId / sort
type Accessor[K cmp.Ordered, T any] struct {
	ID       func(T) K
	ParentID func(T) K
	Sort     func(T) int
}

type entry[K cmp.Ordered, T any] struct {
	id     K
	parent K
	sort   int
	item   T
}

// Build 组装森林。
// 父节点为零值或不存在的节点作为根；同级按 sort 升序、id 升序排列。
// 父链成环时，环上排序最靠前的节点被当作根，其余节点挂在它下面，任何输入都不会无限递归。
func Build[K cmp.Ordered, T any](items []T, acc Accessor[K, T]) []*Node[T] {
	var zero K
	entries := make(map[K]*entry[K, T], len(items))
	order := make([]*entry[K, T], 0, len(items))
	for _, it := range items {
		e := &entry[K, T]{id: acc.ID(it), parent: acc.ParentID(it), item: it}
		if acc.Sort != nil {
			e.sort = acc.Sort(it)
		}
		if _, dup := entries[e.id]; dup {
			continue
		}
		entries[e.id] = e
		order = append(order, e)
	}
	slices.SortFunc(order, func(a, b *entry[K, T]) int { return compareEntry(a, b) })

	children := make(map[K][]*entry[K, T])
	var roots []*entry[K, T]
	for _, e := range order {
		if _, ok := entries[e.parent]; !ok || e.parent == zero || e.parent == e.id {
			roots = append(roots, e)
			continue
		}
		children[e.parent] = append(children[e.parent], e)
	}

	attached := make(map[K]bool, len(entries))
	var attach func(e *entry[K, T]) *Node[T]
	attach = func(e *entry[K, T]) *Node[T] {
		attached[e.id] = true
		n := &Node[T]{Item: e.item}
		for _, c := range children[e.id] {
			if attached[c.id] {
				continue
			}
			n.Children = append(n.Children, attach(c))
		}
		return n
	}

	forest := make([]*Node[T], 0, len(roots))
	for _, r := range roots {
		forest = append(forest, attach(r))
	}

	// 剩余未挂载的节点都在环上或挂在环下
	for {
		start := firstUnattached(order, attached)
		if start == nil {
			break
		}
		root := cycleHead(start, entries, attached)
		forest = append(forest, attach(root))
	}

	slices.SortFunc(forest, func(a, b *Node[T]) int {
		return compareEntry(entries[acc.ID(a.Item)], entries[acc.ID(b.Item)])
	})
	return forest
}

func compareEntry[K cmp.Ordered, T any](a, b *entry[K, T]) int {
	if c := cmp.Compare(a.sort, b.sort); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

func firstUnattached[K cmp.Ordered, T any](order []*entry[K, T], attached map[K]bool) *entry[K, T] {
	for _, e := range order {
		if !attached[e.id] {
			return e
		}
	}
	return nil
}

// cycleHead 沿父链上溯直到重复访问，返回环上排序最靠前的节点
func cycleHead[K cmp.Ordered, T any](start *entry[K, T], entries map[K]*entry[K, T], attached map[K]bool) *entry[K, T] {
	seen := map[K]int{}
	path := []*entry[K, T]{}
	cur := start
	for cur != nil && !attached[cur.id] {
		if idx, ok := seen[cur.id]; ok {
			ring := path[idx:]
			head := ring[0]
			for _, e := range ring[1:] {
				if compareEntry(e, head) < 0 {
					head = e
				}
			}
			return head
		}
		seen[cur.id] = len(path)
		path = append(path, cur)
		cur = entries[cur.parent]
	}
	// 未成环（理论上不会发生），直接以起点为根
	return start
}

// Map 将森林转换为其他结构
func Map[T, R any](nodes []*Node[T], fn func(item T, children []R) R) []R {
	out := make([]R, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, fn(n.Item, Map(n.Children, fn)))
	}
	return out
}

// Walk 前序遍历，depth 从 0 开始
func Walk[T any](nodes []*Node[T], fn func(item T, depth int)) {
	var walk func([]*Node[T], int)
	walk = func(ns []*Node[T], depth int) {
		for _, n := range ns {
			fn(n.Item, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)
}

// WouldCreateCycle 判断把 node 的父节点改为 newParent 是否会成环。
// parentOf 返回某节点当前的父节点，不存在时 ok=false。
func WouldCreateCycle[K comparable](parentOf func(K) (K, bool), node, newParent K) bool {
	var zero K
	if newParent == zero {
		return false
	}
	if newParent == node {
		return true
	}
	visited := map[K]bool{}
	cur := newParent
	for cur != zero && !visited[cur] {
		if cur == node {
			return true
		}
		visited[cur] = true
		next, ok := parentOf(cur)
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

// Descendants 返回 root 的所有后代 id（不含 root）
func Descendants[K comparable](childrenOf func(K) []K, root K) []K {
	var out []K
	visited := map[K]bool{root: true}
	queue := []K{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range childrenOf(cur) {
			if visited[c] {
				continue
			}
			visited[c] = true
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}
