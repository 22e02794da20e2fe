// Package order sequences heterogeneous resource batches so that referenced
// kinds are applied before the kinds referencing them, and deleted in the
// opposite direction.
package order

import (
	"sort"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// unknownRank is assigned to every kind without an explicit entry in the
// table: applied last, deleted first.
const unknownRank = 1000

var kindRanks = map[string]int{
	"CustomResourceDefinition": 10,
	"Namespace":                20,
	"Secret":                   30,
	"ServiceAccount":           30,
	"PersistentVolume":         30,
	"PersistentVolumeClaim":    30,
	"ConfigMap":                30,
	"Role":                     40,
	"ClusterRole":              40,
	"RoleBinding":              50,
	"ClusterRoleBinding":       50,
}

// Rank returns the apply priority for a kind. Lower ranks are applied first.
func Rank(kind string) int {
	if r, ok := kindRanks[kind]; ok {
		return r
	}
	return unknownRank
}

// Sort returns a new slice ordered by kind rank, ascending for apply order.
// With reverse set it produces delete order, a genuine descending sort:
// resources sharing a rank keep their relative input order either way.
func Sort(resources []*unstructured.Unstructured, reverse bool) []*unstructured.Unstructured {
	sorted := make([]*unstructured.Unstructured, len(resources))
	copy(sorted, resources)
	sort.SliceStable(sorted, func(i, j int) bool {
		if reverse {
			return Rank(sorted[i].GetKind()) > Rank(sorted[j].GetKind())
		}
		return Rank(sorted[i].GetKind()) < Rank(sorted[j].GetKind())
	})
	return sorted
}
