package resource

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Scope tells whether a kind lives in a namespace or at cluster level.
type Scope int

const (
	ScopeUnknown Scope = iota
	ScopeNamespaced
	ScopeCluster
)

var namespacedKinds = map[schema.GroupKind]struct{}{
	{Kind: "Pod"}:                       {},
	{Kind: "Service"}:                   {},
	{Kind: "Secret"}:                    {},
	{Kind: "ConfigMap"}:                 {},
	{Kind: "ServiceAccount"}:            {},
	{Kind: "PersistentVolumeClaim"}:     {},
	{Kind: "Endpoints"}:                 {},
	{Kind: "ResourceQuota"}:             {},
	{Kind: "LimitRange"}:                {},
	{Kind: "ReplicationController"}:     {},
	{Group: "apps", Kind: "Deployment"}: {},
	{Group: "apps", Kind: "StatefulSet"}: {},
	{Group: "apps", Kind: "DaemonSet"}:   {},
	{Group: "apps", Kind: "ReplicaSet"}:  {},
	{Group: "batch", Kind: "Job"}:        {},
	{Group: "batch", Kind: "CronJob"}:    {},
	{Group: "rbac.authorization.k8s.io", Kind: "Role"}:        {},
	{Group: "rbac.authorization.k8s.io", Kind: "RoleBinding"}: {},
	{Group: "networking.k8s.io", Kind: "Ingress"}:             {},
	{Group: "networking.k8s.io", Kind: "NetworkPolicy"}:       {},
	{Group: "policy", Kind: "PodDisruptionBudget"}:            {},
	{Group: "autoscaling", Kind: "HorizontalPodAutoscaler"}:   {},
}

var clusterKinds = map[schema.GroupKind]struct{}{
	{Kind: "Namespace"}:        {},
	{Kind: "Node"}:             {},
	{Kind: "PersistentVolume"}: {},
	{Group: "rbac.authorization.k8s.io", Kind: "ClusterRole"}:        {},
	{Group: "rbac.authorization.k8s.io", Kind: "ClusterRoleBinding"}: {},
	{Group: "apiextensions.k8s.io", Kind: "CustomResourceDefinition"}: {},
	{Group: "storage.k8s.io", Kind: "StorageClass"}:                   {},
	{Group: "scheduling.k8s.io", Kind: "PriorityClass"}:               {},
	{Group: "admissionregistration.k8s.io", Kind: "ValidatingWebhookConfiguration"}: {},
	{Group: "admissionregistration.k8s.io", Kind: "MutatingWebhookConfiguration"}:   {},
	{Group: "apiregistration.k8s.io", Kind: "APIService"}:                           {},
}

// ScopeFor classifies a group/kind against the tables of recognized kinds.
// Kinds served by CRDs we have no knowledge of come back as ScopeUnknown;
// callers decide whether that is an error.
func ScopeFor(gk schema.GroupKind) Scope {
	if _, ok := namespacedKinds[gk]; ok {
		return ScopeNamespaced
	}
	if _, ok := clusterKinds[gk]; ok {
		return ScopeCluster
	}
	return ScopeUnknown
}
