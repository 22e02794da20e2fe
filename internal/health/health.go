// Package health derives a ranked readiness verdict for the resources a
// reconciliation run manages. Checks are shallow on purpose: existence for
// every kind, replica readiness for stateful workloads, nothing deeper.
package health

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/nais/konvergator/internal/cluster"
	"github.com/nais/konvergator/internal/resource"
)

// StatusError is a health finding for a single resource, carrying the verdict
// it contributes to the aggregate.
type StatusError struct {
	Resource resource.Identity
	Verdict  Verdict
	message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource.String(), e.message)
}

// NotFound reports a resource that should exist but does not. The resource is
// expected to have been applied already, so this is Blocked rather than a
// transient condition.
func NotFound(id resource.Identity) *StatusError {
	return &StatusError{Resource: id, Verdict: VerdictBlocked, message: "resource not found"}
}

// ReplicasNotReady reports a stateful workload that exists but has not reached
// its desired replica count. Recoverable by waiting.
func ReplicasNotReady(id resource.Identity, ready, want int64) *StatusError {
	return &StatusError{
		Resource: id,
		Verdict:  VerdictWaiting,
		message:  fmt.Sprintf("%d of %d replicas ready", ready, want),
	}
}

// Check probes a single resource. It returns a StatusError when the resource
// is unhealthy, nil when healthy. Transport failures other than not-found are
// returned as the second value and carry no verdict.
func Check(ctx context.Context, c cluster.Client, obj *unstructured.Unstructured) (*StatusError, error) {
	id := resource.IdentityOf(obj)

	found, err := c.Get(ctx, id.GroupVersionKind(), id.Name, id.Namespace)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return NotFound(id), nil
		}
		return nil, err
	}

	if id.Group == "apps" && id.Kind == "StatefulSet" {
		return checkStatefulSet(id, found), nil
	}

	// All other kinds count as healthy once they exist.
	return nil, nil
}

func checkStatefulSet(id resource.Identity, obj *unstructured.Unstructured) *StatusError {
	want, ok, err := unstructured.NestedInt64(obj.Object, "spec", "replicas")
	if err != nil || !ok {
		// Replicas defaults to 1 when unset.
		want = 1
	}
	ready, _, err := unstructured.NestedInt64(obj.Object, "status", "readyReplicas")
	if err != nil {
		ready = 0
	}
	if ready != want {
		return ReplicasNotReady(id, ready, want)
	}
	return nil
}

// Aggregate merges per-resource findings into one verdict. ok is true iff
// every entry is nil. worst is the first entry carrying the globally worst
// verdict, so ties break deterministically towards input order.
func Aggregate(errors []*StatusError) (ok bool, worst *StatusError) {
	for _, e := range errors {
		if e == nil {
			continue
		}
		if worst == nil || e.Verdict.Worse(worst.Verdict) {
			worst = e
		}
	}
	return worst == nil, worst
}
