// Package engine converges cluster state to a desired set of resources
// rendered from templates: render, diff against what exists, delete orphans,
// apply the desired set, and derive a health verdict from the result.
package engine

import (
	"context"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/nais/konvergator/internal/cluster"
	"github.com/nais/konvergator/internal/health"
	"github.com/nais/konvergator/internal/render"
	"github.com/nais/konvergator/internal/resource"
	"github.com/nais/konvergator/internal/resource/diff"
)

const defaultFieldManager = "konvergator"

// Options tune an Engine at construction time.
type Options struct {
	// FieldManager is the server-side apply owner identity.
	// Defaults to "konvergator".
	FieldManager string

	// Force reacquires fields owned by other managers on apply. Used to
	// recover from ownership conflicts.
	Force bool
}

// Engine reconciles a desired set of rendered resources against the cluster.
//
// The engine does no internal locking: callers must serialize invocations
// against the same label/kind scope. Concurrent Reconcile calls race between
// reading deployed resources and the following delete/apply; that window is a
// documented limitation, not something the engine papers over.
type Engine struct {
	client       cluster.Client
	renderer     render.Renderer
	fieldManager string
	force        bool

	templates []string
	context   map[string]any
	labels    map[string]string
	kinds     []schema.GroupVersionKind

	// manifests caches the last render; nil means dirty. Every input
	// mutator resets it in the same step as the write.
	manifests []*unstructured.Unstructured
}

func New(c cluster.Client, r render.Renderer, opts Options) *Engine {
	if opts.FieldManager == "" {
		opts.FieldManager = defaultFieldManager
	}
	return &Engine{
		client:       c,
		renderer:     r,
		fieldManager: opts.FieldManager,
		force:        opts.Force,
	}
}

// SetTemplates replaces the template reference list and invalidates the
// manifest cache.
func (e *Engine) SetTemplates(templates []string) {
	e.templates = templates
	e.manifests = nil
}

// SetContext replaces the render context and invalidates the manifest cache.
func (e *Engine) SetContext(context map[string]any) {
	e.context = context
	e.manifests = nil
}

// SetLabels replaces the labels injected into every managed resource and used
// to find them again, and invalidates the manifest cache.
func (e *Engine) SetLabels(labels map[string]string) {
	e.labels = labels
	e.manifests = nil
}

// SetKinds replaces the set of kinds the engine is permitted to manage and
// invalidates the manifest cache.
func (e *Engine) SetKinds(kinds []schema.GroupVersionKind) {
	e.kinds = kinds
	e.manifests = nil
}

// Render produces the desired resource set from the configured templates and
// context, with the managed labels injected into every object. The result is
// cached until an input changes; forceRecompute bypasses the cache. The
// returned slice is the caller's to reorder or truncate, but the objects in it
// are shared with the cache and must be treated as read-only.
func (e *Engine) Render(ctx context.Context, forceRecompute bool) ([]*unstructured.Unstructured, error) {
	if len(e.templates) == 0 {
		return nil, validationErrorf("no templates configured")
	}
	if e.context == nil {
		return nil, validationErrorf("no render context configured")
	}

	if e.manifests != nil && !forceRecompute {
		return append([]*unstructured.Unstructured(nil), e.manifests...), nil
	}

	var manifests []*unstructured.Unstructured
	for _, name := range e.templates {
		text, err := e.renderer.Render(name, e.context)
		if err != nil {
			return nil, err
		}
		resources, err := render.ParseMulti(text)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, resources...)
	}

	for _, obj := range manifests {
		resource.InjectLabels(obj, e.labels)
	}

	e.manifests = manifests
	return append([]*unstructured.Unstructured(nil), manifests...), nil
}

// Apply renders the desired set and applies it in order. It never deletes
// anything, even across repeated calls with a shrinking desired set; full
// convergence requires Reconcile.
func (e *Engine) Apply(ctx context.Context) ([]*unstructured.Unstructured, error) {
	desired, err := e.Render(ctx, false)
	if err != nil {
		return nil, err
	}
	if err := e.validateKinds(desired); err != nil {
		return nil, err
	}
	return ApplyAll(ctx, e.client, desired, e.fieldManager, e.force)
}

// Delete removes every resource in the cluster matching the managed labels
// and kinds, best effort.
func (e *Engine) Delete(ctx context.Context) error {
	if err := e.guardScoped(); err != nil {
		return err
	}
	existing, err := e.deployedResources(ctx)
	if err != nil {
		return err
	}
	return DeleteAll(ctx, e.client, existing, true)
}

// Reconcile converges cluster state to exactly the desired set: orphans
// matching the managed labels and kinds but absent from the rendered set are
// deleted, then the desired set is applied.
func (e *Engine) Reconcile(ctx context.Context) error {
	if err := e.guardScoped(); err != nil {
		return err
	}

	existing, err := e.deployedResources(ctx)
	if err != nil {
		return err
	}
	desired, err := e.Render(ctx, false)
	if err != nil {
		return err
	}

	changes := diff.Compute(logf.FromContext(ctx), desired, existing)
	if err := DeleteAll(ctx, e.client, changes.ToDelete, true); err != nil {
		return err
	}

	_, err = e.Apply(ctx)
	return err
}

// Health is the outcome of a health computation: the aggregate verdict, the
// first-worst finding behind it, and every finding for logging.
type Health struct {
	Verdict  health.Verdict
	Worst    *health.StatusError
	Findings []*health.StatusError
}

// ComputeHealth checks every rendered resource and aggregates the findings
// into one verdict, worst-first with ties broken by input order.
func (e *Engine) ComputeHealth(ctx context.Context) (Health, error) {
	desired, err := e.Render(ctx, false)
	if err != nil {
		return Health{Verdict: health.VerdictUnknown}, err
	}

	findings := make([]*health.StatusError, 0, len(desired))
	for _, obj := range desired {
		finding, err := health.Check(ctx, e.client, obj)
		if err != nil {
			return Health{Verdict: health.VerdictUnknown}, err
		}
		findings = append(findings, finding)
	}

	ok, worst := health.Aggregate(findings)
	if ok {
		return Health{Verdict: health.VerdictActive, Findings: findings}, nil
	}
	return Health{Verdict: worst.Verdict, Worst: worst, Findings: findings}, nil
}

// guardScoped rejects delete-capable operations unless both a label selector
// and a kind set are configured. Undirected deletion across the cluster is
// forbidden.
func (e *Engine) guardScoped() error {
	if len(e.labels) == 0 || len(e.kinds) == 0 {
		return validationErrorf("refusing to operate without both a label selector and a set of managed resource kinds")
	}
	return nil
}

// deployedResources lists everything in the cluster this engine manages:
// every configured kind, filtered by the managed labels, across all
// namespaces for namespaced kinds.
func (e *Engine) deployedResources(ctx context.Context) ([]*unstructured.Unstructured, error) {
	var existing []*unstructured.Unstructured
	for _, gvk := range e.kinds {
		items, err := e.client.List(ctx, gvk, "", e.labels)
		if err != nil {
			return nil, err
		}
		for i := range items {
			existing = append(existing, &items[i])
		}
	}
	return existing, nil
}

// validateKinds fails fast when the rendered set contains a kind outside the
// configured kind set.
func (e *Engine) validateKinds(resources []*unstructured.Unstructured) error {
	if len(e.kinds) == 0 {
		return validationErrorf("no resource kinds configured")
	}
	allowed := make(map[schema.GroupVersionKind]struct{}, len(e.kinds))
	for _, gvk := range e.kinds {
		allowed[gvk] = struct{}{}
	}
	for _, obj := range resources {
		if _, ok := allowed[obj.GroupVersionKind()]; !ok {
			return validationErrorf("rendered resource %s has a kind outside the managed set", resource.IdentityOf(obj).String())
		}
	}
	return nil
}
