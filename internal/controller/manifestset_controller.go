package controller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	core_v1 "k8s.io/api/core/v1"
	apimeta "k8s.io/apimachinery/pkg/api/meta"
	meta_v1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/utils/ptr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/yaml"

	"github.com/nais/konvergator/api/v1alpha1"
	"github.com/nais/konvergator/internal/cluster"
	"github.com/nais/konvergator/internal/config"
	"github.com/nais/konvergator/internal/engine"
	"github.com/nais/konvergator/internal/events"
	"github.com/nais/konvergator/internal/health"
	"github.com/nais/konvergator/internal/metrics"
	"github.com/nais/konvergator/internal/render"
)

const (
	finalizer  = "manifestset.konvergator.nais.io"
	ownerLabel = "konvergator.nais.io/owner"

	readyCondition = "Ready"
)

// ManifestSetReconciler keeps the resources declared by a ManifestSet
// converged, and maps the engine's health verdict onto the object's status.
type ManifestSetReconciler struct {
	Client client.Client
	Scheme *runtime.Scheme
	Config *config.Config

	Recorder events.Recorder

	// ClusterClient overrides the cluster boundary; tests inject fakes
	// here. Defaults to a wrapper around Client.
	ClusterClient cluster.Client
}

func (r *ManifestSetReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	logger := logf.FromContext(ctx)

	set := &v1alpha1.ManifestSet{}
	if err := r.Client.Get(ctx, req.NamespacedName, set); err != nil {
		// Not-found can't be fixed by a requeue; we'll be notified again.
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	metrics.ReconcileTotal.WithLabelValues("manifestset").Inc()
	timer := prometheus.NewTimer(metrics.ReconcileDuration.WithLabelValues("manifestset"))
	defer timer.ObserveDuration()

	status := &set.Status
	status.ReconcileTime = ptr.To(meta_v1.NewTime(time.Now()))
	status.ObservedGeneration = set.GetGeneration()
	updateStatus := func() {
		if err := r.Client.Status().Update(ctx, set); err != nil {
			logger.Error(err, "failed to update status")
		}
	}

	defer updateStatus()

	if set.GetDeletionTimestamp() != nil {
		return r.finalize(ctx, set)
	}

	if controllerutil.AddFinalizer(set, finalizer) {
		if err := r.Client.Update(ctx, set); err != nil {
			logger.Error(err, "failed to add finalizer")
			return ctrl.Result{}, err
		}
	}

	eng, err := r.newEngine(set)
	if err != nil {
		return r.invalid(set, "Prepare", err)
	}

	status.ReconcilePhase = "Reconciling"
	updateStatus()
	if err := eng.Reconcile(ctx); err != nil {
		var validation *engine.ValidationError
		if errors.As(err, &validation) {
			return r.invalid(set, "Reconcile", err)
		}
		metrics.ReconcileErrors.WithLabelValues("manifestset").Inc()
		r.Recorder.RecordErrorEvent(set, "Reconcile", err)
		logger.Error(err, "failed to reconcile resources")
		return ctrl.Result{}, err
	}

	status.ReconcilePhase = "CheckingHealth"
	updateStatus()
	computed, err := eng.ComputeHealth(ctx)
	if err != nil {
		metrics.ReconcileErrors.WithLabelValues("manifestset").Inc()
		logger.Error(err, "failed to compute health")
		return ctrl.Result{}, err
	}

	status.ReconcilePhase = "Done"
	status.Verdict = computed.Verdict.String()
	status.Message = ""
	ready := meta_v1.ConditionTrue
	reason := "Converged"
	if computed.Worst != nil {
		status.Message = computed.Worst.Error()
		ready = meta_v1.ConditionFalse
		reason = "ResourcesNotReady"
	}
	if status.Conditions == nil {
		status.Conditions = []meta_v1.Condition{}
	}
	apimeta.SetStatusCondition(&status.Conditions, meta_v1.Condition{
		Type:               readyCondition,
		Status:             ready,
		Reason:             reason,
		Message:            status.Message,
		ObservedGeneration: set.GetGeneration(),
	})

	metrics.ReconcileSuccess.WithLabelValues("manifestset").Inc()
	metrics.HealthVerdicts.WithLabelValues(computed.Verdict.String()).Inc()

	if computed.Verdict != health.VerdictActive {
		return ctrl.Result{RequeueAfter: 30 * time.Second}, nil
	}
	return ctrl.Result{RequeueAfter: r.Config.ResyncInterval}, nil
}

// finalize tears down every managed resource before releasing the object.
func (r *ManifestSetReconciler) finalize(ctx context.Context, set *v1alpha1.ManifestSet) (ctrl.Result, error) {
	logger := logf.FromContext(ctx)

	if !controllerutil.ContainsFinalizer(set, finalizer) {
		return ctrl.Result{}, nil
	}

	eng, err := r.newEngine(set)
	if err != nil {
		// A broken spec must not wedge deletion; release the finalizer.
		logger.Error(err, "skipping resource teardown for invalid spec")
	} else if err := eng.Delete(ctx); err != nil {
		logger.Error(err, "failed to delete managed resources")
		r.Recorder.RecordErrorEvent(set, "Delete", err)
		return ctrl.Result{}, err
	}

	if controllerutil.RemoveFinalizer(set, finalizer) {
		if err := r.Client.Update(ctx, set); err != nil {
			logger.Error(err, "failed to remove finalizer")
			return ctrl.Result{}, err
		}
	}
	return ctrl.Result{}, nil
}

// invalid marks the object as misconfigured without requeueing; a spec change
// is needed before another attempt can succeed.
func (r *ManifestSetReconciler) invalid(set *v1alpha1.ManifestSet, phase string, err error) (ctrl.Result, error) {
	metrics.ReconcileErrors.WithLabelValues("manifestset").Inc()
	set.Status.ReconcilePhase = "Invalid"
	set.Status.Message = err.Error()
	r.Recorder.RecordEvent(set, core_v1.EventTypeWarning, "InvalidSpec", "%s: %v", phase, err)
	return ctrl.Result{}, nil
}

// newEngine assembles a reconciliation engine scoped to one ManifestSet.
func (r *ManifestSetReconciler) newEngine(set *v1alpha1.ManifestSet) (*engine.Engine, error) {
	renderer, err := render.NewTemplateRenderer(set.Spec.Templates)
	if err != nil {
		return nil, err
	}

	values := map[string]any{}
	if len(set.Spec.Values.Raw) > 0 {
		if err := yaml.Unmarshal(set.Spec.Values.Raw, &values); err != nil {
			return nil, fmt.Errorf("decoding values: %w", err)
		}
	}

	labels := map[string]string{
		ownerLabel: fmt.Sprintf("%s.%s", set.GetName(), set.GetNamespace()),
	}
	for k, v := range set.Spec.Labels {
		labels[k] = v
	}

	kinds := make([]schema.GroupVersionKind, 0, len(set.Spec.ResourceKinds))
	for _, k := range set.Spec.ResourceKinds {
		kinds = append(kinds, k.GroupVersionKind())
	}

	templates := make([]string, 0, len(set.Spec.Templates))
	for name := range set.Spec.Templates {
		templates = append(templates, name)
	}
	sort.Strings(templates)

	clusterClient := r.ClusterClient
	if clusterClient == nil {
		clusterClient = cluster.New(r.Client)
	}

	eng := engine.New(clusterClient, renderer, engine.Options{
		FieldManager: r.Config.FieldManager,
		Force:        r.Config.ForceOwnership,
	})
	eng.SetTemplates(templates)
	eng.SetContext(values)
	eng.SetLabels(labels)
	eng.SetKinds(kinds)
	return eng, nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *ManifestSetReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&v1alpha1.ManifestSet{}).
		Named("manifestset").
		Complete(r)
}
