package controller

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	meta_v1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/nais/konvergator/api/v1alpha1"
	"github.com/nais/konvergator/internal/cluster/clustertest"
	"github.com/nais/konvergator/internal/config"
	"github.com/nais/konvergator/internal/events"
)

const configMapTemplate = `apiVersion: v1
kind: ConfigMap
metadata:
  name: {{ .name }}
  namespace: default
data:
  greeting: {{ .greeting | default "hello" }}
---
apiVersion: v1
kind: Service
metadata:
  name: {{ .name }}
  namespace: default
spec:
  ports:
    - port: 80
`

var _ = Describe("ManifestSet Controller", func() {
	ctx := context.Background()

	const resourceName = "test-set"

	resourceKey := types.NamespacedName{
		Name:      resourceName,
		Namespace: "default",
	}
	request := ctrl.Request{NamespacedName: resourceKey}

	newManifestSet := func() *v1alpha1.ManifestSet {
		return &v1alpha1.ManifestSet{
			ObjectMeta: meta_v1.ObjectMeta{
				Name:      resourceName,
				Namespace: "default",
			},
			Spec: v1alpha1.ManifestSetSpec{
				Templates: map[string]string{"main": configMapTemplate},
				Values:    runtime.RawExtension{Raw: []byte(`{"name": "demo"}`)},
				ResourceKinds: []v1alpha1.ResourceKind{
					{Version: "v1", Kind: "ConfigMap"},
					{Version: "v1", Kind: "Service"},
				},
			},
		}
	}

	var scheme *runtime.Scheme
	var clusterFake *clustertest.Fake
	var reconciler *ManifestSetReconciler

	newReconciler := func(objects ...*v1alpha1.ManifestSet) *ManifestSetReconciler {
		builder := fake.NewClientBuilder().
			WithScheme(scheme).
			WithStatusSubresource(&v1alpha1.ManifestSet{})
		for _, obj := range objects {
			builder = builder.WithObjects(obj)
		}
		return &ManifestSetReconciler{
			Client:        builder.Build(),
			Scheme:        scheme,
			Config:        &config.Config{FieldManager: "konvergator", ResyncInterval: 10 * time.Minute},
			Recorder:      events.NewRecorder(nil),
			ClusterClient: clusterFake,
		}
	}

	BeforeEach(func() {
		scheme = runtime.NewScheme()
		Expect(v1alpha1.AddToScheme(scheme)).To(Succeed())
		clusterFake = clustertest.NewFake()
	})

	When("the resource is created", func() {
		BeforeEach(func() {
			reconciler = newReconciler(newManifestSet())
		})

		It("should converge the declared resources and report active", func() {
			result, err := reconciler.Reconcile(ctx, request)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(Equal(10 * time.Minute))

			Expect(clusterFake.Applied).To(HaveLen(2))

			set := &v1alpha1.ManifestSet{}
			Expect(reconciler.Client.Get(ctx, resourceKey, set)).To(Succeed())
			Expect(set.GetFinalizers()).To(ContainElement(finalizer))
			Expect(set.Status.ReconcilePhase).To(Equal("Done"))
			Expect(set.Status.Verdict).To(Equal("active"))
		})

		It("should render values into the manifests", func() {
			_, err := reconciler.Reconcile(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			names := []string{}
			for _, obj := range clusterFake.Applied {
				names = append(names, obj.GetName())
			}
			Expect(names).To(ConsistOf("demo", "demo"))
		})

		It("should tag every applied resource with the ownership label", func() {
			_, err := reconciler.Reconcile(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			for _, obj := range clusterFake.Applied {
				Expect(obj.GetLabels()).To(HaveKeyWithValue(ownerLabel, "test-set.default"))
			}
		})
	})

	When("the rendered set contains a kind outside the managed set", func() {
		BeforeEach(func() {
			set := newManifestSet()
			set.Spec.ResourceKinds = []v1alpha1.ResourceKind{{Version: "v1", Kind: "ConfigMap"}}
			reconciler = newReconciler(set)
		})

		It("should mark the spec invalid without requeueing", func() {
			result, err := reconciler.Reconcile(ctx, request)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(ctrl.Result{}))

			Expect(clusterFake.Applied).To(BeEmpty())

			set := &v1alpha1.ManifestSet{}
			Expect(reconciler.Client.Get(ctx, resourceKey, set)).To(Succeed())
			Expect(set.Status.ReconcilePhase).To(Equal("Invalid"))
			Expect(set.Status.Message).To(ContainSubstring("Service"))
		})
	})

	When("the resource is deleted", func() {
		BeforeEach(func() {
			reconciler = newReconciler(newManifestSet())
			_, err := reconciler.Reconcile(ctx, request)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should tear down the managed resources and release the finalizer", func() {
			set := &v1alpha1.ManifestSet{}
			Expect(reconciler.Client.Get(ctx, resourceKey, set)).To(Succeed())
			Expect(reconciler.Client.Delete(ctx, set)).To(Succeed())

			_, err := reconciler.Reconcile(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			Expect(clusterFake.Deleted).To(HaveLen(2))

			err = reconciler.Client.Get(ctx, resourceKey, set)
			Expect(apierrors.IsNotFound(err)).To(BeTrue())
		})
	})
})
