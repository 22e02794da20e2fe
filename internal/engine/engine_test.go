package engine_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/nais/konvergator/internal/cluster/clustertest"
	"github.com/nais/konvergator/internal/engine"
	"github.com/nais/konvergator/internal/health"
)

type fakeRenderer struct {
	docs  map[string]string
	calls int
}

func (r *fakeRenderer) Render(name string, _ map[string]any) (string, error) {
	r.calls++
	text, found := r.docs[name]
	if !found {
		return "", fmt.Errorf("no such template %q", name)
	}
	return text, nil
}

const podManifests = `
apiVersion: v1
kind: Pod
metadata:
  name: mypod
  namespace: default
---
apiVersion: v1
kind: Pod
metadata:
  name: mypod2
  namespace: default
`

var (
	podGVK     = schema.GroupVersionKind{Version: "v1", Kind: "Pod"}
	serviceGVK = schema.GroupVersionKind{Version: "v1", Kind: "Service"}
)

var _ = Describe("Engine", func() {
	ctx := context.Background()

	var fake *clustertest.Fake
	var renderer *fakeRenderer
	var eng *engine.Engine

	managedLabels := map[string]string{"app": "demo"}

	BeforeEach(func() {
		fake = clustertest.NewFake()
		renderer = &fakeRenderer{docs: map[string]string{"pods": podManifests}}
		eng = engine.New(fake, renderer, engine.Options{FieldManager: "test-manager"})
		eng.SetTemplates([]string{"pods"})
		eng.SetContext(map[string]any{})
		eng.SetLabels(managedLabels)
		eng.SetKinds([]schema.GroupVersionKind{podGVK, serviceGVK})
	})

	Describe("Render", func() {
		It("should inject the managed labels into every resource", func() {
			rendered, err := eng.Render(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(rendered).To(HaveLen(2))
			for _, obj := range rendered {
				Expect(obj.GetLabels()).To(HaveKeyWithValue("app", "demo"))
			}
		})

		It("should require templates and context", func() {
			eng.SetTemplates(nil)
			_, err := eng.Render(ctx, false)
			var validation *engine.ValidationError
			Expect(errors.As(err, &validation)).To(BeTrue())

			eng.SetTemplates([]string{"pods"})
			eng.SetContext(nil)
			_, err = eng.Render(ctx, false)
			Expect(errors.As(err, &validation)).To(BeTrue())
		})

		It("should cache the result until an input changes", func() {
			_, err := eng.Render(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Render(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(renderer.calls).To(Equal(1))

			eng.SetContext(map[string]any{"replicas": 3})
			_, err = eng.Render(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(renderer.calls).To(Equal(2))
		})

		It("should keep the cache intact when the caller reorders the result", func() {
			rendered, err := eng.Render(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			rendered[0], rendered[1] = rendered[1], rendered[0]

			again, err := eng.Render(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(HaveLen(2))
			Expect(again[0].GetName()).To(Equal("mypod"))
			Expect(renderer.calls).To(Equal(1))
		})

		It("should recompute when forced", func() {
			_, err := eng.Render(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Render(ctx, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(renderer.calls).To(Equal(2))
		})
	})

	Describe("Apply", func() {
		It("should apply the rendered set without deleting anything", func() {
			applied, err := eng.Apply(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(HaveLen(2))
			Expect(fake.CallsTo("delete")).To(BeEmpty())
			Expect(fake.CallsTo("list")).To(BeEmpty())
		})

		It("should reject rendered kinds outside the managed set", func() {
			eng.SetKinds([]schema.GroupVersionKind{serviceGVK})

			_, err := eng.Apply(ctx)
			var validation *engine.ValidationError
			Expect(errors.As(err, &validation)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("Pod"))
			Expect(fake.CallsTo("apply")).To(BeEmpty())
		})
	})

	Describe("Delete and Reconcile guards", func() {
		It("should refuse to delete without labels", func() {
			eng.SetLabels(nil)
			err := eng.Delete(ctx)
			var validation *engine.ValidationError
			Expect(errors.As(err, &validation)).To(BeTrue())
			Expect(fake.Calls).To(BeEmpty())
		})

		It("should refuse to delete without kinds", func() {
			eng.SetKinds(nil)
			err := eng.Delete(ctx)
			var validation *engine.ValidationError
			Expect(errors.As(err, &validation)).To(BeTrue())
			Expect(fake.Calls).To(BeEmpty())
		})

		It("should refuse to reconcile without labels or kinds", func() {
			eng.SetLabels(nil)
			err := eng.Reconcile(ctx)
			var validation *engine.ValidationError
			Expect(errors.As(err, &validation)).To(BeTrue())
			Expect(fake.Calls).To(BeEmpty())
		})
	})

	Describe("Reconcile", func() {
		It("should converge the cluster to exactly the desired set", func() {
			pod := obj("v1", "Pod", "mypod", "default")
			pod.SetLabels(managedLabels)
			service := obj("v1", "Service", "myservice", "default")
			service.SetLabels(managedLabels)
			fake = clustertest.NewFake(pod, service)
			eng = engine.New(fake, renderer, engine.Options{FieldManager: "test-manager"})
			eng.SetTemplates([]string{"pods"})
			eng.SetContext(map[string]any{})
			eng.SetLabels(managedLabels)
			eng.SetKinds([]schema.GroupVersionKind{podGVK, serviceGVK})

			Expect(eng.Reconcile(ctx)).To(Succeed())

			deletes := fake.CallsTo("delete")
			Expect(deletes).To(HaveLen(1))
			Expect(deletes[0].Resource.Kind).To(Equal("Service"))
			Expect(deletes[0].Resource.Name).To(Equal("myservice"))

			Expect(appliedNames(fake.CallsTo("apply"))).To(Equal([]string{"mypod", "mypod2"}))
		})

		It("should delete orphans of the same kind in name order", func() {
			zeta := obj("v1", "Service", "zeta", "default")
			zeta.SetLabels(managedLabels)
			alpha := obj("v1", "Service", "alpha", "default")
			alpha.SetLabels(managedLabels)
			fake = clustertest.NewFake(zeta, alpha)
			eng = engine.New(fake, renderer, engine.Options{FieldManager: "test-manager"})
			eng.SetTemplates([]string{"pods"})
			eng.SetContext(map[string]any{})
			eng.SetLabels(managedLabels)
			eng.SetKinds([]schema.GroupVersionKind{podGVK, serviceGVK})

			Expect(eng.Reconcile(ctx)).To(Succeed())

			deletes := fake.CallsTo("delete")
			Expect(deletes).To(HaveLen(2))
			Expect(deletes[0].Resource.Name).To(Equal("alpha"))
			Expect(deletes[1].Resource.Name).To(Equal("zeta"))
		})

		It("should leave an already converged cluster untouched except for reapplying", func() {
			Expect(eng.Reconcile(ctx)).To(Succeed())
			Expect(fake.CallsTo("delete")).To(BeEmpty())

			fake.Calls = nil
			Expect(eng.Reconcile(ctx)).To(Succeed())
			Expect(fake.CallsTo("delete")).To(BeEmpty())
			Expect(fake.CallsTo("apply")).To(HaveLen(2))
		})
	})

	Describe("ComputeHealth", func() {
		It("should be active once every resource exists", func() {
			_, err := eng.Apply(ctx)
			Expect(err).NotTo(HaveOccurred())

			computed, err := eng.ComputeHealth(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(computed.Verdict).To(Equal(health.VerdictActive))
			Expect(computed.Worst).To(BeNil())
		})

		It("should report the first worst finding when resources are missing", func() {
			computed, err := eng.ComputeHealth(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(computed.Verdict).To(Equal(health.VerdictBlocked))
			Expect(computed.Worst).NotTo(BeNil())
			Expect(computed.Worst.Resource.Name).To(Equal("mypod"))
		})
	})
})
