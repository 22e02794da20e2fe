package resource

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// InjectLabels merges the given labels into the object's metadata.
// Existing labels win only if the key is not present in labels.
func InjectLabels(obj *unstructured.Unstructured, labels map[string]string) {
	if len(labels) == 0 {
		return
	}

	merged := map[string]string{}
	for k, v := range obj.GetLabels() {
		merged[k] = v
	}
	for k, v := range labels {
		merged[k] = v
	}
	obj.SetLabels(merged)
}
