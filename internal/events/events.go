package events

import (
	"fmt"

	core_v1 "k8s.io/api/core/v1"
	"k8s.io/client-go/tools/record"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

type Recorder interface {
	RecordEvent(obj client.Object, eventType string, reason string, messageFmt string, args ...any)
	RecordErrorEvent(obj client.Object, phase string, err error)
}

func NewRecorder(recorder record.EventRecorder) Recorder {
	return &eventRecorder{
		recorder: recorder,
	}
}

type eventRecorder struct {
	recorder record.EventRecorder
}

func (e *eventRecorder) RecordEvent(obj client.Object, eventType string, reason string, messageFmt string, args ...any) {
	if e.recorder != nil {
		e.recorder.Eventf(obj, eventType, reason, messageFmt, args...)
	}
}

func (e *eventRecorder) RecordErrorEvent(obj client.Object, phase string, err error) {
	if e.recorder != nil {
		e.recorder.Eventf(obj, core_v1.EventTypeWarning, fmt.Sprintf("%sFailed", phase), "%s phase failed for %s/%s: %v", phase, obj.GetNamespace(), obj.GetName(), err.Error())
	}
}
