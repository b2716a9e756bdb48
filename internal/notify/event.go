package notify

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	typedcorev1 "k8s.io/client-go/kubernetes/typed/core/v1"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/record"

	"git-sync-operator/internal/api"
)

const ReasonDeployed = "Deployed"

// EventSink emits a Normal/Deployed Kubernetes Event on the Deployment.
type EventSink struct {
	recorder record.EventRecorder
}

func NewEventSink(recorder record.EventRecorder) *EventSink {
	return &EventSink{recorder: recorder}
}

func (s *EventSink) Name() string { return "event" }

func (s *EventSink) Send(_ context.Context, event api.DeploymentEvent) error {
	obj := &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Namespace: event.Namespace,
			Name:      event.Deployment,
		},
	}
	s.recorder.Eventf(obj, corev1.EventTypeNormal, ReasonDeployed, "Rolled out revision %s", event.Revision)
	return nil
}

// NewEventRecorder starts an event broadcaster writing to the API server.
// The returned stop function flushes and shuts the broadcaster down.
func NewEventRecorder(cfg *rest.Config, scheme *runtime.Scheme, component string) (record.EventRecorder, func(), error) {
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create event client: %w", err)
	}

	broadcaster := record.NewBroadcaster()
	broadcaster.StartRecordingToSink(&typedcorev1.EventSinkImpl{Interface: clientset.CoreV1().Events("")})
	recorder := broadcaster.NewRecorder(scheme, corev1.EventSource{Component: component})
	return recorder, broadcaster.Shutdown, nil
}
