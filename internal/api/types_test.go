package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevision(t *testing.T) {
	assert.False(t, Revision("").IsSet())
	assert.True(t, Revision("abc123").IsSet())
	assert.NotEqual(t, Revision(""), Revision("abc123"))
	assert.Equal(t, "<unset>", Revision("").String())
}

func TestDeploymentHealthy(t *testing.T) {
	tests := []struct {
		name                     string
		replicas, updated, ready int32
		want                     bool
	}{
		{"all ready", 3, 3, 3, true},
		{"single replica", 1, 1, 1, true},
		{"scaled to zero", 0, 0, 0, false},
		{"not updated", 3, 2, 3, false},
		{"not ready", 3, 3, 2, false},
		{"surge", 3, 4, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Deployment{Replicas: tt.replicas, UpdatedReplicas: tt.updated, ReadyReplicas: tt.ready}
			assert.Equal(t, tt.want, d.Healthy())
		})
	}
}

func TestDeploymentHealthy_UnobservedGeneration(t *testing.T) {
	d := Deployment{Generation: 5, ObservedGeneration: 4, Replicas: 3, UpdatedReplicas: 3, ReadyReplicas: 3}
	assert.False(t, d.Healthy(), "status from the previous generation")

	d.ObservedGeneration = 5
	assert.True(t, d.Healthy())
}

func TestDeploymentAppliedVersion(t *testing.T) {
	d := Deployment{Annotations: map[string]string{AppliedVersionAnnotation: "abc000"}}
	assert.Equal(t, Revision("abc000"), d.AppliedVersion())
	assert.Equal(t, Revision(""), Deployment{}.AppliedVersion())
}

func TestApplyResultSucceeded(t *testing.T) {
	assert.False(t, ApplyResult{}.Succeeded())
	assert.False(t, ApplyResult{Found: true}.Succeeded())
	assert.True(t, ApplyResult{Found: true, Applied: []string{"ConfigMap/app"}}.Succeeded())
	assert.False(t, ApplyResult{
		Found:   true,
		Applied: []string{"ConfigMap/app"},
		Err:     errors.New("configmap/flags: admission denied"),
	}.Succeeded(), "a partially applied directory is not a success")
}

func TestTransientError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("reading ledger: %w", NewTransientError("get version payments", cause))

	assert.True(t, IsTransient(err))
	assert.False(t, IsNotFound(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "get version payments: connection refused")
	assert.NoError(t, NewTransientError("noop", nil))
}

func TestIsNotFound(t *testing.T) {
	err := fmt.Errorf("version payments: %w", ErrNotFound)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsTransient(err))
}
