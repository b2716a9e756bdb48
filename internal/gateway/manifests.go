package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"git-sync-operator/internal/api"
	"git-sync-operator/pkg/logging"
)

var manifestExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// ApplyManifests server-side applies every manifest file directly inside
// dir into namespace. Subdirectories are not descended into.
//
// A missing directory returns a result with Found=false and no error. Any
// decode or apply failure returns a transient error; objects applied
// before the failure are still listed in the result.
func (g *Gateway) ApplyManifests(ctx context.Context, namespace, dir string) (api.ApplyResult, error) {
	result := api.ApplyResult{Dir: dir}

	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		logging.Debug("Gateway", "No manifest directory %s for namespace %s", dir, namespace)
		return result, nil
	}
	if err != nil {
		result.Err = api.NewTransientError("stat "+dir, err)
		return result, result.Err
	}
	if !info.IsDir() {
		return result, nil
	}
	result.Found = true

	objects, err := LoadManifests(dir)
	if err != nil {
		result.Err = api.NewTransientError("load manifests "+dir, err)
		return result, result.Err
	}
	if len(objects) == 0 {
		logging.Warn("Gateway", "Manifest directory %s contains no objects", dir)
		return result, nil
	}

	var errs []error
	for _, obj := range objects {
		ref := objectRef(obj)
		if err := g.applyObject(ctx, namespace, obj); err != nil {
			logging.Error("Gateway", err, "Failed to apply %s from %s", ref, dir)
			errs = append(errs, fmt.Errorf("%s: %w", ref, err))
			continue
		}
		logging.Info("Gateway", "%s serverside-applied in %s", ref, namespace)
		result.Applied = append(result.Applied, ref)
	}

	if len(errs) > 0 {
		result.Err = api.NewTransientError("apply "+dir, errors.Join(errs...))
		return result, result.Err
	}
	return result, nil
}

func (g *Gateway) applyObject(ctx context.Context, namespace string, obj *unstructured.Unstructured) error {
	namespaced, err := g.client.IsObjectNamespaced(obj)
	if err != nil {
		return fmt.Errorf("resolve scope: %w", err)
	}
	if namespaced {
		switch obj.GetNamespace() {
		case "":
			obj.SetNamespace(namespace)
		case namespace:
		default:
			return fmt.Errorf("namespace %q does not match target namespace %q", obj.GetNamespace(), namespace)
		}
	}

	return g.client.Patch(ctx, obj, client.Apply,
		client.ForceOwnership,
		client.FieldOwner(g.fieldManager),
	)
}

// LoadManifests decodes every YAML or JSON document in the manifest files
// directly inside dir, in file name order. List kinds are flattened into
// their items and empty documents are skipped.
func LoadManifests(dir string) ([]*unstructured.Unstructured, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var objects []*unstructured.Unstructured
	for _, entry := range entries {
		if entry.IsDir() || !manifestExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		decoded, err := DecodeManifests(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		objects = append(objects, decoded...)
	}
	return objects, nil
}

// DecodeManifests decodes a multi-document YAML or JSON stream.
func DecodeManifests(data []byte) ([]*unstructured.Unstructured, error) {
	decoder := utilyaml.NewYAMLOrJSONDecoder(bytes.NewReader(data), 4096)

	var objects []*unstructured.Unstructured
	for {
		var raw map[string]interface{}
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return objects, nil
			}
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
		if len(raw) == 0 {
			continue
		}

		obj := &unstructured.Unstructured{Object: raw}
		if obj.IsList() {
			err := obj.EachListItem(func(item runtime.Object) error {
				u, ok := item.(*unstructured.Unstructured)
				if !ok {
					return fmt.Errorf("unexpected list item type %T", item)
				}
				if err := validateObject(u); err != nil {
					return err
				}
				objects = append(objects, u)
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}
		if err := validateObject(obj); err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
}

func validateObject(obj *unstructured.Unstructured) error {
	if obj.GetAPIVersion() == "" || obj.GetKind() == "" {
		return fmt.Errorf("object %q is missing apiVersion or kind", obj.GetName())
	}
	if obj.GetName() == "" && obj.GetGenerateName() == "" {
		return fmt.Errorf("%s object has no metadata.name", obj.GetKind())
	}
	return nil
}

func objectRef(obj *unstructured.Unstructured) string {
	return strings.ToLower(obj.GetKind()) + "/" + obj.GetName()
}
