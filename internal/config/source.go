package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// ErrRegistryMissing is returned when the registry blob is absent or empty.
var ErrRegistryMissing = errors.New("service registry missing")

// Source loads the raw service registry blob.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
}

// FileSource reads the blob from a file on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRegistryMissing, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading service registry file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrRegistryMissing, s.Path)
	}
	return data, nil
}

// ConfigMapSource reads the blob from a key of a ConfigMap.
type ConfigMapSource struct {
	Reader client.Reader
	Name   types.NamespacedName
	Key    string
}

func (s ConfigMapSource) Load(ctx context.Context) ([]byte, error) {
	var cm corev1.ConfigMap
	if err := s.Reader.Get(ctx, s.Name, &cm); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fmt.Errorf("%w: configmap %s holding key %q not found", ErrRegistryMissing, s.Name, s.Key)
		}
		return nil, fmt.Errorf("reading configmap %s: %w", s.Name, err)
	}
	value := RegistryValue(&cm, s.Key)
	if value == "" {
		return nil, fmt.Errorf("%w: key %q not set in configmap %s", ErrRegistryMissing, s.Key, s.Name)
	}
	return []byte(value), nil
}

// RegistryValue returns the registry blob stored under key, or "".
func RegistryValue(cm *corev1.ConfigMap, key string) string {
	if cm == nil {
		return ""
	}
	return cm.Data[key]
}

// NewSource picks the Source described by cfg. reader may be nil when the
// registry is read from a file.
func NewSource(cfg RegistryConfig, reader client.Reader) (Source, error) {
	if cfg.File != "" {
		return FileSource{Path: cfg.File}, nil
	}
	if reader == nil {
		return nil, fmt.Errorf("configmap registry source needs a kubernetes client")
	}
	return ConfigMapSource{
		Reader: reader,
		Name:   types.NamespacedName{Namespace: cfg.Namespace, Name: cfg.ConfigMap},
		Key:    cfg.Key,
	}, nil
}

// ResolveEndpoint loads the registry from src and resolves serviceName.
func ResolveEndpoint(ctx context.Context, src Source, serviceName, portName string) (ServerEndpoint, error) {
	data, err := src.Load(ctx)
	if err != nil {
		return ServerEndpoint{}, err
	}
	reg, err := ParseServiceRegistry(data)
	if err != nil {
		return ServerEndpoint{}, err
	}
	return reg.Resolve(serviceName, portName)
}
