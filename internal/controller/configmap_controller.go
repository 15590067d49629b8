package controller

import (
	"context"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"github.com/yuriy-kovalchuk/yk-pdns-operator/internal/config"
)

// ConfigHandler receives the current service registry value on every
// configuration change. An empty value means the configuration is missing.
type ConfigHandler interface {
	ConfigChanged(value string)
}

// ConfigMapReconciler watches the ConfigMap holding the service registry.
type ConfigMapReconciler struct {
	APIReader client.Reader
	Log       logr.Logger
	Name      types.NamespacedName
	Key       string
	Handler   ConfigHandler
}

func (r *ConfigMapReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	if req.NamespacedName != r.Name {
		return ctrl.Result{}, nil
	}

	var cm corev1.ConfigMap
	if err := r.APIReader.Get(ctx, req.NamespacedName, &cm); err != nil {
		if client.IgnoreNotFound(err) != nil {
			return ctrl.Result{}, err
		}
		// A deleted ConfigMap counts as missing configuration.
		r.Log.V(1).Info("service registry configmap not found", "name", req.NamespacedName)
		r.Handler.ConfigChanged("")
		return ctrl.Result{}, nil
	}

	r.Log.V(1).Info("service registry configmap changed", "name", req.NamespacedName, "resourceVersion", cm.ResourceVersion)
	r.Handler.ConfigChanged(config.RegistryValue(&cm, r.Key))
	return ctrl.Result{}, nil
}

// InitialCheck evaluates the registry once at startup. A ConfigMap that does
// not exist produces no watch event.
func (r *ConfigMapReconciler) InitialCheck(ctx context.Context) error {
	if _, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: r.Name}); err != nil {
		// Later watch events still drive the status.
		r.Log.Error(err, "initial service registry check failed", "name", r.Name)
	}
	return nil
}

func (r *ConfigMapReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if err := mgr.Add(manager.RunnableFunc(r.InitialCheck)); err != nil {
		return err
	}
	return ctrl.NewControllerManagedBy(mgr).
		For(&corev1.ConfigMap{}).
		WithEventFilter(predicate.NewPredicateFuncs(func(obj client.Object) bool {
			return obj.GetNamespace() == r.Name.Namespace && obj.GetName() == r.Name.Name
		})).
		Complete(r)
}
