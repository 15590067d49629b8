package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/yuriy-kovalchuk/yk-pdns-operator/internal/action"
	"github.com/yuriy-kovalchuk/yk-pdns-operator/internal/config"
	"github.com/yuriy-kovalchuk/yk-pdns-operator/internal/controller"
	_ "github.com/yuriy-kovalchuk/yk-pdns-operator/internal/dns/providers"
	"github.com/yuriy-kovalchuk/yk-pdns-operator/internal/status"
)

var (
	scheme  = runtime.NewScheme()
	Version = "dev"
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
}

const usage = `usage:
  yk-pdns-operator [flags] run
  yk-pdns-operator [flags] action <add-zone|delete-zone|add-domain|delete-domain> key=value...
`

func main() {
	opts := zap.Options{
		Development: true,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"run"}
	}

	var err error
	switch args[0] {
	case "run":
		err = run()
	case "action":
		err = runAction(args[1:], os.Stdout, os.Stderr)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := ctrl.Log.WithName("setup")

	log.Info("starting yk-pdns-operator", "version", Version)

	cfg, err := config.LoadOperatorConfig()
	if err != nil {
		return fmt.Errorf("unable to load operator config: %w", err)
	}
	log.Info("loaded operator config", "provider", cfg.Provider, "service", cfg.ServiceName)

	if cfg.Registry.ConfigMap == "" {
		return fmt.Errorf("run mode needs 'registry.configmap' to watch for configuration changes")
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: ":9090"},
		HealthProbeBindAddress: ":8081",
		Cache: cache.Options{
			DefaultNamespaces: map[string]cache.Config{cfg.Registry.Namespace: {}},
			ByObject: map[client.Object]cache.ByObject{
				&corev1.ConfigMap{}: {Field: fields.OneTermEqualSelector("metadata.name", cfg.Registry.ConfigMap)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("unable to create manager: %w", err)
	}

	source, err := config.NewSource(cfg.Registry, mgr.GetAPIReader())
	if err != nil {
		return fmt.Errorf("unable to create registry source: %w", err)
	}
	unit := status.NewUnit()
	dispatcher := action.NewDispatcher(ctrl.Log.WithName("dispatcher"), cfg, source, unit)

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		return fmt.Errorf("unable to set up health check: %w", err)
	}
	if err := mgr.AddReadyzCheck("readyz", unit.Checker); err != nil {
		return fmt.Errorf("unable to set up ready check: %w", err)
	}

	reconciler := &controller.ConfigMapReconciler{
		APIReader: mgr.GetAPIReader(),
		Log:       ctrl.Log.WithName("configmap-controller"),
		Name:      types.NamespacedName{Namespace: cfg.Registry.Namespace, Name: cfg.Registry.ConfigMap},
		Key:       cfg.Registry.Key,
		Handler:   dispatcher,
	}
	if err := reconciler.SetupWithManager(mgr); err != nil {
		return fmt.Errorf("unable to set up ConfigMap controller: %w", err)
	}

	log.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		return fmt.Errorf("manager exited with error: %w", err)
	}

	return nil
}

// runAction executes a single action and writes its result as JSON to out.
// A failed action is reported on errOut and returned as an error.
func runAction(args []string, out, errOut io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing action name, one of %v", action.Names())
	}
	params, err := parseParams(args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.LoadOperatorConfig()
	if err != nil {
		return fmt.Errorf("unable to load operator config: %w", err)
	}

	var reader client.Reader
	if cfg.Registry.File == "" {
		c, err := client.New(ctrl.GetConfigOrDie(), client.Options{Scheme: scheme})
		if err != nil {
			return fmt.Errorf("unable to create kubernetes client: %w", err)
		}
		reader = c
	}
	source, err := config.NewSource(cfg.Registry, reader)
	if err != nil {
		return fmt.Errorf("unable to create registry source: %w", err)
	}

	dispatcher := action.NewDispatcher(ctrl.Log.WithName("dispatcher"), cfg, source, status.NewUnit())
	ev := &cliEvent{name: args[0], params: params}
	dispatcher.Dispatch(context.Background(), ev)
	return ev.report(out, errOut)
}

// parseParams turns key=value arguments into a parameter map.
func parseParams(args []string) (map[string]string, error) {
	params := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", arg)
		}
		params[key] = value
	}
	return params, nil
}

// cliEvent is an action.Event fed from the command line.
type cliEvent struct {
	name    string
	params  map[string]string
	results map[string]string
	failure string
}

func (e *cliEvent) Name() string {
	return e.name
}

func (e *cliEvent) Params() map[string]string {
	return e.params
}

func (e *cliEvent) SetResults(results map[string]string) {
	e.results = results
}

func (e *cliEvent) Fail(message string) {
	e.failure = message
}

func (e *cliEvent) report(out, errOut io.Writer) error {
	if e.failure != "" {
		fmt.Fprintln(errOut, e.failure)
		return fmt.Errorf("action %s failed", e.name)
	}
	return json.NewEncoder(out).Encode(e.results)
}
