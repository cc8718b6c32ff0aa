package cmd

import (
	"fmt"

	"github.com/mapcrowd/bundlework/internal/bundle"
	"github.com/mapcrowd/bundlework/internal/logger"
	"github.com/mapcrowd/bundlework/internal/storage"
	"github.com/mapcrowd/bundlework/internal/tags"
	"github.com/mapcrowd/bundlework/internal/workflow"
)

// app bundles the store and the engines built on top of it. Commands
// open one per invocation and close it when done.
type app struct {
	store   *storage.Store
	status  *workflow.StatusEngine
	review  *workflow.ReviewEngine
	bundles *bundle.Manager
	tags    *tags.Reconciler
}

// openApp opens the sqlite store at the configured path and wires the
// engines. The store backs every collaborator interface.
func openApp() (*app, error) {
	path := GetDataFilePath()
	store, err := storage.New(path)
	if err != nil {
		return nil, fmt.Errorf("open data file %s: %w", path, err)
	}
	logger.SetBasePath(GetConfig().Project.RootDir)

	status := workflow.NewStatusEngine(store, store, store)
	reconciler := tags.NewReconciler(store)
	assoc := tags.NewAssociationManager(store, store)
	review := workflow.NewReviewEngine(store, store, store, store, status, reconciler, assoc)
	bundles := bundle.NewManager(store, store, store, store, status, review)

	return &app{
		store:   store,
		status:  status,
		review:  review,
		bundles: bundles,
		tags:    reconciler,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
