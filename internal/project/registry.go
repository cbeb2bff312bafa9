// Package project resolves project identifiers to their persistence
// destinations. A project may have a document destination, a record
// destination, both, or neither; sinks refuse whole batches for
// destinations that do not resolve.
package project

import (
	"sync"

	"github.com/fyrsmithlabs/minuted/internal/config"
)

// DocDestination locates a project's decision documents.
type DocDestination struct {
	Owner  string
	Repo   string
	Branch string
}

// RecordDestination locates a project's task records.
type RecordDestination struct {
	BaseID string
}

// Resolver resolves persistence destinations for a project.
type Resolver interface {
	// ResolveDocDestination returns the document destination for a
	// project, or false if none is configured.
	ResolveDocDestination(projectID string) (DocDestination, bool)

	// ResolveRecordDestination returns the record destination for a
	// project, or false if none is configured.
	ResolveRecordDestination(projectID string) (RecordDestination, bool)
}

// Registry implements Resolver with in-memory storage built from
// configuration.
type Registry struct {
	mu      sync.RWMutex
	docs    map[string]DocDestination
	records map[string]RecordDestination
}

// NewRegistry builds a registry from configured projects.
func NewRegistry(projects []config.ProjectConfig) *Registry {
	r := &Registry{
		docs:    make(map[string]DocDestination),
		records: make(map[string]RecordDestination),
	}
	for _, p := range projects {
		if p.DocOwner != "" && p.DocRepo != "" {
			r.docs[p.ID] = DocDestination{
				Owner:  p.DocOwner,
				Repo:   p.DocRepo,
				Branch: p.DocBranch,
			}
		}
		if p.RecordBase != "" {
			r.records[p.ID] = RecordDestination{BaseID: p.RecordBase}
		}
	}
	return r
}

// ResolveDocDestination implements Resolver.
func (r *Registry) ResolveDocDestination(projectID string) (DocDestination, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[projectID]
	return d, ok
}

// ResolveRecordDestination implements Resolver.
func (r *Registry) ResolveRecordDestination(projectID string) (RecordDestination, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.records[projectID]
	return d, ok
}
